// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"errors"
	"fmt"

	"github.com/pirayeshfar/location-finder/internal/gpspoll"
	"github.com/pirayeshfar/location-finder/internal/locate"
)

const name = "gpsd"

var ErrNoFix = errors.New("gpsd has no 2D fix")

// GeolocationGPSDProvider requests the current fix from a local gpsd instance.
type GeolocationGPSDProvider struct {
	name   string
	client *gpspoll.Client
	pollFn func(ctx context.Context) (gpspoll.Fix, error)
}

// NewGeolocationGPSDProvider returns a provider for the gpsd instance at host and port. Empty values
// select the gpsd defaults.
func NewGeolocationGPSDProvider(host, port string) *GeolocationGPSDProvider {
	provider := &GeolocationGPSDProvider{
		name:   name,
		client: gpspoll.New(host, port),
	}
	provider.pollFn = provider.client.Poll
	return provider
}

func (p *GeolocationGPSDProvider) Name() string {
	return p.name
}

// Acquire polls gpsd for a single TPV report. Reports without at least a 2D fix are rejected.
func (p *GeolocationGPSDProvider) Acquire(ctx context.Context, _ locate.Options) (locate.Coordinates, error) {
	fix, err := p.pollFn(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return locate.Coordinates{}, locate.NewPositionError(locate.CodeTimeout, err)
		}
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable,
			fmt.Errorf("failed to poll gpsd at %q: %w", p.client.Addr, err))
	}
	if !fix.Has2DFix() {
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable, ErrNoFix)
	}
	return locate.NewCoordinates(fix.Lat, fix.Lon, fix.Acc), nil
}
