// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/pirayeshfar/location-finder/internal/http"
	"github.com/pirayeshfar/location-finder/internal/locate"
	"github.com/pirayeshfar/location-finder/internal/wlan"
)

const name = "google"

var (
	ErrMissingAPIKey     = errors.New("google geolocation API key is required")
	ErrMissingHTTPClient = errors.New("http client is required")
)

// GeolocationGoogleProvider locates the host with the Google Maps Geolocation API using the visible
// Wi-Fi access points and the public IP address.
type GeolocationGoogleProvider struct {
	name    string
	client  *maps.Client
	scanner wlan.Scanner
}

// NewGeolocationGoogleProvider returns a provider that sends its requests through the given HTTP
// client. The scanner is optional.
func NewGeolocationGoogleProvider(apiKey string, client *http.Client, scanner wlan.Scanner) (*GeolocationGoogleProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if client == nil {
		return nil, ErrMissingHTTPClient
	}
	mapsClient, err := maps.NewClient(maps.WithAPIKey(apiKey), maps.WithHTTPClient(client.Client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}
	return &GeolocationGoogleProvider{
		name:    name,
		client:  mapsClient,
		scanner: scanner,
	}, nil
}

func (p *GeolocationGoogleProvider) Name() string {
	return p.name
}

// Acquire requests a single position from the Geolocation API.
func (p *GeolocationGoogleProvider) Acquire(ctx context.Context, _ locate.Options) (locate.Coordinates, error) {
	req := &maps.GeolocationRequest{
		ConsiderIP:       true,
		WiFiAccessPoints: p.wifiAccessPoints(ctx),
	}
	resp, err := p.client.Geolocate(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return locate.Coordinates{}, locate.NewPositionError(locate.CodeTimeout, err)
		}
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable,
			fmt.Errorf("failed to get geolocation data from Google: %w", err))
	}
	return locate.NewCoordinates(resp.Location.Lat, resp.Location.Lng, resp.Accuracy), nil
}

func (p *GeolocationGoogleProvider) wifiAccessPoints(ctx context.Context) []maps.WiFiAccessPoint {
	if p.scanner == nil {
		return nil
	}
	aps, err := p.scanner.AccessPoints(ctx)
	if err != nil {
		return nil
	}
	list := make([]maps.WiFiAccessPoint, 0, len(aps))
	for _, ap := range aps {
		list = append(list, maps.WiFiAccessPoint{
			MACAddress:     ap.MACAddress,
			SignalStrength: float64(ap.SignalStrength),
		})
	}
	return list
}
