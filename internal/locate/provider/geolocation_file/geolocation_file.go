// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geolocation_file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pirayeshfar/location-finder/internal/locate"
)

const (
	name = "geolocation_file"

	// Accuracy is used when the file does not carry an accuracy value. A geolocation file is considered
	// to be maintained by the user and therefore accurate.
	Accuracy = 5
)

var ErrNoCoordinates = errors.New("no valid coordinates found in geolocation file")

// GeolocationFileProvider reads a fixed position from a file. The first non-comment line of the form
// "lat,lon" or "lat,lon,accuracy" is used.
type GeolocationFileProvider struct {
	name     string
	path     string
	locateFn func() (locate.Coordinates, error)
}

// NewGeolocationFileProvider initializes a GeolocationFileProvider for the file at path.
func NewGeolocationFileProvider(path string) *GeolocationFileProvider {
	provider := &GeolocationFileProvider{
		name: name,
		path: path,
	}
	provider.locateFn = provider.readFile
	return provider
}

// Name returns the name of the GeolocationFileProvider instance.
func (p *GeolocationFileProvider) Name() string {
	return p.name
}

// Acquire reads the position from the geolocation file.
func (p *GeolocationFileProvider) Acquire(ctx context.Context, _ locate.Options) (locate.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return locate.Coordinates{}, locate.NewPositionError(locate.CodeTimeout, err)
	}
	coords, err := p.locateFn()
	if err != nil {
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable, err)
	}
	return coords, nil
}

// readFile reads geolocation data from the file at the configured path.
func (p *GeolocationFileProvider) readFile() (locate.Coordinates, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return locate.Coordinates{}, fmt.Errorf("failed to read geolocation file %q: %w", p.path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 && len(fields) != 3 {
			continue
		}
		values := make([]float64, len(fields))
		valid := true
		for i, field := range fields {
			values[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		acc := float64(Accuracy)
		if len(values) == 3 {
			acc = values[2]
		}
		return locate.NewCoordinates(values[0], values[1], acc), nil
	}
	return locate.Coordinates{}, ErrNoCoordinates
}
