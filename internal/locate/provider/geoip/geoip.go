// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoip

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"

	"github.com/pirayeshfar/location-finder/internal/http"
	"github.com/pirayeshfar/location-finder/internal/locate"
)

const (
	APIEndpoint = "https://reallyfreegeoip.org/json/"
	name        = "geoip"
)

var ErrMissingHTTPClient = errors.New("http client is required")

// GeolocationGeoIPProvider approximates the position from the public IP address of the host.
type GeolocationGeoIPProvider struct {
	name     string
	http     *http.Client
	endpoint string
}

type APIResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country_name"`
	RegionCode  string  `json:"region_code,omitempty"`
	Region      string  `json:"region_name,omitempty"`
	City        string  `json:"city,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MetroCode   int     `json:"metro_code"`
}

func NewGeolocationGeoIPProvider(client *http.Client) (*GeolocationGeoIPProvider, error) {
	if client == nil {
		return nil, ErrMissingHTTPClient
	}
	return &GeolocationGeoIPProvider{
		name:     name,
		http:     client,
		endpoint: APIEndpoint,
	}, nil
}

func (p *GeolocationGeoIPProvider) Name() string {
	return p.name
}

// Acquire looks up the position of the public IP address. The accuracy is derived from the most
// specific administrative unit the service returned.
func (p *GeolocationGeoIPProvider) Acquire(ctx context.Context, opts locate.Options) (locate.Coordinates, error) {
	result := new(APIResult)
	code, err := p.http.GetWithTimeout(ctx, p.endpoint, result, nil, nil, opts.Timeout)
	if err != nil {
		if ctx.Err() != nil {
			return locate.Coordinates{}, locate.NewPositionError(locate.CodeTimeout, err)
		}
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable,
			fmt.Errorf("failed to get geolocation data from API: %w", err))
	}
	if code != stdhttp.StatusOK {
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable,
			fmt.Errorf("geolocation API returned unexpected status code: %d", code))
	}

	acc := float64(locate.AccuracyUnknown)
	switch {
	case result.ZipCode != "":
		acc = locate.AccuracyZip
	case result.City != "":
		acc = locate.AccuracyCity
	case result.RegionCode != "":
		acc = locate.AccuracyRegion
	case result.CountryCode != "":
		acc = locate.AccuracyCountry
	}

	return locate.NewCoordinates(result.Latitude, result.Longitude, acc), nil
}
