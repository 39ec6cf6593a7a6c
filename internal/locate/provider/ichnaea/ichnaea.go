// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package ichnaea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdhttp "net/http"

	"github.com/pirayeshfar/location-finder/internal/http"
	"github.com/pirayeshfar/location-finder/internal/locate"
	"github.com/pirayeshfar/location-finder/internal/wlan"
)

const (
	APIEndpoint = "https://api.beacondb.net/v1/geolocate"
	name        = "ichnaea"
)

var ErrMissingHTTPClient = errors.New("http client is required")

// GeolocationICHNAEAProvider locates the host through an Ichnaea compatible geolocation service
// (BeaconDB by default) using the visible Wi-Fi access points and the public IP address.
type GeolocationICHNAEAProvider struct {
	name     string
	http     *http.Client
	scanner  wlan.Scanner
	endpoint string
}

type APIResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type WirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

type request struct {
	ConsiderIP   bool              `json:"considerIp"`
	AccessPoints []WirelessNetwork `json:"wifiAccessPoints,omitempty"`
}

// NewGeolocationICHNAEAProvider returns a new provider. The scanner is optional, without it the
// lookup is based on the IP address only. An empty endpoint selects APIEndpoint.
func NewGeolocationICHNAEAProvider(client *http.Client, scanner wlan.Scanner, endpoint string) (*GeolocationICHNAEAProvider, error) {
	if client == nil {
		return nil, ErrMissingHTTPClient
	}
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	return &GeolocationICHNAEAProvider{
		name:     name,
		http:     client,
		scanner:  scanner,
		endpoint: endpoint,
	}, nil
}

func (p *GeolocationICHNAEAProvider) Name() string {
	return p.name
}

// Acquire scans the access points and submits them to the geolocation service.
func (p *GeolocationICHNAEAProvider) Acquire(ctx context.Context, opts locate.Options) (locate.Coordinates, error) {
	req := request{
		ConsiderIP:   true,
		AccessPoints: p.wifiAccessPoints(ctx),
	}
	body := bytes.NewBuffer(nil)
	if err := json.NewEncoder(body).Encode(req); err != nil {
		return locate.Coordinates{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	result := new(APIResult)
	code, err := p.http.PostWithTimeout(ctx, p.endpoint, result, body,
		map[string]string{"Content-Type": "application/json"}, opts.Timeout)
	if err != nil {
		if ctx.Err() != nil {
			return locate.Coordinates{}, locate.NewPositionError(locate.CodeTimeout, err)
		}
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable,
			fmt.Errorf("failed to get geolocation data from API: %w", err))
	}
	if code != stdhttp.StatusOK {
		msg := stdhttp.StatusText(code)
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable,
			fmt.Errorf("geolocation API returned status %d: %s", code, msg))
	}

	return locate.NewCoordinates(result.Location.Latitude, result.Location.Longitude, result.Accuracy), nil
}

// wifiAccessPoints returns the visible access points. Scan errors are not fatal, the service falls
// back to the IP address.
func (p *GeolocationICHNAEAProvider) wifiAccessPoints(ctx context.Context) []WirelessNetwork {
	if p.scanner == nil {
		return nil
	}
	aps, err := p.scanner.AccessPoints(ctx)
	if err != nil {
		return nil
	}
	list := make([]WirelessNetwork, 0, len(aps))
	for _, ap := range aps {
		list = append(list, WirelessNetwork{
			LastSeen:       ap.LastSeen.Milliseconds(),
			MACAddress:     ap.MACAddress,
			SignalStrength: ap.SignalStrength,
		})
	}
	return list
}
