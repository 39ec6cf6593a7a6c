// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package inference defines the contract to generative language services.
package inference

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the service answered without any text.
	ErrEmptyResponse = errors.New("inference service returned no text")

	// ErrMissingAPIKey is returned when a provider requires an API key but none was configured.
	ErrMissingAPIKey = errors.New("inference API key is required")
)

// Generator produces a single free text reply for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// Tools selects the grounding tools the service may use while answering.
type Tools struct {
	GeoGrounding bool
	WebSearch    bool
}

// LatLng is a location used to bias grounding results.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// Request is a single generation request.
type Request struct {
	Prompt       string
	Tools        Tools
	LocationBias *LatLng
}

// Response is the reply of the service.
type Response struct {
	Text string
}
