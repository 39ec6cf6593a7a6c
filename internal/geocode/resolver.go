// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pirayeshfar/location-finder/internal/inference"
	"github.com/pirayeshfar/location-finder/internal/locate"
	"github.com/pirayeshfar/location-finder/internal/logger"
)

// ErrMissingGenerator is returned by NewResolver without a generator.
var ErrMissingGenerator = errors.New("inference generator is required")

// Resolver infers addresses with a generative language service. Every call results in exactly one
// request to the service.
type Resolver struct {
	generator inference.Generator
	logger    *logger.Logger
}

// NewResolver returns a Resolver that uses generator for the inference.
func NewResolver(generator inference.Generator, log *logger.Logger) (*Resolver, error) {
	if generator == nil {
		return nil, ErrMissingGenerator
	}
	return &Resolver{generator: generator, logger: log}, nil
}

func (r *Resolver) Name() string {
	return "inference using " + r.generator.Name()
}

// Reverse resolves the coordinates into an Address. All failures are reported as ErrInferenceFailed.
func (r *Resolver) Reverse(ctx context.Context, coords locate.Coordinates) (Address, error) {
	if err := coords.Validate(); err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInferenceFailed, err)
	}

	req := inference.Request{
		Prompt: BuildPrompt(coords),
		Tools: inference.Tools{
			GeoGrounding: true,
			WebSearch:    true,
		},
		LocationBias: &inference.LatLng{Latitude: coords.Lat, Longitude: coords.Lon},
	}

	start := time.Now()
	resp, err := r.generator.Generate(ctx, req)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInferenceFailed, err)
	}
	r.logger.Debug("inference reply received", "generator", r.generator.Name(),
		"took", time.Since(start).String(), "length", len(resp.Text))

	addr, err := Extract(resp.Text)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInferenceFailed, err)
	}
	return addr, nil
}
