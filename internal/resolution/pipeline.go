// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package resolution

import (
	"context"

	"github.com/pirayeshfar/location-finder/internal/geocode"
	"github.com/pirayeshfar/location-finder/internal/locate"
)

// Locator acquires the device coordinates.
type Locator interface {
	Acquire(ctx context.Context) (locate.Coordinates, error)
}

// Pipeline runs location cycles: Locator, then Resolver, with every step recorded on the Machine.
type Pipeline struct {
	machine  *Machine
	locator  Locator
	resolver geocode.Geocoder
}

// NewPipeline returns a Pipeline that records its progress on machine.
func NewPipeline(machine *Machine, locator Locator, resolver geocode.Geocoder) *Pipeline {
	return &Pipeline{
		machine:  machine,
		locator:  locator,
		resolver: resolver,
	}
}

// Machine returns the state machine of the pipeline.
func (p *Pipeline) Machine() *Machine {
	return p.machine
}

// Run executes one cycle and returns its terminal state. If a cycle is already outstanding
// ErrCycleInProgress is returned and nothing is executed. A cycle that ends in Failed is not an
// error of Run.
func (p *Pipeline) Run(ctx context.Context, cycleID string) (State, error) {
	if _, err := p.machine.Fire(StartRequested{CycleID: cycleID}); err != nil {
		return p.machine.State(), err
	}

	coords, err := p.locator.Acquire(ctx)
	if err != nil {
		return p.machine.Fire(LocatorFailed{Err: err})
	}
	if _, err = p.machine.Fire(LocatorSucceeded{Coordinates: coords}); err != nil {
		return p.machine.State(), err
	}

	lookup, err := p.lookup(ctx, coords)
	if err != nil {
		return p.machine.Fire(ResolverFailed{Err: err})
	}
	return p.machine.Fire(ResolverSucceeded{Address: lookup.Address, CacheHit: lookup.CacheHit})
}

func (p *Pipeline) lookup(ctx context.Context, coords locate.Coordinates) (geocode.Lookup, error) {
	if cached, ok := p.resolver.(geocode.CachingGeocoder); ok {
		return cached.Lookup(ctx, coords)
	}
	addr, err := p.resolver.Reverse(ctx, coords)
	return geocode.Lookup{Address: addr}, err
}
