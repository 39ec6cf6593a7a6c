// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package resolution

import (
	"fmt"
	"time"

	"github.com/pirayeshfar/location-finder/internal/geocode"
	"github.com/pirayeshfar/location-finder/internal/locate"
)

// Event is an input to the state machine.
type Event interface {
	Name() string
	event()
}

// StartRequested starts a new cycle with the given ID.
type StartRequested struct {
	CycleID string
}

// LocatorSucceeded carries the acquired coordinates.
type LocatorSucceeded struct {
	Coordinates locate.Coordinates
}

// LocatorFailed carries the classified Locator error.
type LocatorFailed struct {
	Err error
}

// ResolverSucceeded carries the inferred address. CacheHit is set if the address came from the
// address cache.
type ResolverSucceeded struct {
	Address  geocode.Address
	CacheHit bool
}

// ResolverFailed carries the address inference error.
type ResolverFailed struct {
	Err error
}

func (StartRequested) Name() string    { return "start_requested" }
func (LocatorSucceeded) Name() string  { return "locator_succeeded" }
func (LocatorFailed) Name() string     { return "locator_failed" }
func (ResolverSucceeded) Name() string { return "resolver_succeeded" }
func (ResolverFailed) Name() string    { return "resolver_failed" }

func (StartRequested) event()    {}
func (LocatorSucceeded) event()  {}
func (LocatorFailed) event()     {}
func (ResolverSucceeded) event() {}
func (ResolverFailed) event()    {}

// Transition returns the state that follows from applying event e in state s at time now. It has no
// side effects. Pairs not covered by the transition table yield ErrIllegalTransition, a start request
// during an outstanding cycle yields ErrCycleInProgress. On error s is returned unchanged.
func Transition(s State, e Event, now time.Time) (State, error) {
	switch ev := e.(type) {
	case StartRequested:
		if InProgress(s) {
			return s, ErrCycleInProgress
		}
		return AcquiringCoordinates{CycleID: ev.CycleID, StartedAt: now}, nil

	case LocatorSucceeded:
		if st, ok := s.(AcquiringCoordinates); ok {
			return ResolvingAddress{
				CycleID:     st.CycleID,
				StartedAt:   st.StartedAt,
				LocatedAt:   now,
				Coordinates: ev.Coordinates,
			}, nil
		}

	case LocatorFailed:
		if st, ok := s.(AcquiringCoordinates); ok {
			kind := locatorKind(ev.Err)
			return Failed{
				CycleID:   st.CycleID,
				StartedAt: st.StartedAt,
				FailedAt:  now,
				Kind:      kind,
				Message:   kind.Message(),
				Err:       ev.Err,
			}, nil
		}

	case ResolverSucceeded:
		if st, ok := s.(ResolvingAddress); ok {
			return Resolved{
				CycleID:     st.CycleID,
				StartedAt:   st.StartedAt,
				LocatedAt:   st.LocatedAt,
				ResolvedAt:  now,
				Coordinates: st.Coordinates,
				Address:     ev.Address,
				CacheHit:    ev.CacheHit,
			}, nil
		}

	case ResolverFailed:
		if st, ok := s.(ResolvingAddress); ok {
			return Failed{
				CycleID:   st.CycleID,
				StartedAt: st.StartedAt,
				FailedAt:  now,
				Kind:      KindInferenceCallFailed,
				Message:   KindInferenceCallFailed.Message(),
				Err:       ev.Err,
			}, nil
		}
	}

	return s, fmt.Errorf("%w: %s in state %s", ErrIllegalTransition, e.Name(), s.Status())
}
