// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package resolution implements the state machine that sequences coordinate acquisition and address
// inference for a single location resolution cycle.
package resolution

import (
	"time"

	"github.com/pirayeshfar/location-finder/internal/geocode"
	"github.com/pirayeshfar/location-finder/internal/locate"
)

// Status identifies the variant of a State.
type Status int

const (
	StatusIdle Status = iota
	StatusAcquiringCoordinates
	StatusResolvingAddress
	StatusResolved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAcquiringCoordinates:
		return "acquiring"
	case StatusResolvingAddress:
		return "resolving"
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the progress of the pipeline. The set of implementations is closed, a State only carries
// the data that is valid in its status.
type State interface {
	Status() Status
	// Cycle returns the ID of the cycle the state belongs to, it is empty for Idle.
	Cycle() string
	sealed()
}

// Idle is the state before the first cycle.
type Idle struct{}

// AcquiringCoordinates is the state while the Locator is running.
type AcquiringCoordinates struct {
	CycleID   string
	StartedAt time.Time
}

// ResolvingAddress is the state while the address is inferred for the acquired coordinates.
type ResolvingAddress struct {
	CycleID     string
	StartedAt   time.Time
	LocatedAt   time.Time
	Coordinates locate.Coordinates
}

// Resolved is the terminal state of a successful cycle.
type Resolved struct {
	CycleID     string
	StartedAt   time.Time
	LocatedAt   time.Time
	ResolvedAt  time.Time
	Coordinates locate.Coordinates
	Address     geocode.Address
	CacheHit    bool
}

// Failed is the terminal state of a failed cycle. Message is the user facing message of Kind and Err
// the underlying cause.
type Failed struct {
	CycleID   string
	StartedAt time.Time
	FailedAt  time.Time
	Kind      ErrorKind
	Message   string
	Err       error
}

func (Idle) Status() Status                 { return StatusIdle }
func (AcquiringCoordinates) Status() Status { return StatusAcquiringCoordinates }
func (ResolvingAddress) Status() Status     { return StatusResolvingAddress }
func (Resolved) Status() Status             { return StatusResolved }
func (Failed) Status() Status               { return StatusFailed }

func (Idle) Cycle() string                   { return "" }
func (s AcquiringCoordinates) Cycle() string { return s.CycleID }
func (s ResolvingAddress) Cycle() string     { return s.CycleID }
func (s Resolved) Cycle() string             { return s.CycleID }
func (s Failed) Cycle() string               { return s.CycleID }

func (Idle) sealed()                 {}
func (AcquiringCoordinates) sealed() {}
func (ResolvingAddress) sealed()     {}
func (Resolved) sealed()             {}
func (Failed) sealed()               {}

// InProgress reports whether a cycle is outstanding in state s.
func InProgress(s State) bool {
	switch s.Status() {
	case StatusAcquiringCoordinates, StatusResolvingAddress:
		return true
	default:
		return false
	}
}

// Duration returns how long the cycle took, it is zero for states that are not terminal.
func Duration(s State) time.Duration {
	switch st := s.(type) {
	case Resolved:
		return st.ResolvedAt.Sub(st.StartedAt)
	case Failed:
		return st.FailedAt.Sub(st.StartedAt)
	default:
		return 0
	}
}
