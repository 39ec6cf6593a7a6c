// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package resolution

import (
	"errors"

	"github.com/pirayeshfar/location-finder/internal/locate"
)

var (
	// ErrIllegalTransition is returned for every (state, event) pair not covered by the transition table.
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrCycleInProgress is returned when a start is requested while a cycle is outstanding.
	ErrCycleInProgress = errors.New("a location cycle is already in progress")
)

// ErrorKind classifies why a cycle failed.
type ErrorKind int

const (
	KindCapabilityMissing ErrorKind = iota + 1
	KindPermissionDenied
	KindPositionUnavailable
	KindInferenceCallFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindCapabilityMissing:
		return "capability_missing"
	case KindPermissionDenied:
		return "permission_denied"
	case KindPositionUnavailable:
		return "position_unavailable"
	case KindInferenceCallFailed:
		return "inference_failed"
	default:
		return "unknown"
	}
}

// Message returns the untranslated user facing message of the kind. It doubles as the message ID
// of the translation catalog.
func (k ErrorKind) Message() string {
	switch k {
	case KindCapabilityMissing:
		return "Geolocation is not supported on this system."
	case KindPermissionDenied:
		return "Access to your location was denied. Please allow location access and try again."
	case KindPositionUnavailable:
		return "Your location could not be determined. Please try again."
	case KindInferenceCallFailed:
		return "The address for your location could not be determined. Please try again."
	default:
		return "An unknown error occurred."
	}
}

// Kinds returns all error kinds.
func Kinds() []ErrorKind {
	return []ErrorKind{KindCapabilityMissing, KindPermissionDenied, KindPositionUnavailable, KindInferenceCallFailed}
}

// locatorKind classifies a Locator failure. Errors the Locator did not classify are treated as
// an unavailable position.
func locatorKind(err error) ErrorKind {
	switch {
	case errors.Is(err, locate.ErrCapabilityMissing):
		return KindCapabilityMissing
	case errors.Is(err, locate.ErrPermissionDenied):
		return KindPermissionDenied
	default:
		return KindPositionUnavailable
	}
}
