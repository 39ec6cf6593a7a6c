// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pirayeshfar/location-finder/internal/logger"
)

// AcquireTimeout is the bounded wait for a single position fix.
const AcquireTimeout = time.Second * 10

// Position error codes as reported by a positioning capability.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

var (
	// ErrCapabilityMissing is returned when the host does not expose any positioning capability.
	ErrCapabilityMissing = errors.New("positioning capability not available")

	// ErrPermissionDenied is returned when the user declined access to the position.
	ErrPermissionDenied = errors.New("permission to access the position was denied")

	// ErrPositionUnavailable is returned for every other acquisition failure.
	ErrPositionUnavailable = errors.New("position unavailable")
)

// Capability is a host positioning capability that produces a single position fix per call.
type Capability interface {
	Name() string
	Acquire(ctx context.Context, opts Options) (Coordinates, error)
}

// AvailabilityChecker is implemented by capabilities that can tell whether the host exposes them
// at all.
type AvailabilityChecker interface {
	CheckAvailable(ctx context.Context) error
}

// Options controls a single acquisition.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// PositionError is the classified failure a Capability reports.
type PositionError struct {
	Code int
	Err  error
}

func (e *PositionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("position error (code %d)", e.Code)
	}
	return fmt.Sprintf("position error (code %d): %s", e.Code, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// NewPositionError returns a PositionError with the given code wrapping err.
func NewPositionError(code int, err error) *PositionError {
	return &PositionError{Code: code, Err: err}
}

// Locator acquires device coordinates from a configured Capability.
type Locator struct {
	capability Capability
	logger     *logger.Logger
	opts       Options
}

// New returns a Locator for the given capability. A nil capability is allowed and causes every
// Acquire call to fail with ErrCapabilityMissing. A timeout <= 0 uses AcquireTimeout.
func New(capability Capability, log *logger.Logger, timeout time.Duration) *Locator {
	if timeout <= 0 {
		timeout = AcquireTimeout
	}
	return &Locator{
		capability: capability,
		logger:     log,
		opts:       Options{HighAccuracy: true, Timeout: timeout},
	}
}

// Name returns the name of the configured capability.
func (l *Locator) Name() string {
	if l.capability == nil {
		return "none"
	}
	return l.capability.Name()
}

// Acquire requests exactly one high-accuracy position fix. No retry is attempted. The availability check and the
// acquisition share the timeout. A check that runs out of time is reported as an unavailable
// position, not as a missing capability.
func (l *Locator) Acquire(ctx context.Context) (Coordinates, error) {
	if l.capability == nil {
		return Coordinates{}, ErrCapabilityMissing
	}

	ctxAcquire, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	start := time.Now()
	if checker, ok := l.capability.(AvailabilityChecker); ok {
		if err := checker.CheckAvailable(ctxAcquire); err != nil {
			if ctxAcquire.Err() != nil {
				return Coordinates{}, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
			}
			return Coordinates{}, fmt.Errorf("%w: %w", ErrCapabilityMissing, err)
		}
	}

	coords, err := l.capability.Acquire(ctxAcquire, l.opts)
	if err != nil {
		return Coordinates{}, classify(err)
	}
	if err = coords.Validate(); err != nil {
		return Coordinates{}, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
	}

	l.logger.Debug("position acquired", slogAttrs(l.capability.Name(), coords, time.Since(start))...)
	return coords, nil
}

func classify(err error) error {
	var posErr *PositionError
	if errors.As(err, &posErr) && posErr.Code == CodePermissionDenied {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
}

func slogAttrs(source string, coords Coordinates, took time.Duration) []any {
	return []any{
		"source", source,
		"lat", coords.Lat,
		"lon", coords.Lon,
		"accuracy", coords.Acc.String(),
		"took", took.String(),
	}
}
