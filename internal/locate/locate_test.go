// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"testing/synctest"
	"time"

	"github.com/pirayeshfar/location-finder/internal/logger"
)

type fakeCapability struct {
	calls    int
	opts     Options
	coords   Coordinates
	err      error
	checkErr error
	block    bool
	stalled  bool
}

func (f *fakeCapability) Name() string { return "fake" }

func (f *fakeCapability) Acquire(ctx context.Context, opts Options) (Coordinates, error) {
	f.calls++
	f.opts = opts
	if f.block {
		<-ctx.Done()
		return Coordinates{}, NewPositionError(CodeTimeout, ctx.Err())
	}
	return f.coords, f.err
}

type checkedCapability struct {
	*fakeCapability
}

func (p checkedCapability) CheckAvailable(ctx context.Context) error {
	if p.stalled {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.checkErr
}

func testLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelError, os.Stderr)
}

func TestLocator_Acquire(t *testing.T) {
	t.Run("successful acquisition returns coordinates", func(t *testing.T) {
		capability := &fakeCapability{coords: NewCoordinates(35.6892, 51.389, 12)}
		locator := New(capability, testLogger(), 0)
		coords, err := locator.Acquire(t.Context())
		if err != nil {
			t.Fatalf("failed to acquire position: %s", err)
		}
		if coords.Lat != 35.6892 || coords.Lon != 51.389 {
			t.Errorf("unexpected coordinates: %s", coords)
		}
		if acc, ok := coords.Acc.Get(); !ok || acc != 12 {
			t.Errorf("expected accuracy to be 12, got: %s", coords.Acc)
		}
		if capability.calls != 1 {
			t.Errorf("expected exactly one acquisition, got: %d", capability.calls)
		}
		if !capability.opts.HighAccuracy {
			t.Error("expected high accuracy to be requested")
		}
		if capability.opts.Timeout != AcquireTimeout {
			t.Errorf("expected timeout to be %s, got: %s", AcquireTimeout, capability.opts.Timeout)
		}
	})
	t.Run("missing capability fails without acquisition", func(t *testing.T) {
		locator := New(nil, testLogger(), 0)
		_, err := locator.Acquire(t.Context())
		if !errors.Is(err, ErrCapabilityMissing) {
			t.Errorf("expected error to be %s, got: %s", ErrCapabilityMissing, err)
		}
		if locator.Name() != "none" {
			t.Errorf("expected name to be none, got: %s", locator.Name())
		}
	})
	t.Run("failed availability check fails without acquisition", func(t *testing.T) {
		capability := &fakeCapability{coords: NewCoordinates(1, 1, 1)}
		locator := New(checkedCapability{capability}, testLogger(), 0)
		capability.checkErr = errors.New("service not on bus")
		_, err := locator.Acquire(t.Context())
		if !errors.Is(err, ErrCapabilityMissing) {
			t.Errorf("expected error to be %s, got: %s", ErrCapabilityMissing, err)
		}
		if capability.calls != 0 {
			t.Errorf("expected no acquisition, got: %d", capability.calls)
		}
	})
	t.Run("stalled availability check is bounded by the timeout", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			capability := &fakeCapability{coords: NewCoordinates(1, 1, 1), stalled: true}
			locator := New(checkedCapability{capability}, testLogger(), time.Millisecond*50)
			start := time.Now()
			_, err := locator.Acquire(context.Background())
			if !errors.Is(err, ErrPositionUnavailable) {
				t.Errorf("expected error to be %s, got: %s", ErrPositionUnavailable, err)
			}
			if errors.Is(err, ErrCapabilityMissing) {
				t.Error("expected a stalled check not to be a missing capability")
			}
			if took := time.Since(start); took != time.Millisecond*50 {
				t.Errorf("expected check to be cut off after 50ms, took: %s", took)
			}
			if capability.calls != 0 {
				t.Errorf("expected no acquisition, got: %d", capability.calls)
			}
		})
	})
	t.Run("availability check and acquisition share the timeout", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			capability := &fakeCapability{block: true}
			locator := New(checkedCapability{capability}, testLogger(), time.Second)
			start := time.Now()
			_, err := locator.Acquire(t.Context())
			if !errors.Is(err, ErrPositionUnavailable) {
				t.Errorf("expected error to be %s, got: %s", ErrPositionUnavailable, err)
			}
			if took := time.Since(start); took != time.Second {
				t.Errorf("expected acquisition to take 1s, took: %s", took)
			}
		})
	})
	t.Run("permission denied is classified", func(t *testing.T) {
		capability := &fakeCapability{err: NewPositionError(CodePermissionDenied, errors.New("denied"))}
		_, err := New(capability, testLogger(), 0).Acquire(t.Context())
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("expected error to be %s, got: %s", ErrPermissionDenied, err)
		}
	})
	t.Run("other position errors are unavailable", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
		}{
			{"position unavailable code", NewPositionError(CodePositionUnavailable, nil)},
			{"timeout code", NewPositionError(CodeTimeout, context.DeadlineExceeded)},
			{"unclassified error", errors.New("hardware failure")},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := New(&fakeCapability{err: tc.err}, testLogger(), 0).Acquire(t.Context())
				if !errors.Is(err, ErrPositionUnavailable) {
					t.Errorf("expected error to be %s, got: %s", ErrPositionUnavailable, err)
				}
				if errors.Is(err, ErrPermissionDenied) {
					t.Error("expected error not to be permission denied")
				}
			})
		}
	})
	t.Run("invalid coordinates are unavailable", func(t *testing.T) {
		capability := &fakeCapability{coords: NewCoordinates(91, 0, 1)}
		_, err := New(capability, testLogger(), 0).Acquire(t.Context())
		if !errors.Is(err, ErrPositionUnavailable) {
			t.Errorf("expected error to be %s, got: %s", ErrPositionUnavailable, err)
		}
	})
	t.Run("acquisition is bounded by the timeout", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			capability := &fakeCapability{block: true}
			locator := New(capability, testLogger(), 0)
			start := time.Now()
			_, err := locator.Acquire(t.Context())
			if !errors.Is(err, ErrPositionUnavailable) {
				t.Errorf("expected error to be %s, got: %s", ErrPositionUnavailable, err)
			}
			if took := time.Since(start); took != AcquireTimeout {
				t.Errorf("expected acquisition to take %s, took: %s", AcquireTimeout, took)
			}
		})
	})
}

func TestPositionError(t *testing.T) {
	t.Run("error message includes the code", func(t *testing.T) {
		err := NewPositionError(CodePermissionDenied, errors.New("denied"))
		want := "position error (code 1): denied"
		if err.Error() != want {
			t.Errorf("expected error message to be %q, got: %q", want, err.Error())
		}
	})
	t.Run("error without cause", func(t *testing.T) {
		err := NewPositionError(CodePositionUnavailable, nil)
		want := "position error (code 2)"
		if err.Error() != want {
			t.Errorf("expected error message to be %q, got: %q", want, err.Error())
		}
	})
}
