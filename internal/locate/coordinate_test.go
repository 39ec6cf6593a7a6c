// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package locate

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinates_Validate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"tehran", 35.6892, 51.389, false},
		{"lower bounds", -90, -180, false},
		{"upper bounds", 90, 180, false},
		{"latitude too large", 90.1, 0, true},
		{"latitude too small", -90.1, 0, true},
		{"longitude too large", 0, 180.1, true},
		{"longitude too small", 0, -180.1, true},
		{"latitude not a number", math.NaN(), 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := NewCoordinates(tc.lat, tc.lon, -1).Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("expected error to be %s, got: %s", ErrInvalidCoordinates, err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected no error, got: %s", err)
			}
		})
	}
}

func TestNewCoordinates(t *testing.T) {
	t.Run("negative accuracy is not reported", func(t *testing.T) {
		coords := NewCoordinates(1, 2, -1)
		if coords.Acc.IsSet() {
			t.Error("expected accuracy to be unset")
		}
	})
	t.Run("accuracy is reported", func(t *testing.T) {
		coords := NewCoordinates(1, 2, 0)
		if !coords.Acc.IsSet() {
			t.Error("expected accuracy to be set")
		}
	})
}

func TestCoordinates_String(t *testing.T) {
	coords := NewCoordinates(35.6892, 51.389, 10)
	if coords.String() != "35.6892,51.389" {
		t.Errorf("expected string to be 35.6892,51.389, got: %s", coords.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate(35.68921234567, 4); got != 35.6892 {
		t.Errorf("expected truncated value to be 35.6892, got: %f", got)
	}
}
