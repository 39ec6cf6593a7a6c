// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/pirayeshfar/location-finder/internal/inference"
	"github.com/pirayeshfar/location-finder/internal/locate"
	"github.com/pirayeshfar/location-finder/internal/logger"
)

type mockGenerator struct {
	calls int
	req   inference.Request
	text  string
	err   error
}

func (m *mockGenerator) Name() string { return "mock" }

func (m *mockGenerator) Generate(_ context.Context, req inference.Request) (inference.Response, error) {
	m.calls++
	m.req = req
	return inference.Response{Text: m.text}, m.err
}

func testLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelError, os.Stderr)
}

func TestNewResolver(t *testing.T) {
	t.Run("new resolver succeeds", func(t *testing.T) {
		resolver, err := NewResolver(&mockGenerator{}, testLogger())
		if err != nil {
			t.Fatalf("failed to create resolver: %s", err)
		}
		if resolver.Name() != "inference using mock" {
			t.Errorf("unexpected resolver name: %s", resolver.Name())
		}
	})
	t.Run("resolver without generator fails", func(t *testing.T) {
		if _, err := NewResolver(nil, testLogger()); !errors.Is(err, ErrMissingGenerator) {
			t.Errorf("expected error to be %s, got %s", ErrMissingGenerator, err)
		}
	})
}

func TestResolver_Reverse(t *testing.T) {
	t.Run("reverse succeeds", func(t *testing.T) {
		gen := &mockGenerator{text: fullReply}
		resolver, err := NewResolver(gen, testLogger())
		if err != nil {
			t.Fatalf("failed to create resolver: %s", err)
		}
		addr, err := resolver.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatalf("failed to resolve address: %s", err)
		}
		if addr.FullAddress != "تهران، یوسف‌آباد، خیابان فتحی شقاقی، پلاک ۱۲" {
			t.Errorf("unexpected full address: %q", addr.FullAddress)
		}
		if gen.calls != 1 {
			t.Errorf("expected exactly one inference call, got %d", gen.calls)
		}
		if !gen.req.Tools.GeoGrounding || !gen.req.Tools.WebSearch {
			t.Error("expected geographic grounding and web search to be enabled")
		}
		if gen.req.LocationBias == nil || gen.req.LocationBias.Latitude != testCoords.Lat ||
			gen.req.LocationBias.Longitude != testCoords.Lon {
			t.Errorf("expected location bias to be the coordinates, got %+v", gen.req.LocationBias)
		}
		if !strings.Contains(gen.req.Prompt, "35.6892") || !strings.Contains(gen.req.Prompt, "51.389") {
			t.Errorf("expected prompt to contain the coordinates, got %q", gen.req.Prompt)
		}
	})
	t.Run("inference errors fail without retry", func(t *testing.T) {
		gen := &mockGenerator{err: errors.New("service unavailable")}
		resolver, err := NewResolver(gen, testLogger())
		if err != nil {
			t.Fatalf("failed to create resolver: %s", err)
		}
		addr, err := resolver.Reverse(t.Context(), testCoords)
		if !errors.Is(err, ErrInferenceFailed) {
			t.Errorf("expected error to be %s, got %s", ErrInferenceFailed, err)
		}
		if addr.FullAddress != "" || addr.HasDetails() {
			t.Errorf("expected no partial address, got %+v", addr)
		}
		if gen.calls != 1 {
			t.Errorf("expected exactly one inference call, got %d", gen.calls)
		}
	})
	t.Run("empty reply fails", func(t *testing.T) {
		resolver, err := NewResolver(&mockGenerator{text: " \n "}, testLogger())
		if err != nil {
			t.Fatalf("failed to create resolver: %s", err)
		}
		if _, err = resolver.Reverse(t.Context(), testCoords); !errors.Is(err, ErrInferenceFailed) {
			t.Errorf("expected error to be %s, got %s", ErrInferenceFailed, err)
		}
	})
	t.Run("invalid coordinates fail before inference", func(t *testing.T) {
		gen := &mockGenerator{text: fullReply}
		resolver, err := NewResolver(gen, testLogger())
		if err != nil {
			t.Fatalf("failed to create resolver: %s", err)
		}
		_, err = resolver.Reverse(t.Context(), locate.NewCoordinates(100, 0, 1))
		if !errors.Is(err, ErrInferenceFailed) {
			t.Errorf("expected error to be %s, got %s", ErrInferenceFailed, err)
		}
		if !errors.Is(err, locate.ErrInvalidCoordinates) {
			t.Errorf("expected error to be %s, got %s", locate.ErrInvalidCoordinates, err)
		}
		if gen.calls != 0 {
			t.Errorf("expected no inference call, got %d", gen.calls)
		}
	})
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(locate.NewCoordinates(35.6892, 51.389, -1))
	if !strings.Contains(prompt, "35.6892") || !strings.Contains(prompt, "51.389") {
		t.Errorf("expected prompt to contain the coordinates, got %q", prompt)
	}
	lastIndex := -1
	for _, text := range PromptLabels() {
		idx := strings.Index(prompt, "\n"+text+":")
		if idx < 0 {
			t.Fatalf("expected prompt to request label %q", text)
		}
		if idx < lastIndex {
			t.Errorf("expected label %q to follow the previous label", text)
		}
		lastIndex = idx
	}
}
