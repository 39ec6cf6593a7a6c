// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	const (
		expectLogLevel         = slog.LevelInfo
		expectOutputFormat     = "text"
		expectLocatorProvider  = "geoclue"
		expectLocatorTimeout   = time.Second * 10
		expectInferenceModel   = "gemini-2.5-flash"
		expectInferenceTimeout = time.Minute * 2
	)
	t.Run("new config with all defaults set", func(t *testing.T) {
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.LogLevel != expectLogLevel {
			t.Errorf("expected log level to be: %s, got %s", expectLogLevel, conf.LogLevel)
		}
		if conf.Output.Format != expectOutputFormat {
			t.Errorf("expected output format to be: %s, got %s", expectOutputFormat, conf.Output.Format)
		}
		if conf.Locator.Provider != expectLocatorProvider {
			t.Errorf("expected locator provider to be: %s, got %s", expectLocatorProvider, conf.Locator.Provider)
		}
		if conf.Locator.Timeout != expectLocatorTimeout {
			t.Errorf("expected locator timeout to be: %s, got %s", expectLocatorTimeout, conf.Locator.Timeout)
		}
		if conf.Inference.Model != expectInferenceModel {
			t.Errorf("expected inference model to be: %s, got %s", expectInferenceModel, conf.Inference.Model)
		}
		if conf.Inference.Timeout != expectInferenceTimeout {
			t.Errorf("expected inference timeout to be: %s, got %s", expectInferenceTimeout,
				conf.Inference.Timeout)
		}
		if conf.Resolver.CacheTTL != 0 {
			t.Errorf("expected address cache to be disabled, got TTL %s", conf.Resolver.CacheTTL)
		}
		if conf.Watch.Interval != 0 {
			t.Errorf("expected watch mode to be disabled, got interval %s", conf.Watch.Interval)
		}
		if conf.Output.Templates.Text != DefaultTextTpl {
			t.Errorf("expected default text template, got %q", conf.Output.Templates.Text)
		}
		if conf.Output.Templates.Tooltip != DefaultTooltipTpl {
			t.Errorf("expected default tooltip template, got %q", conf.Output.Templates.Tooltip)
		}
		if !strings.HasSuffix(conf.Locator.File, "location-finder/geolocation") {
			t.Errorf("expected default geolocation file, got %q", conf.Locator.File)
		}
	})
	t.Run("values from env override the defaults", func(t *testing.T) {
		t.Setenv("LOCATIONFINDER_LOCATOR_PROVIDER", "GPSD")
		t.Setenv("LOCATIONFINDER_INFERENCE_APIKEY", "secret")
		t.Setenv("LOCATIONFINDER_WATCH_INTERVAL", "5m")
		t.Setenv("LOCATIONFINDER_OUTPUT_FORMAT", "json")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Locator.Provider != "gpsd" {
			t.Errorf("expected locator provider to be normalized to gpsd, got %s", conf.Locator.Provider)
		}
		if conf.Inference.APIKey != "secret" {
			t.Errorf("expected inference API key to be set from env, got %q", conf.Inference.APIKey)
		}
		if conf.Watch.Interval != time.Minute*5 {
			t.Errorf("expected watch interval to be 5m, got %s", conf.Watch.Interval)
		}
		if conf.Output.Format != "json" {
			t.Errorf("expected output format to be json, got %s", conf.Output.Format)
		}
	})
	t.Run("cache miss TTL follows the hit TTL when unset", func(t *testing.T) {
		t.Setenv("LOCATIONFINDER_RESOLVER_CACHE_TTL", "1h")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Resolver.CacheMissTTL != time.Hour {
			t.Errorf("expected cache miss TTL to be 1h, got %s", conf.Resolver.CacheMissTTL)
		}
	})
	t.Run("new config with invalid values from env", func(t *testing.T) {
		t.Setenv("LOCATIONFINDER_LOGLEVEL", "invalid")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validation rejects invalid values", func(t *testing.T) {
		tests := []struct {
			name  string
			env   string
			value string
		}{
			{"output format", "LOCATIONFINDER_OUTPUT_FORMAT", "xml"},
			{"locator provider", "LOCATIONFINDER_LOCATOR_PROVIDER", "carrier-pigeon"},
			{"locator timeout", "LOCATIONFINDER_LOCATOR_TIMEOUT", "-1s"},
			{"serial baud", "LOCATIONFINDER_LOCATOR_SERIAL_BAUD", "-9600"},
			{"inference provider", "LOCATIONFINDER_INFERENCE_PROVIDER", "oracle"},
			{"inference timeout", "LOCATIONFINDER_INFERENCE_TIMEOUT", "-2m"},
			{"cache TTL", "LOCATIONFINDER_RESOLVER_CACHE_TTL", "-1h"},
			{"watch interval", "LOCATIONFINDER_WATCH_INTERVAL", "-1m"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Setenv(tc.env, tc.value)
				_, err := New()
				if err == nil {
					t.Error("expected config to fail, but didn't")
				}
			})
		}
	})
}

func TestNewFromFile(t *testing.T) {
	t.Run("reading config from valid file succeeds", func(t *testing.T) {
		conf, err := NewFromFile("../../etc", "config.toml")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.LogLevel != slog.LevelInfo {
			t.Errorf("expected log level to be: %s, got %s", slog.LevelInfo, conf.LogLevel)
		}
		if conf.Locator.Provider != "geoclue" {
			t.Errorf("expected locator provider to be geoclue, got %s", conf.Locator.Provider)
		}
		if conf.Locator.GPSD.Port != "2947" {
			t.Errorf("expected gpsd port to be 2947, got %s", conf.Locator.GPSD.Port)
		}
		if conf.Locator.Serial.Baud != 9600 {
			t.Errorf("expected serial baud to be 9600, got %d", conf.Locator.Serial.Baud)
		}
		if conf.Inference.Timeout != time.Minute*2 {
			t.Errorf("expected inference timeout to be 2m, got %s", conf.Inference.Timeout)
		}
	})
	t.Run("reading config from non-existent file fails", func(t *testing.T) {
		_, err := NewFromFile("../../etc", "non-existent.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("reading invalid config file fails", func(t *testing.T) {
		_, err := NewFromFile("../../testdata", "invalid.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
}
