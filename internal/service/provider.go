// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"log/slog"

	"github.com/pirayeshfar/location-finder/internal/geocode"
	"github.com/pirayeshfar/location-finder/internal/http"
	"github.com/pirayeshfar/location-finder/internal/inference"
	"github.com/pirayeshfar/location-finder/internal/inference/provider/gemini"
	"github.com/pirayeshfar/location-finder/internal/locate"
	"github.com/pirayeshfar/location-finder/internal/locate/provider/geoclue"
	"github.com/pirayeshfar/location-finder/internal/locate/provider/geoip"
	"github.com/pirayeshfar/location-finder/internal/locate/provider/geolocation_file"
	"github.com/pirayeshfar/location-finder/internal/locate/provider/gnss"
	"github.com/pirayeshfar/location-finder/internal/locate/provider/google"
	"github.com/pirayeshfar/location-finder/internal/locate/provider/gpsd"
	"github.com/pirayeshfar/location-finder/internal/locate/provider/ichnaea"
	"github.com/pirayeshfar/location-finder/internal/logger"
	"github.com/pirayeshfar/location-finder/internal/wlan"
)

// selectLocatorProvider returns the positioning capability of the configuration. The "none"
// provider yields a nil capability, every cycle then fails with a missing capability.
func (s *Service) selectLocatorProvider() (locate.Capability, error) {
	conf := s.config.Locator
	switch conf.Provider {
	case "geoclue":
		return geoclue.NewGeolocationGeoClueProvider(conf.DesktopID), nil
	case "gpsd":
		return gpsd.NewGeolocationGPSDProvider(conf.GPSD.Host, conf.GPSD.Port), nil
	case "nmea":
		return gnss.NewGeolocationNMEAProvider(conf.Serial.Port, conf.Serial.Baud), nil
	case "file":
		return geolocation_file.NewGeolocationFileProvider(conf.File), nil
	case "geoip":
		provider, err := geoip.NewGeolocationGeoIPProvider(http.New(s.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create GeoIP provider: %w", err)
		}
		return provider, nil
	case "ichnaea":
		provider, err := ichnaea.NewGeolocationICHNAEAProvider(http.New(s.logger), s.wlanScanner(), conf.Ichnaea.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create ICHNAEA provider: %w", err)
		}
		return provider, nil
	case "google":
		provider, err := google.NewGeolocationGoogleProvider(conf.Google.APIKey, http.New(s.logger), s.wlanScanner())
		if err != nil {
			return nil, fmt.Errorf("failed to create Google geolocation provider: %w", err)
		}
		return provider, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported locator provider: %s", conf.Provider)
	}
}

// wlanScanner returns a Wi-Fi scanner, or nil if the host has no usable wireless interface.
func (s *Service) wlanScanner() wlan.Scanner {
	client, err := wlan.New()
	if err != nil {
		s.logger.Warn("Wi-Fi scanning unavailable, falling back to IP based lookups", logger.Err(err))
		return nil
	}
	s.closers = append(s.closers, client)
	return client
}

// selectGeocodeProvider returns the address resolver of the configuration, wrapped in the address
// cache if a cache TTL is configured.
func (s *Service) selectGeocodeProvider() (geocode.Geocoder, error) {
	var generator inference.Generator
	switch s.config.Inference.Provider {
	case "gemini":
		client, err := gemini.New(http.New(s.logger), s.config.Inference.APIKey, s.config.Inference.Model,
			s.config.Inference.Endpoint, s.config.Inference.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		generator = client
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", s.config.Inference.Provider)
	}

	resolver, err := geocode.NewResolver(generator, s.logger)
	if err != nil {
		return nil, err
	}
	if s.config.Resolver.CacheTTL <= 0 {
		return resolver, nil
	}
	s.logger.Debug("address cache enabled", slog.Duration("ttl", s.config.Resolver.CacheTTL),
		slog.Duration("miss_ttl", s.config.Resolver.CacheMissTTL))
	return geocode.NewCachedGeocoder(resolver, s.config.Resolver.CacheTTL, s.config.Resolver.CacheMissTTL), nil
}
