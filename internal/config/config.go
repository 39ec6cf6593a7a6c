// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "LOCATIONFINDER"

	DefaultTextTpl    = `{{if eq .Status "resolved"}}{{.FullAddress}}{{else}}{{.Message}}{{end}}`
	DefaultTooltipTpl = `{{if eq .Status "resolved"}}{{range .Lines}}{{.Label}}: {{.Value}}
{{end}}{{coords .Latitude .Longitude}}{{else}}{{.Message}}{{end}}`
)

// Allowed values for the enumerated settings.
var (
	OutputFormats      = []string{"text", "json"}
	LocatorProviders   = []string{"geoclue", "gpsd", "ichnaea", "google", "nmea", "file", "geoip", "none"}
	InferenceProviders = []string{"gemini"}
)

// Config represents the application's configuration structure.
type Config struct {
	Locale    string     `fig:"locale"`
	LogLevel  slog.Level `fig:"loglevel" default:"0"`
	Clipboard bool       `fig:"clipboard"`
	OpenMap   bool       `fig:"open_map"`

	Output struct {
		// Allowed values: text, json
		Format    string `fig:"format" default:"text"`
		Templates struct {
			Text    string `fig:"text"`
			Tooltip string `fig:"tooltip"`
		} `fig:"templates"`
	} `fig:"output"`

	Locator struct {
		// Allowed values: geoclue, gpsd, ichnaea, google, nmea, file, geoip, none
		Provider  string        `fig:"provider" default:"geoclue"`
		Timeout   time.Duration `fig:"timeout" default:"10s"`
		File      string        `fig:"file"`
		DesktopID string        `fig:"desktop_id" default:"location-finder"`
		GPSD      struct {
			Host string `fig:"host" default:"localhost"`
			Port string `fig:"port" default:"2947"`
		} `fig:"gpsd"`
		Serial struct {
			Port string `fig:"port" default:"/dev/ttyACM0"`
			Baud int    `fig:"baud" default:"9600"`
		} `fig:"serial"`
		Ichnaea struct {
			Endpoint string `fig:"endpoint"`
		} `fig:"ichnaea"`
		Google struct {
			APIKey string `fig:"apikey"`
		} `fig:"google"`
	} `fig:"locator"`

	Inference struct {
		Provider string        `fig:"provider" default:"gemini"`
		APIKey   string        `fig:"apikey"`
		Model    string        `fig:"model" default:"gemini-2.5-flash"`
		Endpoint string        `fig:"endpoint" default:"https://generativelanguage.googleapis.com/v1beta"`
		Timeout  time.Duration `fig:"timeout" default:"2m"`
	} `fig:"inference"`

	Resolver struct {
		CacheTTL     time.Duration `fig:"cache_ttl"`
		CacheMissTTL time.Duration `fig:"cache_miss_ttl"`
	} `fig:"resolver"`

	Watch struct {
		Interval time.Duration `fig:"interval"`
	} `fig:"watch"`

	Metrics struct {
		Listen string `fig:"listen"`
	} `fig:"metrics"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// Validate normalizes the configuration and rejects values the application cannot work with.
func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}

	c.Output.Format = strings.ToLower(c.Output.Format)
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}
	if c.Output.Templates.Text == "" {
		c.Output.Templates.Text = DefaultTextTpl
	}
	if c.Output.Templates.Tooltip == "" {
		c.Output.Templates.Tooltip = DefaultTooltipTpl
	}

	c.Locator.Provider = strings.ToLower(c.Locator.Provider)
	if !slices.Contains(LocatorProviders, c.Locator.Provider) {
		return fmt.Errorf("invalid locator provider: %s", c.Locator.Provider)
	}
	if c.Locator.Timeout <= 0 {
		return fmt.Errorf("invalid locator timeout: %s", c.Locator.Timeout)
	}
	if c.Locator.File == "" {
		home, _ := os.UserHomeDir()
		c.Locator.File = filepath.Join(home, ".config", "location-finder", "geolocation")
	}
	if c.Locator.Serial.Baud <= 0 {
		return fmt.Errorf("invalid serial baud rate: %d", c.Locator.Serial.Baud)
	}

	c.Inference.Provider = strings.ToLower(c.Inference.Provider)
	if !slices.Contains(InferenceProviders, c.Inference.Provider) {
		return fmt.Errorf("invalid inference provider: %s", c.Inference.Provider)
	}
	if c.Inference.Timeout <= 0 {
		return fmt.Errorf("invalid inference timeout: %s", c.Inference.Timeout)
	}

	if c.Resolver.CacheTTL < 0 || c.Resolver.CacheMissTTL < 0 {
		return fmt.Errorf("invalid resolver cache TTL: %s/%s", c.Resolver.CacheTTL, c.Resolver.CacheMissTTL)
	}
	if c.Resolver.CacheMissTTL == 0 {
		c.Resolver.CacheMissTTL = c.Resolver.CacheTTL
	}
	if c.Watch.Interval < 0 {
		return fmt.Errorf("invalid watch interval: %s", c.Watch.Interval)
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
