// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

//go:build linux

// Package main implements the location-finder command.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pirayeshfar/location-finder/internal/config"
	"github.com/pirayeshfar/location-finder/internal/i18n"
	"github.com/pirayeshfar/location-finder/internal/logger"
	"github.com/pirayeshfar/location-finder/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	log := logger.NewLogger(slog.LevelError, os.Stderr)

	confPath := flag.String("config", "", "path to the config file")
	copyAddr := flag.Bool("copy", false, "copy the resolved address to the clipboard")
	openMap := flag.Bool("open-map", false, "open the resolved position in the web browser")
	flag.Parse()

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		return 1
	}
	if *copyAddr {
		conf.Clipboard = true
	}
	if *openMap {
		conf.OpenMap = true
	}

	log = logger.NewLogger(conf.LogLevel, os.Stderr)
	t, err := i18n.New(conf.Locale)
	if err != nil {
		log.Error("failed to initialize localizer", logger.Err(err))
		return 1
	}

	serv, err := service.New(conf, log, t)
	if err != nil {
		log.Error("failed to initialize location-finder service", logger.Err(err))
		return 1
	}

	log.Info(t.Get("starting location-finder"), slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	if err = serv.Run(ctx); err != nil {
		if !errors.Is(err, service.ErrCycleFailed) {
			log.Error(t.Get("location-finder failed"), logger.Err(err))
		}
		return 1
	}
	log.Info(t.Get("shutting down location-finder"))
	return 0
}

// loadConfig reads the given config file. Without one, the config file in the user's config
// directory is used if present, otherwise defaults and environment apply.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "location-finder", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
