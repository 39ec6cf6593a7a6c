// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package gpspoll implements a minimal gpsd client that reads a single TPV report.
package gpspoll

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"time"
)

const (
	DefaultHost = "localhost"
	DefaultPort = "2947"

	fallbackAccuracy3DFix = 10  // ~10 m typical consumer GPS in open sky
	fallbackAccuracy2DFix = 25  // worse than 3D, but still accurate enough
	fallbackAccuracyNoFix = 1e6 // effectively unusable
	watchTimeout          = time.Second * 2

	watchCommand = `?WATCH={"enable":true,"json":true}` + "\n"
)

// ErrNoTPV is returned when gpsd closed the stream without sending a TPV report.
var ErrNoTPV = errors.New("no TPV response received from gpsd")

// Client is a minimal gpsd client
type Client struct {
	Addr string

	dial func(ctx context.Context, network, address string) (net.Conn, error)
}

// Fix represents a single GPS fix from gpsd.
type Fix struct {
	Lat  float64
	Lon  float64
	Alt  float64
	Acc  float64
	Mode int
}

// tpvReport matches the subset of gpsd's TPV report we care about.
type tpvReport struct {
	Class string  `json:"class"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Alt   float64 `json:"alt"`
	Mode  int     `json:"mode"`
	Epx   float64 `json:"epx"`
	Epy   float64 `json:"epy"`
	Eph   float64 `json:"eph"`
	Epv   float64 `json:"epv"`
}

// New constructs a new Client for the given host and port. Empty values fall back to the
// gpsd defaults.
func New(host, port string) *Client {
	if host == "" {
		host = DefaultHost
	}
	if port == "" {
		port = DefaultPort
	}
	dialer := &net.Dialer{}
	return &Client{
		Addr: net.JoinHostPort(host, port),
		dial: dialer.DialContext,
	}
}

// Poll connects to gpsd, enables watch mode and returns the first TPV report. The connection
// is closed before returning, a close error is joined with the poll result.
func (c *Client) Poll(ctx context.Context) (fix Fix, err error) {
	conn, err := c.dial(ctx, "tcp", c.Addr)
	if err != nil {
		return fix, fmt.Errorf("failed to connect to gpsd at %q: %w", c.Addr, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close gpsd connection: %w", closeErr))
		}
	}()

	// Without a deadline on ctx a silent gpsd would block forever.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(watchTimeout))
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err = fmt.Fprint(conn, watchCommand); err != nil {
		return fix, fmt.Errorf("failed to send WATCH command: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if err = ctx.Err(); err != nil {
			return fix, err
		}

		var report tpvReport
		if jsonErr := json.Unmarshal(scanner.Bytes(), &report); jsonErr != nil {
			continue
		}
		if report.Class != "TPV" {
			continue
		}

		return Fix{
			Lat:  report.Lat,
			Lon:  report.Lon,
			Alt:  report.Alt,
			Acc:  horizontalAccuracyMeters(report),
			Mode: report.Mode,
		}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fix, ctxErr
	}
	if err = scanner.Err(); err != nil {
		return fix, fmt.Errorf("failed to read gpsd response: %w", err)
	}

	return fix, ErrNoTPV
}

// Has2DFix reports whether the fix has at least a 2D fix.
func (f Fix) Has2DFix() bool {
	return f.Mode >= 2
}

func horizontalAccuracyMeters(tpv tpvReport) float64 {
	switch {
	case tpv.Eph > 0:
		return tpv.Eph
	case tpv.Epx > 0 && tpv.Epy > 0:
		return math.Hypot(tpv.Epx, tpv.Epy)
	default:
		return horizontalAccuracyFallback(tpv)
	}
}

func horizontalAccuracyFallback(tpv tpvReport) float64 {
	switch tpv.Mode {
	case 3:
		return fallbackAccuracy3DFix
	case 2:
		return fallbackAccuracy2DFix
	default:
		return fallbackAccuracyNoFix
	}
}
