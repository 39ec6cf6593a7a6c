// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gnss

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"

	"github.com/pirayeshfar/location-finder/internal/locate"
)

const (
	name = "nmea"

	DefaultBaud = 9600

	// uere is the user equivalent range error in meters used to turn HDOP into an accuracy radius.
	uere        = 5.0
	readTimeout = time.Millisecond * 500
)

var ErrNoFix = errors.New("no valid GGA fix received from receiver")

// GeolocationNMEAProvider reads GGA sentences from a GNSS receiver attached to a serial port.
type GeolocationNMEAProvider struct {
	name   string
	port   string
	baud   int
	openFn func() (io.ReadCloser, error)
}

// NewGeolocationNMEAProvider returns a provider for the receiver at port. A baud rate <= 0 selects
// DefaultBaud.
func NewGeolocationNMEAProvider(port string, baud int) *GeolocationNMEAProvider {
	if baud <= 0 {
		baud = DefaultBaud
	}
	provider := &GeolocationNMEAProvider{
		name: name,
		port: port,
		baud: baud,
	}
	provider.openFn = provider.open
	return provider
}

func (p *GeolocationNMEAProvider) Name() string {
	return p.name
}

// Acquire reads from the receiver until the first GGA sentence with a valid fix arrives or ctx is done.
func (p *GeolocationNMEAProvider) Acquire(ctx context.Context, _ locate.Options) (locate.Coordinates, error) {
	port, err := p.openFn()
	if err != nil {
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable,
			fmt.Errorf("failed to open serial port %q: %w", p.port, err))
	}
	stop := context.AfterFunc(ctx, func() {
		_ = port.Close()
	})
	defer func() {
		if stop() {
			_ = port.Close()
		}
	}()

	coords, err := readFix(ctx, port)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return locate.Coordinates{}, locate.NewPositionError(locate.CodeTimeout, ctxErr)
		}
		return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable, err)
	}
	return coords, nil
}

func (p *GeolocationNMEAProvider) open() (io.ReadCloser, error) {
	return serial.OpenPort(&serial.Config{Name: p.port, Baud: p.baud, ReadTimeout: readTimeout})
}

// readFix returns the position of the first GGA sentence that reports a fix. Sentences that fail
// to parse are skipped, receivers emit partial lines after being opened.
func readFix(ctx context.Context, r io.Reader) (locate.Coordinates, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return locate.Coordinates{}, err
		}
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}
		gga, ok := sentence.(nmea.GGA)
		if !ok || gga.FixQuality == nmea.Invalid {
			continue
		}
		acc := -1.0
		if gga.HDOP > 0 {
			acc = gga.HDOP * uere
		}
		return locate.NewCoordinates(gga.Latitude, gga.Longitude, acc), nil
	}
	if err := scanner.Err(); err != nil {
		return locate.Coordinates{}, fmt.Errorf("failed to read from receiver: %w", err)
	}
	return locate.Coordinates{}, ErrNoFix
}
