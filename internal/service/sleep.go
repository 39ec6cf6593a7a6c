// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/pirayeshfar/location-finder/internal/logger"
)

const (
	login1Interface = "org.freedesktop.login1.Manager"
	login1Member    = "PrepareForSleep"

	signalBufferSize = 8

	busReconnectDelay = 5 * time.Second
	resumeDebounce    = 2 * time.Second
	networkWakeDelay  = 10 * time.Second
)

// monitorSleepResume starts a new cycle whenever the system resumes from sleep. Lost bus
// connections are re-established until the context is canceled.
func (s *Service) monitorSleepResume(ctx context.Context) {
	var lastResume time.Time
	for {
		conn, err := dbus.ConnectSystemBus()
		if err == nil {
			err = s.watchResume(ctx, conn, &lastResume)
			if closeErr := conn.Close(); closeErr != nil {
				s.logger.Debug("failed to close system bus connection", logger.Err(closeErr))
			}
		}
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Debug("sleep monitoring interrupted", logger.Err(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(busReconnectDelay):
		}
	}
}

// watchResume subscribes to the PrepareForSleep signal of logind and handles resume events until
// the context is canceled or the connection is lost.
func (s *Service) watchResume(ctx context.Context, conn *dbus.Conn, lastResume *time.Time) error {
	if err := conn.AddMatchSignal(dbus.WithMatchInterface(login1Interface),
		dbus.WithMatchMember(login1Member)); err != nil {
		return err
	}

	sigCh := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(sigCh)
	defer conn.RemoveSignal(sigCh)
	s.logger.Debug("subscribed to dbus signal", slog.String("interface", login1Interface),
		slog.String("member", login1Member))

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-sigCh:
			if !ok {
				return nil
			}
			if !isResume(sig) || time.Since(*lastResume) < resumeDebounce {
				continue
			}
			*lastResume = time.Now()
			go s.resumeCycle(ctx)
		}
	}
}

// isResume reports whether the signal announces the end of a sleep. PrepareForSleep carries true
// before suspending and false after resuming.
func isResume(sig *dbus.Signal) bool {
	if sig == nil || sig.Name != login1Interface+"."+login1Member || len(sig.Body) != 1 {
		return false
	}
	sleeping, ok := sig.Body[0].(bool)
	return ok && !sleeping
}

// resumeCycle gives the network time to come back and starts a new cycle.
func (s *Service) resumeCycle(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(networkWakeDelay):
	}
	s.logger.Debug("resumed from sleep, starting location cycle")
	s.startCycle(ctx)
}
