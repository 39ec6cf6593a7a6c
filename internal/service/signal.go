// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pirayeshfar/location-finder/internal/resolution"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals starts a new cycle on SIGUSR1 and logs the current state on SIGUSR2. A SIGUSR1
// during an outstanding cycle is ignored.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.logger.Debug("restart requested by signal")
				go s.startCycle(ctx)
			case syscall.SIGUSR2:
				s.logState(s.pipeline.Machine().State())
			}
		}
	}
}

func (s *Service) logState(state resolution.State) {
	attrs := []any{slog.String("status", state.Status().String()), slog.String("cycle", state.Cycle())}
	switch st := state.(type) {
	case resolution.Resolved:
		attrs = append(attrs, slog.String("address", st.Address.FullAddress),
			slog.Float64("latitude", st.Coordinates.Lat), slog.Float64("longitude", st.Coordinates.Lon))
	case resolution.Failed:
		attrs = append(attrs, slog.String("kind", st.Kind.String()))
	}
	s.logger.Info("current location state", attrs...)
}
