// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vorlif/spreak"

	"github.com/pirayeshfar/location-finder/internal/config"
	"github.com/pirayeshfar/location-finder/internal/geocode"
	"github.com/pirayeshfar/location-finder/internal/locate"
	"github.com/pirayeshfar/location-finder/internal/logger"
	"github.com/pirayeshfar/location-finder/internal/observability"
	"github.com/pirayeshfar/location-finder/internal/presenter"
	"github.com/pirayeshfar/location-finder/internal/resolution"
	"github.com/pirayeshfar/location-finder/internal/share"
)

const watchJobName = "location_cycle_job"

// ErrCycleFailed is returned by a one-shot run that ended in the Failed state.
var ErrCycleFailed = errors.New("location cycle failed")

type Service struct {
	SignalSrc signalSource

	config    *config.Config
	logger    *logger.Logger
	t         *spreak.Localizer
	presenter *presenter.Presenter
	metrics   *observability.Metrics
	registry  *prometheus.Registry
	pipeline  *resolution.Pipeline
	scheduler gocron.Scheduler
	clipboard share.Clipboard
	viewer    share.Viewer
	output    io.Writer
	closers   []io.Closer

	resumeMonitor func(context.Context)
}

// New wires the locator, the address resolver and the state machine according to the
// configuration.
func New(conf *config.Config, log *logger.Logger, t *spreak.Localizer) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	pres, err := presenter.New(conf, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	registry := prometheus.NewRegistry()
	service := &Service{
		SignalSrc: stdLibSignalSource{},
		config:    conf,
		logger:    log,
		t:         t,
		presenter: pres,
		metrics:   observability.NewMetrics(registry),
		registry:  registry,
		scheduler: scheduler,
		clipboard: share.SystemClipboard{},
		viewer:    share.Browser{},
		output:    os.Stdout,
	}

	capability, err := service.selectLocatorProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create locator provider: %w", err)
	}
	geocoder, err := service.selectGeocodeProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create address resolver: %w", err)
	}

	service.resumeMonitor = service.monitorSleepResume
	service.pipeline = service.newPipeline(locate.New(capability, log, conf.Locator.Timeout), geocoder)

	return service, nil
}

// newPipeline creates the state machine with the metrics and output observers and the pipeline
// running on it.
func (s *Service) newPipeline(locator resolution.Locator, geocoder geocode.Geocoder) *resolution.Pipeline {
	machine := resolution.NewMachine(clockwork.NewRealClock())
	machine.Subscribe(s.metrics.Observe)
	if s.config.Output.Format == "json" {
		machine.Subscribe(s.printState)
	}
	return resolution.NewPipeline(machine, locator, geocoder)
}

// Run executes a single cycle, or keeps running cycles on every watch interval tick until the
// context is canceled. A one-shot run that fails returns ErrCycleFailed.
func (s *Service) Run(ctx context.Context) error {
	defer s.close()

	if s.config.Metrics.Listen != "" {
		s.startMetricsServer(ctx)
	}

	if s.config.Watch.Interval <= 0 {
		defer s.shutdownScheduler()
		state := s.runCycle(ctx)
		if state.Status() == resolution.StatusFailed {
			return ErrCycleFailed
		}
		return nil
	}

	if err := s.createScheduledJob(ctx, s.config.Watch.Interval, s.startCycle, watchJobName); err != nil {
		return err
	}
	s.scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer s.SignalSrc.Stop(sigChan)
		s.HandleSignals(ctx, sigChan)
	}()
	go s.resumeMonitor(ctx)

	<-ctx.Done()
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// startMetricsServer serves the metrics of the service until the context is canceled.
func (s *Service) startMetricsServer(ctx context.Context) {
	srv := observability.NewServer(s.config.Metrics.Listen, s.registry, s.logger)
	go func() {
		if err := srv.Run(ctx); err != nil {
			s.logger.Error("metrics server failed", logger.Err(err))
		}
	}()
}

// startCycle runs a cycle and discards its result. It is the task of the watch job and the
// signal and resume handlers.
func (s *Service) startCycle(ctx context.Context) {
	_ = s.runCycle(ctx)
}

// runCycle runs one location cycle and hands a resolved address to the configured sinks. A
// trigger that arrives while a cycle is outstanding is ignored and the outstanding state is
// returned.
func (s *Service) runCycle(ctx context.Context) resolution.State {
	id := uuid.NewString()
	log := s.logger.With(slog.String("cycle", id))

	log.Debug("starting location cycle")
	state, err := s.pipeline.Run(ctx, id)
	if err != nil {
		s.metrics.Reject(err)
		if errors.Is(err, resolution.ErrCycleInProgress) {
			log.Debug("location cycle already in progress, ignoring trigger",
				slog.String("outstanding", state.Cycle()))
			return state
		}
		log.Error("location cycle aborted", logger.Err(err))
		return state
	}

	switch st := state.(type) {
	case resolution.Resolved:
		log.Info("address resolved", slog.String("address", st.Address.FullAddress),
			slog.String("coordinates", st.Coordinates.String()), slog.Bool("cached", st.CacheHit),
			slog.Duration("took", resolution.Duration(st)))
		s.share(log, st)
	case resolution.Failed:
		log.Error("location cycle failed", slog.String("kind", st.Kind.String()), logger.Err(st.Err),
			slog.Duration("took", resolution.Duration(st)))
	}

	if s.config.Output.Format == "text" {
		if _, err = io.WriteString(s.output, s.presenter.Card(s.presenter.BuildContext(state, time.Now()))); err != nil {
			log.Error("failed to write address card", logger.Err(err))
		}
	}
	return state
}

// share hands the resolved address to the clipboard and the map viewer if enabled.
func (s *Service) share(log *logger.Logger, state resolution.Resolved) {
	if s.config.Clipboard {
		if err := s.clipboard.WriteText(s.presenter.ClipboardText(state.Address)); err != nil {
			log.Error("failed to copy address to clipboard", logger.Err(err))
		}
	}
	if s.config.OpenMap {
		if err := s.viewer.Open(presenter.MapURL(state.Coordinates)); err != nil {
			log.Error("failed to open map viewer", logger.Err(err))
		}
	}
}

// printState writes a waybar compatible JSON line for the state. It is subscribed to the state
// machine in json output mode.
func (s *Service) printState(_, to resolution.State) {
	output, err := s.presenter.Render(s.presenter.BuildContext(to, time.Now()))
	if err != nil {
		s.logger.Error("failed to render output template", logger.Err(err))
		return
	}
	if err = json.NewEncoder(s.output).Encode(output); err != nil {
		s.logger.Error("failed to encode output", logger.Err(err))
	}
}

func (s *Service) shutdownScheduler() {
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Error("failed to shut down scheduler", logger.Err(err))
	}
}

func (s *Service) close() {
	var errs []error
	for _, closer := range s.closers {
		errs = append(errs, closer.Close())
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("failed to release resources", logger.Err(err))
	}
}
