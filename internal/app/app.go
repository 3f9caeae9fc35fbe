// Package app composes the demo ticker, its worker and the optional
// supporting services (metrics endpoint, settings watcher) into one runnable
// unit for the threadworker command.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/threadworker/internal/cliconfig"
	"github.com/bft-labs/threadworker/internal/demo"
	"github.com/bft-labs/threadworker/pkg/log"
	"github.com/bft-labs/threadworker/pkg/metrics"
	"github.com/bft-labs/threadworker/pkg/status"
	"github.com/bft-labs/threadworker/pkg/worker"
	"github.com/bft-labs/threadworker/plugins/configwatcher"
)

// ShutdownTimeout is the maximum time to wait for the metrics server to
// drain during shutdown.
const ShutdownTimeout = 5 * time.Second

// ErrShutdownTimeout is returned when the metrics server did not stop in time.
var ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

// App runs one demo ticker worker.
type App struct {
	cfg    cliconfig.Config
	logger log.Logger

	ticker  *demo.Ticker
	worker  *worker.Worker[demo.Settings]
	repo    *status.FileRepository
	watcher *configwatcher.Plugin[demo.Settings]

	collector *metrics.Collector
	server    *http.Server
	listener  net.Listener
	serveDone chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// New builds the application from a validated configuration.
func New(cfg cliconfig.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	settings := demo.Settings{
		Message:  cfg.Message,
		Interval: demo.Duration(cfg.Interval),
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		repo:   status.NewFileRepository(cfg.StateDir),
	}
	a.ticker = demo.NewTicker(settings, a.repo, logger)

	opts := []worker.Option{
		worker.WithName(cfg.Name),
		worker.WithLogger(logger),
		worker.WithWaitInterval(cfg.WaitInterval),
		worker.WithScheduling(cfg.Scheduling()),
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		a.collector = metrics.NewCollector(reg)
		opts = append(opts, worker.WithEventHandler(a.collector))
	}

	w, err := worker.New[demo.Settings](a.ticker, opts...)
	if err != nil {
		return nil, fmt.Errorf("create worker: %w", err)
	}
	a.worker = w
	a.ticker.Attach(w)

	if cfg.SettingsFile != "" {
		a.watcher = configwatcher.New[demo.Settings](w, configwatcher.Config{
			Path: cfg.SettingsFile,
		}, logger)
		a.watcher.SetBase(a.ticker.Settings)
	}

	return a, nil
}

// Worker returns the worker run by the application.
func (a *App) Worker() *worker.Worker[demo.Settings] { return a.worker }

// Ticker returns the demo hooks.
func (a *App) Ticker() *demo.Ticker { return a.ticker }

// MetricsAddr returns the address the metrics server listens on, or "" when
// metrics are disabled or not started.
func (a *App) MetricsAddr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Start brings up the metrics server, the worker and the settings watcher.
// On error everything already started is stopped again.
func (a *App) Start(ctx context.Context) error {
	if a.collector != nil {
		ln, err := net.Listen("tcp", a.cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("listen metrics: %w", err)
		}
		a.listener = ln

		mux := http.NewServeMux()
		mux.Handle("/metrics", a.collector.Handler())
		a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		a.serveDone = make(chan struct{})

		go func() {
			defer close(a.serveDone)
			if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", log.Err(err))
			}
		}()
		a.logger.Info("metrics server listening", log.String("addr", ln.Addr().String()))
	}

	if err := a.worker.Initialize(); err != nil {
		_ = a.Stop()
		return fmt.Errorf("initialize worker: %w", err)
	}

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			_ = a.Stop()
			return fmt.Errorf("start settings watcher: %w", err)
		}
	}

	return nil
}

// Run starts the application and blocks until ctx is done or the configured
// duration elapses, then stops it.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	var deadline <-chan time.Time
	if a.cfg.Duration > 0 {
		t := time.NewTimer(a.cfg.Duration)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case <-ctx.Done():
		a.logger.Info("stopping", log.String("reason", "context done"))
	case <-deadline:
		a.logger.Info("stopping", log.String("reason", "duration elapsed"))
	}

	return a.Stop()
}

// Pause pauses the worker.
func (a *App) Pause() error { return a.worker.Pause() }

// Resume resumes the worker.
func (a *App) Resume() error { return a.worker.Resume() }

// Stop stops the watcher, shuts the worker down and closes the metrics
// server. It is safe to call more than once.
func (a *App) Stop() error {
	a.stopOnce.Do(func() {
		if a.watcher != nil {
			_ = a.watcher.Stop()
		}

		_ = a.worker.Shutdown()

		if a.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(ctx); err != nil {
				a.logger.Warn("metrics server shutdown", log.Err(err))
				a.stopErr = ErrShutdownTimeout
				return
			}
			<-a.serveDone
		}
	})
	return a.stopErr
}
