// Package configwatcher feeds a worker its configuration from a TOML file.
//
// The plugin watches one file with fsnotify. Each write is debounced, decoded
// on top of the worker's current configuration and handed to the worker.
// A worker only consumes configuration while paused, so a running worker is
// paused until the value is delivered and then resumed.
//
// # Usage
//
//	p := configwatcher.New[Settings](w, configwatcher.Config{
//	    Path: "/etc/demo/settings.toml",
//	}, logger)
//	if err := p.Start(ctx); err != nil {
//	    return err
//	}
//	defer p.Stop()
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/threadworker/pkg/lifecycle"
	"github.com/bft-labs/threadworker/pkg/log"
	"github.com/bft-labs/threadworker/pkg/worker"
)

// Error codes for config file issues.
const (
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeReadError        = "READ_ERROR"
	ErrCodeDecodeError      = "DECODE_ERROR"
)

// ErrDrainTimeout is returned when a paused worker did not consume the
// configuration within Config.DrainTimeout.
var ErrDrainTimeout = errors.New("configwatcher: configuration not consumed in time")

// Target is the worker surface the plugin drives.
// *worker.Worker[T] satisfies it.
type Target[T any] interface {
	worker.Configurable[T]
	Pause() error
	Resume() error
	State() lifecycle.State
	PendingConfiguration() bool
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML file to watch. Required.
	Path string

	// RetryInterval is the first delay between delivery attempts while the
	// worker still holds an undelivered configuration. It doubles up to
	// MaxRetryInterval.
	// Default: 50 milliseconds
	RetryInterval time.Duration

	// MaxRetryInterval caps the retry delay.
	// Default: 2 seconds
	MaxRetryInterval time.Duration

	// DebounceDelay is the delay to wait after a file change before loading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// DrainTimeout bounds how long a worker paused by the plugin may take to
	// consume the configuration before it is resumed anyway.
	// Default: 5 seconds
	DrainTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults and no Path.
func DefaultConfig() Config {
	return Config{
		RetryInterval:    50 * time.Millisecond,
		MaxRetryInterval: 2 * time.Second,
		DebounceDelay:    100 * time.Millisecond,
		DrainTimeout:     5 * time.Second,
	}
}

// Plugin watches a configuration file and delivers it to a worker.
type Plugin[T any] struct {
	mu sync.Mutex

	cfg    Config
	target Target[T]
	base   func() T
	logger log.Logger

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer

	// deliverMu serializes deliveries so two reloads never interleave
	// their pause and resume.
	deliverMu sync.Mutex
}

// New creates a config watcher for target. Zero durations in cfg take their
// defaults. A nil logger disables logging.
func New[T any](target Target[T], cfg Config, logger log.Logger) *Plugin[T] {
	def := DefaultConfig()
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.MaxRetryInterval < cfg.RetryInterval {
		cfg.MaxRetryInterval = max(def.MaxRetryInterval, cfg.RetryInterval)
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = def.DebounceDelay
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = def.DrainTimeout
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &Plugin[T]{
		cfg:    cfg,
		target: target,
		base:   target.Configuration,
		logger: logger.With(log.String("plugin", "configwatcher"), log.String("path", cfg.Path)),
	}
}

// SetBase makes Load decode on top of base() instead of the target's last
// delivered configuration. Call it before Start.
func (p *Plugin[T]) SetBase(base func() T) {
	if base != nil {
		p.base = base
	}
}

// Name returns the plugin identifier.
func (p *Plugin[T]) Name() string {
	return "configwatcher"
}

// Start delivers the file's current content, if any, and starts watching it.
// It returns once the watch is established.
func (p *Plugin[T]) Start(ctx context.Context) error {
	if p.cfg.Path == "" {
		return errors.New("configwatcher: path is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(p.cfg.Path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.cfg.Path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.Info("config watcher started")

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer watcher.Close()

		if _, err := os.Stat(p.cfg.Path); err == nil {
			p.reload(watchCtx)
		}
		p.watchLoop(watchCtx, watcher)
	}()

	return nil
}

// Stop stops watching and waits for an in-flight delivery to finish.
func (p *Plugin[T]) Stop() error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if p.debounce != nil && p.debounce.Stop() {
		p.wg.Done()
	}
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Plugin[T]) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	name := filepath.Base(p.cfg.Path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("watcher error", log.Err(err))
		}
	}
}

func (p *Plugin[T]) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A stopped timer never runs its func, so release its count here.
	if p.debounce != nil && p.debounce.Stop() {
		p.wg.Done()
	}

	p.wg.Add(1)
	p.debounce = time.AfterFunc(p.cfg.DebounceDelay, func() {
		defer p.wg.Done()
		if ctx.Err() == nil {
			p.reload(ctx)
		}
	})
}

// reload loads the file and delivers it, logging the outcome.
func (p *Plugin[T]) reload(ctx context.Context) {
	if err := p.Reload(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("config reload failed",
			log.String("code", errorToCode(err)),
			log.Err(err),
		)
		return
	}
	p.logger.Info("configuration delivered")
}

// Reload reads the file now and delivers it to the target.
func (p *Plugin[T]) Reload(ctx context.Context) error {
	cfg, err := p.Load()
	if err != nil {
		return err
	}
	return p.Deliver(ctx, cfg)
}

// Load decodes the file on top of the base configuration (by default the
// target's last delivered one), so keys missing from the file keep their
// current values.
func (p *Plugin[T]) Load() (T, error) {
	cfg := p.base()

	data, err := os.ReadFile(p.cfg.Path)
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, &decodeError{err: err}
	}
	return cfg, nil
}

// Deliver hands cfg to the target and makes sure it is consumed.
// While the target holds an undelivered configuration, Deliver retries with
// backoff until ctx is done. If the target is running, it is paused until the
// value is consumed (bounded by DrainTimeout) and then resumed.
func (p *Plugin[T]) Deliver(ctx context.Context, cfg T) error {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	backoff := lifecycle.NewBackoff(p.cfg.RetryInterval, p.cfg.MaxRetryInterval)
	for attempt := 1; ; attempt++ {
		err := p.target.Configure(cfg)
		if err == nil {
			break
		}
		if !errors.Is(err, worker.ErrPendingConfigurationExists) {
			return err
		}

		p.logger.Debug("configuration pending, retrying",
			log.Int("attempt", attempt),
			log.Duration("backoff", backoff.Current()),
		)
		if err := backoff.Wait(ctx); err != nil {
			return err
		}
	}

	if p.target.State() != lifecycle.StateRunning {
		// Paused workers pick it up on their own; others never will.
		return nil
	}

	if err := p.target.Pause(); err != nil {
		return fmt.Errorf("pause for configuration: %w", err)
	}
	drainErr := p.waitDrained(ctx)

	if err := p.target.Resume(); err != nil {
		return errors.Join(drainErr, fmt.Errorf("resume after configuration: %w", err))
	}
	return drainErr
}

func (p *Plugin[T]) waitDrained(ctx context.Context) error {
	deadline := time.NewTimer(p.cfg.DrainTimeout)
	defer deadline.Stop()

	poll := time.NewTicker(5 * time.Millisecond)
	defer poll.Stop()

	for p.target.PendingConfiguration() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrDrainTimeout
		case <-poll.C:
		}
	}
	return nil
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func errorToCode(err error) string {
	var de *decodeError
	if errors.As(err, &de) {
		return ErrCodeDecodeError
	}
	if os.IsNotExist(err) {
		return ErrCodeFileNotFound
	}
	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		return ErrCodePermissionDenied
	}
	return ErrCodeReadError
}
