// Package demo contains the ticker worker run by the threadworker command.
//
// The ticker logs a message at a fixed interval. Both are runtime settings:
// new values are delivered through the worker's configuration hand-off and
// take effect from the next tick. The ticker keeps a status snapshot and
// saves it when it initializes, pauses, receives settings, resumes and shuts
// down.
package demo

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/threadworker/pkg/lifecycle"
	"github.com/bft-labs/threadworker/pkg/log"
	"github.com/bft-labs/threadworker/pkg/status"
	"github.com/bft-labs/threadworker/pkg/worker"
)

// Ticker implements worker.Hooks[Settings].
type Ticker struct {
	logger log.Logger
	repo   status.Repository

	// sleep waits between ticks; replaced in tests.
	sleep func(time.Duration)

	mu       sync.Mutex
	settings Settings
	snap     status.Snapshot
}

// NewTicker creates a ticker starting with settings. A nil repo disables
// snapshots; a nil logger disables logging.
func NewTicker(settings Settings, repo status.Repository, logger log.Logger) *Ticker {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Ticker{
		logger:   logger,
		repo:     repo,
		sleep:    time.Sleep,
		settings: settings,
	}
}

// Attach records the identity of the worker running the ticker in its
// snapshot. Call it before Initialize.
func (t *Ticker) Attach(w interface {
	ID() string
	Name() string
}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.WorkerID = w.ID()
	t.snap.Name = w.Name()
	t.logger = t.logger.With(log.String("worker", w.Name()))
}

// OnInitialize implements worker.Hooks.
func (t *Ticker) OnInitialize() {
	t.mu.Lock()
	s := t.settings
	t.mu.Unlock()

	t.logger.Info("ticker initialized",
		log.String("message", s.Message),
		log.Duration("interval", time.Duration(s.Interval)),
	)
	t.save(lifecycle.StateRunning)
}

// MainLoop implements worker.Hooks.
func (t *Ticker) MainLoop() {
	t.mu.Lock()
	t.snap.Iterations++
	n := t.snap.Iterations
	s := t.settings
	t.mu.Unlock()

	t.logger.Info(s.Message, log.Uint64("iteration", n))
	t.sleep(time.Duration(s.Interval))
}

// OnPause implements worker.Hooks.
func (t *Ticker) OnPause() {
	t.mu.Lock()
	t.snap.Pauses++
	t.mu.Unlock()

	t.logger.Info("ticker paused")
	t.save(lifecycle.StatePaused)
}

// OnResume implements worker.Hooks.
func (t *Ticker) OnResume() {
	t.logger.Info("ticker resumed")
	t.save(lifecycle.StateResuming)
}

// OnShutdown implements worker.Hooks.
func (t *Ticker) OnShutdown() {
	t.mu.Lock()
	n := t.snap.Iterations
	t.mu.Unlock()

	t.logger.Info("ticker shut down", log.Uint64("iterations", n))
	t.save(lifecycle.StateShutdown)
}

// OnConfiguration implements worker.Hooks. Invalid settings are logged and
// dropped.
func (t *Ticker) OnConfiguration(s Settings) {
	if err := s.Validate(); err != nil {
		t.logger.Warn("settings rejected", log.Err(err))
		return
	}

	t.mu.Lock()
	t.settings = s
	t.snap.RecordConfiguration()
	t.mu.Unlock()

	t.logger.Info("settings applied",
		log.String("message", s.Message),
		log.Duration("interval", time.Duration(s.Interval)),
	)
	t.save(lifecycle.StatePaused)
}

// Settings returns the settings in effect.
func (t *Ticker) Settings() Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// Snapshot returns a copy of the current status snapshot.
func (t *Ticker) Snapshot() status.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

func (t *Ticker) save(state lifecycle.State) {
	t.mu.Lock()
	t.snap.Touch(state)
	snap := t.snap
	t.mu.Unlock()

	if t.repo == nil {
		return
	}
	if err := t.repo.Save(context.Background(), snap); err != nil {
		t.logger.Warn("failed to save status snapshot", log.Err(err))
	}
}

var _ worker.Hooks[Settings] = (*Ticker)(nil)
