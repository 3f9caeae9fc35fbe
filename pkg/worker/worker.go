package worker

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/bft-labs/threadworker/pkg/lifecycle"
	"github.com/bft-labs/threadworker/pkg/log"
	"github.com/bft-labs/threadworker/pkg/mailbox"
)

// State is the lifecycle state of a worker.
type State = lifecycle.State

// Lifecycle states, re-exported for convenience.
const (
	StateUninitialized = lifecycle.StateUninitialized
	StateRunning       = lifecycle.StateRunning
	StatePaused        = lifecycle.StatePaused
	StateResuming      = lifecycle.StateResuming
	StateShutdown      = lifecycle.StateShutdown
)

// Worker owns one background goroutine and the state shared with it.
// Use New to create a Worker; it starts in StateUninitialized.
type Worker[T any] struct {
	id     string
	hooks  Hooks[T]
	opts   options
	logger log.Logger
	events EventHandler

	state   lifecycle.Cell
	mailbox *mailbox.Mailbox[T]
	applied atomic.Pointer[T]

	wake     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}

	// mu orders spawning against Shutdown so a goroutine is never started
	// after Shutdown decided there was nothing to join.
	mu      sync.Mutex
	spawned bool

	// emitMu is held across every state change and its event so handlers
	// observe transitions in the order they happened. Lock order is mu, then
	// emitMu.
	emitMu sync.Mutex
}

// New creates a worker that will call hooks from its background goroutine.
// The goroutine is not started until Initialize.
func New[T any](hooks Hooks[T], opts ...Option) (*Worker[T], error) {
	if hooks == nil {
		return nil, ErrNilHooks
	}

	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()

	var events EventHandler = BaseEventHandler{}
	if len(o.handlers) > 0 {
		events = o.handlers
	}

	return &Worker[T]{
		id:      id,
		hooks:   hooks,
		opts:    o,
		logger:  o.logger.With(log.String("worker", o.name), log.String("worker_id", id)),
		events:  events,
		mailbox: mailbox.New[T](),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Initialize moves the worker to StateRunning and starts its goroutine.
// It returns without waiting for OnInitialize.
// It fails with ErrAlreadyInitialized unless the worker is uninitialized.
func (w *Worker[T]) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	if !w.state.Transition(StateUninitialized, StateRunning) {
		return fmt.Errorf("%w (state %s)", ErrAlreadyInitialized, w.state.Load())
	}
	w.spawned = true
	go w.run()

	w.transitioned(StateUninitialized, StateRunning, "Initialize() called")
	return nil
}

// Pause asks the worker to pause after its current work unit.
// It returns at once; OnPause runs later on the worker goroutine.
// Pausing a paused worker is a no-op. Any state other than StateRunning or
// StatePaused yields ErrInvalidStateForPause.
func (w *Worker[T]) Pause() error {
	for {
		switch current := w.state.Load(); current {
		case StatePaused:
			return nil
		case StateRunning:
			if w.transition(StateRunning, StatePaused, "Pause() called") {
				return nil
			}
			// Lost a race; look again.
		default:
			return fmt.Errorf("%w (state %s)", ErrInvalidStateForPause, current)
		}
	}
}

// Resume asks a paused worker to continue and wakes its pause wait.
// Resuming a running worker is a no-op. Any state other than StatePaused or
// StateRunning yields ErrInvalidStateForResume.
func (w *Worker[T]) Resume() error {
	for {
		switch current := w.state.Load(); current {
		case StateRunning:
			return nil
		case StatePaused:
			if w.transition(StatePaused, StateResuming, "Resume() called") {
				w.signal()
				return nil
			}
		default:
			return fmt.Errorf("%w (state %s)", ErrInvalidStateForResume, current)
		}
	}
}

// Shutdown stops the worker and blocks until its goroutine has run OnShutdown
// and exited. It always returns nil, including on repeated calls and on a
// worker that was never initialized. Calling it from a hook deadlocks.
func (w *Worker[T]) Shutdown() error {
	w.quitOnce.Do(func() { close(w.quit) })

	w.mu.Lock()
	spawned := w.spawned
	if !spawned {
		w.terminate("Shutdown() called before Initialize()")
	}
	w.mu.Unlock()

	if spawned {
		<-w.done
	}
	return nil
}

// Configure hands cfg to the worker. It is delivered to OnConfiguration the
// next time the paused worker wakes. Configure fails with
// ErrPendingConfigurationExists while an earlier value is undelivered, and
// with ErrShutdown once Shutdown has been called.
func (w *Worker[T]) Configure(cfg T) error {
	if w.quitting() {
		return ErrShutdown
	}

	if err := w.mailbox.Offer(cfg); err != nil {
		w.logger.Debug("configuration rejected", log.Err(err))
		w.events.OnConfigurationRejected(ConfigurationRejectedEvent{
			WorkerID: w.id,
			Name:     w.opts.name,
			Err:      err,
		})
		return err
	}

	w.signal()
	return nil
}

// Configuration returns the configuration most recently delivered to
// OnConfiguration, or the zero value if none has been delivered.
func (w *Worker[T]) Configuration() T {
	if p := w.applied.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// PendingConfiguration reports whether a configuration awaits delivery.
func (w *Worker[T]) PendingConfiguration() bool {
	return w.mailbox.Pending()
}

// State returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (w *Worker[T]) State() State {
	return w.state.Load()
}

// ID returns the unique identifier assigned by New.
func (w *Worker[T]) ID() string { return w.id }

// Name returns the name set with WithName.
func (w *Worker[T]) Name() string { return w.opts.name }

// Done returns a channel closed when the worker goroutine has exited.
func (w *Worker[T]) Done() <-chan struct{} { return w.done }

// signal wakes a pause wait without blocking. Wake-ups coalesce.
func (w *Worker[T]) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker[T]) quitting() bool {
	select {
	case <-w.quit:
		return true
	default:
		return false
	}
}

// transition swaps the state and emits the event under emitMu.
func (w *Worker[T]) transition(from, to State, reason string) bool {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()
	if !w.state.Transition(from, to) {
		return false
	}
	w.transitioned(from, to, reason)
	return true
}

// terminate stores StateShutdown and emits the event once.
func (w *Worker[T]) terminate(reason string) {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()
	if previous := w.state.Terminate(); previous != StateShutdown {
		w.transitioned(previous, StateShutdown, reason)
	}
}

// transitioned must be called with emitMu held.
func (w *Worker[T]) transitioned(previous, current State, reason string) {
	w.events.OnStateChange(StateChangeEvent{
		WorkerID: w.id,
		Name:     w.opts.name,
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})

	w.logger.Info("state transition",
		log.Stringer("from", previous),
		log.Stringer("to", current),
		log.String("reason", reason),
	)
}

var (
	_ Lifecycle         = (*Worker[struct{}])(nil)
	_ Configurable[int] = (*Worker[int])(nil)
)
