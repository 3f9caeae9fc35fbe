package worker

import (
	"time"

	"github.com/bft-labs/threadworker/pkg/log"
	"github.com/bft-labs/threadworker/pkg/sched"
)

// DefaultWaitInterval bounds each pause wait.
const DefaultWaitInterval = 100 * time.Millisecond

// Option configures optional behavior of a Worker.
type Option func(*options)

type options struct {
	name         string
	logger       log.Logger
	handlers     handlers
	waitInterval time.Duration
	sched        sched.Config
	adapter      sched.Adapter
}

func defaultOptions() options {
	return options{
		name:         "worker",
		logger:       log.NewNoopLogger(),
		waitInterval: DefaultWaitInterval,
		adapter:      sched.NewOSAdapter(),
	}
}

// WithName sets the worker name used in logs, events and metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler registers a handler for worker events.
// Several handlers may be registered; they are called in registration order.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		if handler != nil {
			o.handlers = append(o.handlers, handler)
		}
	}
}

// WithWaitInterval sets the upper bound of one pause wait, which is also the
// worst-case delay before a missed wake-up is noticed.
func WithWaitInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitInterval = d
		}
	}
}

// WithScheduling pins the worker goroutine to an OS thread and applies cfg to
// it before OnInitialize runs. Failures are logged and are not fatal.
func WithScheduling(cfg sched.Config) Option {
	return func(o *options) {
		o.sched = cfg
	}
}

// WithSchedAdapter replaces the OS scheduling adapter.
func WithSchedAdapter(adapter sched.Adapter) Option {
	return func(o *options) {
		if adapter != nil {
			o.adapter = adapter
		}
	}
}
