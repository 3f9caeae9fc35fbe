package worker

import "context"

// Hooks is the capability set a worker type implements.
// All methods are called from the worker goroutine, one at a time.
// Failures inside hooks are the implementer's concern.
type Hooks[T any] interface {
	// OnInitialize is called once, before anything else.
	OnInitialize()

	// MainLoop is the repeated unit of work. It is called again as soon as it
	// returns while the worker is running, so it should block or sleep for
	// its own cadence.
	MainLoop()

	// OnPause is called once each time the worker enters a pause.
	OnPause()

	// OnResume is called once each time the worker leaves a pause.
	OnResume()

	// OnShutdown is called once, last.
	OnShutdown()

	// OnConfiguration receives an accepted configuration while paused.
	OnConfiguration(cfg T)
}

// BaseHooks provides no-op implementations of every hook.
// Embed it to implement only the hooks you need.
type BaseHooks[T any] struct{}

func (BaseHooks[T]) OnInitialize()         {}
func (BaseHooks[T]) MainLoop()             {}
func (BaseHooks[T]) OnPause()              {}
func (BaseHooks[T]) OnResume()             {}
func (BaseHooks[T]) OnShutdown()           {}
func (BaseHooks[T]) OnConfiguration(cfg T) {}

// Lifecycle is the controller surface shared by every worker.
type Lifecycle interface {
	Initialize() error
	Pause() error
	Resume() error
	Shutdown() error
}

// Configurable is implemented by anything that accepts a configuration.
type Configurable[T any] interface {
	Configure(cfg T) error
	Configuration() T
}

// Process is a configurable lifecycle that also transforms input into output
// synchronously.
type Process[C, I, O any] interface {
	Lifecycle
	Configurable[C]
	Execute(ctx context.Context, input I) (O, error)
}
