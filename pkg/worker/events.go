package worker

import (
	"time"

	"github.com/bft-labs/threadworker/pkg/lifecycle"
)

// Hook identifies a hook invocation.
type Hook int

const (
	HookInitialize Hook = iota
	HookMainLoop
	HookPause
	HookResume
	HookShutdown
	HookConfiguration
)

// String returns the hook name.
func (h Hook) String() string {
	switch h {
	case HookInitialize:
		return "initialize"
	case HookMainLoop:
		return "main_loop"
	case HookPause:
		return "pause"
	case HookResume:
		return "resume"
	case HookShutdown:
		return "shutdown"
	case HookConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// StateChangeEvent describes one lifecycle transition.
type StateChangeEvent struct {
	WorkerID string
	Name     string
	Previous lifecycle.State
	Current  lifecycle.State
	Reason   string
}

// HookEvent describes one completed hook invocation.
type HookEvent struct {
	WorkerID string
	Name     string
	Hook     Hook
	Duration time.Duration
}

// ConfigurationRejectedEvent is emitted when Configure fails.
type ConfigurationRejectedEvent struct {
	WorkerID string
	Name     string
	Err      error
}

// EventHandler receives worker events. Methods are called synchronously from
// the goroutine that caused the event (a controller caller or the worker
// goroutine) and must not block. OnStateChange calls for one worker are
// serialized and arrive in transition order; a handler must not call back
// into the worker's controller methods from OnStateChange.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnHook(event HookEvent)
	OnConfigurationRejected(event ConfigurationRejectedEvent)
}

// BaseEventHandler provides no-op implementations of EventHandler.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)                     {}
func (BaseEventHandler) OnHook(HookEvent)                                   {}
func (BaseEventHandler) OnConfigurationRejected(ConfigurationRejectedEvent) {}

// handlers fans events out to several handlers in registration order.
type handlers []EventHandler

func (hs handlers) OnStateChange(e StateChangeEvent) {
	for _, h := range hs {
		h.OnStateChange(e)
	}
}

func (hs handlers) OnHook(e HookEvent) {
	for _, h := range hs {
		h.OnHook(e)
	}
}

func (hs handlers) OnConfigurationRejected(e ConfigurationRejectedEvent) {
	for _, h := range hs {
		h.OnConfigurationRejected(e)
	}
}
