package worker

import (
	"sync"
	"time"

	"github.com/bft-labs/threadworker/pkg/sched"
)

// recorder implements Hooks[int] and records every call.
// Consecutive MainLoop calls are collapsed into one entry.
type recorder struct {
	mu        sync.Mutex
	calls     []string
	mainLoops int
	configs   []int

	// gate, when set, blocks MainLoop until it receives or is closed.
	gate    chan struct{}
	entered chan struct{}
}

func newRecorder() *recorder {
	return &recorder{}
}

// newGatedRecorder returns a recorder whose MainLoop signals entered and then
// blocks until release is called.
func newGatedRecorder() *recorder {
	return &recorder{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "main_loop" {
		r.mainLoops++
		if n := len(r.calls); n > 0 && r.calls[n-1] == name {
			return
		}
	}
	r.calls = append(r.calls, name)
}

func (r *recorder) OnInitialize() { r.record("initialize") }
func (r *recorder) OnPause()      { r.record("pause") }
func (r *recorder) OnResume()     { r.record("resume") }
func (r *recorder) OnShutdown()   { r.record("shutdown") }

func (r *recorder) MainLoop() {
	r.record("main_loop")
	if r.gate != nil {
		select {
		case r.entered <- struct{}{}:
		default:
		}
		<-r.gate
		return
	}
	time.Sleep(time.Millisecond)
}

func (r *recorder) OnConfiguration(cfg int) {
	r.mu.Lock()
	r.configs = append(r.configs, cfg)
	r.mu.Unlock()
	r.record("configuration")
}

func (r *recorder) release() { close(r.gate) }

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// LifecycleCalls returns the calls without main_loop entries.
func (r *recorder) LifecycleCalls() []string {
	var out []string
	for _, c := range r.Calls() {
		if c != "main_loop" {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "main_loop" {
		return r.mainLoops
	}
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (r *recorder) Configs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.configs...)
}

// eventTracker records worker events.
type eventTracker struct {
	BaseEventHandler
	mu       sync.Mutex
	states   []StateChangeEvent
	hooks    []HookEvent
	rejected []ConfigurationRejectedEvent
}

func (e *eventTracker) OnStateChange(event StateChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states = append(e.states, event)
}

func (e *eventTracker) OnHook(event HookEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, event)
}

func (e *eventTracker) OnConfigurationRejected(event ConfigurationRejectedEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejected = append(e.rejected, event)
}

func (e *eventTracker) States() []StateChangeEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]StateChangeEvent(nil), e.states...)
}

func (e *eventTracker) Rejected() []ConfigurationRejectedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ConfigurationRejectedEvent(nil), e.rejected...)
}

func (e *eventTracker) HookCount(h Hook) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.hooks {
		if ev.Hook == h {
			n++
		}
	}
	return n
}

// schedRecorder is a sched.Adapter that records calls into a recorder.
type schedRecorder struct {
	r  *recorder
	ok bool
}

func (s schedRecorder) SetAffinity(cpus []int) bool {
	s.r.record("affinity")
	return s.ok
}

func (s schedRecorder) SetPriority(policy sched.Policy, priority int) bool {
	s.r.record("priority")
	return s.ok
}
