package worker

import (
	"runtime"
	"time"

	"github.com/bft-labs/threadworker/pkg/log"
	"github.com/bft-labs/threadworker/pkg/sched"
)

// run is the body of the worker goroutine.
func (w *Worker[T]) run() {
	defer close(w.done)

	if !w.opts.sched.IsZero() {
		// Never unlocked: the thread carries our scheduling settings and is
		// discarded by the runtime when this goroutine exits.
		runtime.LockOSThread()
		if sched.Apply(w.opts.adapter, w.opts.sched, w.logger) {
			w.logger.Info("scheduling applied",
				log.Ints("affinity", w.opts.sched.Affinity),
				log.Stringer("policy", w.opts.sched.Policy),
				log.Int("priority", w.opts.sched.Priority),
			)
		}
	}

	w.invoke(HookInitialize, w.hooks.OnInitialize)

	// paused is true between OnPause and OnResume.
	paused := false

	for !w.quitting() {
		switch w.state.Load() {
		case StateRunning:
			w.invoke(HookMainLoop, w.hooks.MainLoop)

		case StatePaused:
			if !paused {
				paused = true
				w.invoke(HookPause, w.hooks.OnPause)
			}
			w.waitPaused()

		case StateResuming:
			paused = w.resume(paused)

		default:
			<-w.quit
		}
	}

	// Requests accepted before quit still get their hooks.
	switch w.state.Load() {
	case StatePaused:
		if !paused {
			w.invoke(HookPause, w.hooks.OnPause)
		}
	case StateResuming:
		w.resume(paused)
	}

	w.invoke(HookShutdown, w.hooks.OnShutdown)
	w.terminate("worker loop exited")
}

// resume completes a pause cycle and returns the new paused flag.
// Pause and Resume can both land during one work unit; the hooks still see a
// full cycle.
func (w *Worker[T]) resume(paused bool) bool {
	if !paused {
		w.invoke(HookPause, w.hooks.OnPause)
	}
	w.invoke(HookResume, w.hooks.OnResume)
	w.transition(StateResuming, StateRunning, "resumed")
	return false
}

// waitPaused performs one bounded wait and then delivers any pending
// configuration. This is the only place OnConfiguration is called.
func (w *Worker[T]) waitPaused() {
	t := time.NewTimer(w.opts.waitInterval)
	select {
	case <-w.quit:
	case <-w.wake:
	case <-t.C:
	}
	t.Stop()

	cfg, ok := w.mailbox.Take()
	if !ok {
		return
	}
	w.invoke(HookConfiguration, func() { w.hooks.OnConfiguration(cfg) })
	w.applied.Store(&cfg)
	w.logger.Debug("configuration applied")
}

func (w *Worker[T]) invoke(h Hook, fn func()) {
	start := time.Now()
	fn()
	w.events.OnHook(HookEvent{
		WorkerID: w.id,
		Name:     w.opts.name,
		Hook:     h,
		Duration: time.Since(start),
	})
}
