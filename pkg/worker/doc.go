// Package worker runs one long-lived background goroutine under cooperative
// lifecycle control.
//
// A Worker calls user hooks from its own goroutine: OnInitialize once,
// MainLoop repeatedly while running, OnPause/OnResume around pauses,
// OnConfiguration with each accepted configuration, and OnShutdown once at the
// end. Callers drive it with Initialize, Pause, Resume, Shutdown and Configure.
//
// # Usage
//
//	w, err := worker.New[Settings](&myHooks{},
//	    worker.WithName("ticker"),
//	    worker.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := w.Initialize(); err != nil {
//	    return err
//	}
//
//	_ = w.Pause()
//	_ = w.Configure(Settings{Interval: time.Second})
//	_ = w.Resume()
//
//	_ = w.Shutdown() // blocks until OnShutdown has returned
//
// # Configuration hand-off
//
// Configure places a value in a single-slot mailbox and returns at once. The
// worker delivers it to OnConfiguration only while paused, each time its
// bounded pause wait wakes (on Resume, on Configure, on Shutdown, or after the
// wait interval, 100ms by default). MainLoop therefore never runs concurrently
// with OnConfiguration. A second Configure before the first value is delivered
// fails with ErrPendingConfigurationExists.
//
// # Concurrency
//
// Every controller method is safe to call from any goroutine. Each one is
// atomic on the worker state, but calls racing each other are not ordered: if
// Pause and Shutdown race, the pause may or may not be observed, and Pause may
// fail with ErrInvalidStateForPause. The worker always reaches StateShutdown
// once Shutdown has been called. Work units are never
// interrupted; Shutdown takes effect after the current hook returns.
//
// Hooks must not call Shutdown on their own worker, since Shutdown waits for
// the hook's goroutine to exit.
package worker
