// Package lifecycle provides the worker state machine.
//
// This package defines the lifecycle states of a background worker
// (Uninitialized, Running, Paused, Resuming, Shutdown), the legal transitions
// between them, and an atomic Cell that holds the current state of one worker
// instance. It performs no I/O.
//
// # Usage
//
// Create a cell and drive it with compare-and-swap transitions:
//
//	var cell lifecycle.Cell // starts in StateUninitialized
//
//	if !cell.Transition(lifecycle.StateUninitialized, lifecycle.StateRunning) {
//	    return ErrAlreadyInitialized
//	}
//
//	// ... later, from any goroutine ...
//	previous := cell.Terminate()
//
// # State Machine
//
// Valid state transitions:
//   - Uninitialized -> Running
//   - Running -> Paused
//   - Paused -> Resuming
//   - Resuming -> Running
//   - any -> Shutdown (terminal)
//
// Uninitialized and Shutdown are never re-entered. Every transition except the
// terminal one goes through Cell.Transition, so a worker that reached Shutdown
// cannot be moved out of it by a racing caller.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package lifecycle
