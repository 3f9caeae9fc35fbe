// Package sched applies CPU affinity and scheduling priority to the calling
// OS thread.
//
// Go does not expose thread handles, so every Adapter method acts on the
// thread running the caller. A goroutine that wants its settings to stick must
// call runtime.LockOSThread before applying them; the worker loop does this
// when scheduling settings are configured.
//
// Both operations are best effort. They report failure with a false return
// and never abort the caller.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package sched
