package worker

import (
	"errors"

	"github.com/bft-labs/threadworker/pkg/mailbox"
)

// Controller errors. They are returned wrapped with the observed state and can
// be checked with errors.Is.
var (
	// ErrAlreadyInitialized is returned when Initialize is called on a worker
	// that has left StateUninitialized.
	ErrAlreadyInitialized = errors.New("worker: already initialized")

	// ErrInvalidStateForPause is returned when Pause is called outside
	// StateRunning and StatePaused.
	ErrInvalidStateForPause = errors.New("worker: pause called in invalid state")

	// ErrInvalidStateForResume is returned when Resume is called outside
	// StatePaused and StateRunning.
	ErrInvalidStateForResume = errors.New("worker: resume called in invalid state")

	// ErrPendingConfigurationExists is returned by Configure while an earlier
	// configuration has not been delivered yet.
	ErrPendingConfigurationExists = mailbox.ErrOccupied

	// ErrShutdown is returned by Configure once Shutdown has been called.
	ErrShutdown = errors.New("worker: shut down")

	// ErrNilHooks is returned by New when no hooks are given.
	ErrNilHooks = errors.New("worker: nil hooks")
)
