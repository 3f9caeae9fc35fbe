package lifecycle

// State represents the lifecycle state of a worker.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StatePaused
	StateResuming
	StateShutdown
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateResuming:
		return "Resuming"
	case StateShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no transition can leave s.
func (s State) Terminal() bool {
	return s == StateShutdown
}

// CanTransition reports whether moving from one state to another is legal.
// Shutdown is reachable from every state, including itself.
func CanTransition(from, to State) bool {
	if to == StateShutdown {
		return true
	}

	switch from {
	case StateUninitialized:
		return to == StateRunning
	case StateRunning:
		return to == StatePaused
	case StatePaused:
		return to == StateResuming
	case StateResuming:
		return to == StateRunning
	default:
		return false
	}
}
