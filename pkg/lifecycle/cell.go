package lifecycle

import "sync/atomic"

// Cell holds the current state of one worker.
// The zero value is a cell in StateUninitialized. A Cell must not be copied
// after first use.
type Cell struct {
	v atomic.Int32
}

// Load returns the current state.
func (c *Cell) Load() State {
	return State(c.v.Load())
}

// Transition moves the cell from one state to another if the cell currently
// holds from and the transition is legal. It reports whether the swap happened.
func (c *Cell) Transition(from, to State) bool {
	if to == StateShutdown || !CanTransition(from, to) {
		return false
	}
	return c.v.CompareAndSwap(int32(from), int32(to))
}

// Terminate stores StateShutdown and returns the state it replaced.
func (c *Cell) Terminate() State {
	return State(c.v.Swap(int32(StateShutdown)))
}
