package mailbox

import "errors"

// ErrOccupied is returned by Offer when the slot already holds a value.
var ErrOccupied = errors.New("pending configuration exists")

// Mailbox is a single-slot exchange safe for concurrent use.
// Use New to create one; the zero value is not usable.
type Mailbox[T any] struct {
	slot chan T
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{slot: make(chan T, 1)}
}

// Offer stores v if the slot is empty.
// It returns ErrOccupied, leaving the stored value untouched, otherwise.
func (m *Mailbox[T]) Offer(v T) error {
	select {
	case m.slot <- v:
		return nil
	default:
		return ErrOccupied
	}
}

// Take removes and returns the stored value.
// The boolean is false if the slot was empty.
func (m *Mailbox[T]) Take() (T, bool) {
	select {
	case v := <-m.slot:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Pending reports whether the slot currently holds a value.
// The answer may be stale by the time the caller acts on it.
func (m *Mailbox[T]) Pending() bool {
	return len(m.slot) > 0
}
