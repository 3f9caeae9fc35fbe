// Package mailbox provides a single-slot exchange for pending values.
//
// A Mailbox holds at most one value. Offer stores a value only when the slot
// is empty and fails with ErrOccupied otherwise; values are never queued and
// never overwritten. Take removes the stored value, if any.
//
// Workers use a Mailbox to hand a configuration from controller goroutines to
// their background goroutine at a safe point.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package mailbox
