//go:build !linux

package sched

// OSAdapter reports failure for every call on platforms without thread
// affinity and per-thread scheduling support.
type OSAdapter struct{}

// NewOSAdapter returns the adapter for the current platform.
func NewOSAdapter() OSAdapter { return OSAdapter{} }

func (OSAdapter) SetAffinity(cpus []int) bool                  { return false }
func (OSAdapter) SetPriority(policy Policy, priority int) bool { return false }
