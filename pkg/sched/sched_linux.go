//go:build linux

package sched

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// OSAdapter applies settings with sched_setaffinity, setpriority and
// sched_setscheduler on the calling thread.
type OSAdapter struct{}

// NewOSAdapter returns the adapter for the current platform.
func NewOSAdapter() OSAdapter { return OSAdapter{} }

// SetAffinity pins the calling thread to cpus. CPUs that do not exist are
// ignored; if none remain the call fails.
func (OSAdapter) SetAffinity(cpus []int) bool {
	valid := ValidCPUs(cpus)
	if len(valid) == 0 {
		return false
	}

	var set unix.CPUSet
	set.Zero()
	for _, c := range valid {
		set.Set(c)
	}
	return unix.SchedSetaffinity(0, &set) == nil
}

// SetPriority sets the policy and priority of the calling thread.
func (OSAdapter) SetPriority(policy Policy, priority int) bool {
	tid := unix.Gettid()

	param := struct{ priority int32 }{}
	if policy.Realtime() {
		param.priority = int32(priority)
	}
	_, _, errno := unix.RawSyscall(unix.SYS_SCHED_SETSCHEDULER,
		uintptr(tid), uintptr(linuxPolicy(policy)), uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return false
	}

	if policy.Realtime() {
		return true
	}
	// PRIO_PROCESS with a thread id targets that thread only on Linux.
	return unix.Setpriority(unix.PRIO_PROCESS, tid, priority) == nil
}

// Policy numbers from <linux/sched.h>.
const (
	schedOther = 0
	schedFIFO  = 1
	schedRR    = 2
	schedBatch = 3
	schedIdle  = 5
)

func linuxPolicy(p Policy) int {
	switch p {
	case PolicyFIFO:
		return schedFIFO
	case PolicyRR:
		return schedRR
	case PolicyBatch:
		return schedBatch
	case PolicyIdle:
		return schedIdle
	default:
		return schedOther
	}
}
