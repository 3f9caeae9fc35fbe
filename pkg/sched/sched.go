package sched

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/bft-labs/threadworker/pkg/log"
)

// Policy is an OS scheduling policy.
type Policy int

const (
	PolicyOther Policy = iota
	PolicyFIFO
	PolicyRR
	PolicyBatch
	PolicyIdle
)

// String returns the lowercase policy name used in configuration files.
func (p Policy) String() string {
	switch p {
	case PolicyOther:
		return "other"
	case PolicyFIFO:
		return "fifo"
	case PolicyRR:
		return "rr"
	case PolicyBatch:
		return "batch"
	case PolicyIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Realtime reports whether the policy takes a static priority (1-99 on Linux)
// rather than a nice value.
func (p Policy) Realtime() bool {
	return p == PolicyFIFO || p == PolicyRR
}

// ParsePolicy converts a policy name into a Policy.
// An empty name selects PolicyOther.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "other", "normal":
		return PolicyOther, nil
	case "fifo":
		return PolicyFIFO, nil
	case "rr", "round-robin":
		return PolicyRR, nil
	case "batch":
		return PolicyBatch, nil
	case "idle":
		return PolicyIdle, nil
	default:
		return PolicyOther, fmt.Errorf("unknown scheduling policy %q", name)
	}
}

// Config describes the scheduling settings for one worker thread.
type Config struct {
	// Affinity lists the CPU indices the thread may run on.
	// Empty leaves affinity unchanged.
	Affinity []int

	// Policy is the scheduling policy.
	Policy Policy

	// Priority is the nice value for non-realtime policies and the static
	// priority for realtime ones. Zero with PolicyOther leaves priority unchanged.
	Priority int
}

// IsZero reports whether the config asks for no change at all.
func (c Config) IsZero() bool {
	return len(c.Affinity) == 0 && c.Policy == PolicyOther && c.Priority == 0
}

// Adapter applies scheduling settings to the calling OS thread.
type Adapter interface {
	SetAffinity(cpus []int) bool
	SetPriority(policy Policy, priority int) bool
}

// ValidCPUs returns the entries of cpus that name an existing CPU, without
// duplicates, in their original order.
func ValidCPUs(cpus []int) []int {
	n := runtime.NumCPU()
	seen := make(map[int]bool, len(cpus))
	out := make([]int, 0, len(cpus))
	for _, c := range cpus {
		if c < 0 || c >= n || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Apply pushes cfg through adapter. Failures are logged as warnings.
// It reports whether every requested setting was applied.
func Apply(adapter Adapter, cfg Config, logger log.Logger) bool {
	ok := true

	if len(cfg.Affinity) > 0 {
		if !adapter.SetAffinity(cfg.Affinity) {
			logger.Warn("failed to set thread affinity", log.Ints("cpus", cfg.Affinity))
			ok = false
		}
	}

	if cfg.Policy != PolicyOther || cfg.Priority != 0 {
		if !adapter.SetPriority(cfg.Policy, cfg.Priority) {
			logger.Warn("failed to set thread priority",
				log.Stringer("policy", cfg.Policy),
				log.Int("priority", cfg.Priority),
			)
			ok = false
		}
	}

	return ok
}
