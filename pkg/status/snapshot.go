package status

import (
	"fmt"
	"time"
)

// Snapshot is the persisted status of one worker.
type Snapshot struct {
	// WorkerID is the identifier assigned when the worker was created.
	WorkerID string `json:"worker_id"`

	// Name is the worker name.
	Name string `json:"name"`

	// State is the lifecycle state name, e.g. "Running".
	State string `json:"state"`

	// Iterations counts completed work units.
	Iterations uint64 `json:"iterations"`

	// Pauses counts entered pauses.
	Pauses uint64 `json:"pauses"`

	// ConfigsApplied counts delivered configurations.
	ConfigsApplied uint64 `json:"configs_applied"`

	// LastConfigAt is when the last configuration was delivered.
	LastConfigAt time.Time `json:"last_config_at"`

	// UpdatedAt is when the snapshot was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty returns true if no snapshot has been recorded.
func (s Snapshot) IsEmpty() bool {
	return s.WorkerID == ""
}

// Touch records state and stamps UpdatedAt.
func (s *Snapshot) Touch(state fmt.Stringer) {
	s.State = state.String()
	s.UpdatedAt = time.Now()
}

// RecordConfiguration counts a delivered configuration.
func (s *Snapshot) RecordConfiguration() {
	s.ConfigsApplied++
	s.LastConfigAt = time.Now()
}
