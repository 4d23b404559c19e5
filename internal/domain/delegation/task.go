package delegation

import (
	"errors"
	"time"
)

// Status is the terminal outcome of a delegation.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	// StatusPartial is a batch-level aggregate only; a single dispatch
	// never produces it.
	StatusPartial Status = "PARTIAL"
)

// Task is the request envelope for one delegation. Tasks are created per
// call, consumed once, and never persisted by this subsystem.
type Task struct {
	ID         string         `json:"task_id,omitempty"`
	Specialist string         `json:"specialist"`
	SkillID    string         `json:"skill_id"`
	Payload    map[string]any `json:"payload"`
	Context    map[string]any `json:"context,omitempty"`
	// Identity is the caller's identity string, propagated unchanged
	// into audit entries.
	Identity string `json:"identity,omitempty"`
}

// Validate checks that the task names a specialist and a skill.
func (t *Task) Validate() error {
	if t.Specialist == "" {
		return errors.New("specialist is required")
	}
	if t.SkillID == "" {
		return errors.New("skill_id is required")
	}
	return nil
}

// Result is the response envelope produced exactly once per Task.
// It must not be mutated after creation.
type Result struct {
	Status     Status         `json:"status"`
	Specialist string         `json:"specialist"`
	SkillID    string         `json:"skill_id"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	// DurationMS is wall-clock time of the invocation step only;
	// validation is not charged.
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Aggregate computes the batch-level verdict for a set of results:
// PARTIAL when successes and failures are mixed.
func Aggregate(results []Result) Status {
	var ok, failed bool
	for i := range results {
		switch results[i].Status {
		case StatusSuccess:
			ok = true
		case StatusFailed:
			failed = true
		}
	}
	switch {
	case ok && failed:
		return StatusPartial
	case failed:
		return StatusFailed
	default:
		return StatusSuccess
	}
}
