// Package audit defines the audit sink port and the dispatch audit record.
package audit

import (
	"context"
	"time"
)

// Entry is one structured audit record, emitted exactly once per dispatch.
// Identity is the caller's identity string, propagated unmodified.
type Entry struct {
	TaskID     string    `json:"task_id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Identity   string    `json:"identity"`
	Specialist string    `json:"specialist"`
	SkillID    string    `json:"skill_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink receives audit entries. A sink failure must never affect the
// dispatch that produced the entry; callers log and move on.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// Fanout is a Sink that delivers each entry to every member sink.
// The first error is returned after all sinks have been attempted.
type Fanout []Sink

func (f Fanout) Record(ctx context.Context, e Entry) error {
	var first error
	for _, s := range f {
		if err := s.Record(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
