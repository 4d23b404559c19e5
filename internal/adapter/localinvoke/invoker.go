// Package localinvoke implements the invocation strategy port with
// in-process handler functions, for specialists compiled into the same
// binary and for tests.
package localinvoke

import (
	"context"
	"fmt"
	"sync"
)

// HandlerFunc executes one skill. The returned map is the raw result
// wrapped into the Result envelope by the dispatcher.
type HandlerFunc func(ctx context.Context, payload, taskCtx map[string]any) (map[string]any, error)

// Invoker routes invocations to registered handler functions, keyed by
// skill id.
type Invoker struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// New creates an empty Invoker.
func New() *Invoker {
	return &Invoker{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to a skill id, replacing any previous binding.
func (i *Invoker) Register(skillID string, fn HandlerFunc) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.handlers[skillID] = fn
}

// Invoke runs the handler registered for the skill. A missing handler is
// a runtime invocation failure, not a structural error: the registry may
// legitimately advertise a skill whose in-process handler is not wired.
func (i *Invoker) Invoke(ctx context.Context, specialist, skillID string, payload, taskCtx map[string]any) (map[string]any, error) {
	i.mu.RLock()
	fn, ok := i.handlers[skillID]
	i.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no local handler registered for skill %q on specialist %q", skillID, specialist)
	}
	return fn(ctx, payload, taskCtx)
}
