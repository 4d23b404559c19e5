// Package natsinvoke implements the invocation strategy port over NATS
// request/reply. Each specialist listens on its own invoke subject; a
// per-specialist circuit breaker keeps a dead specialist from tying up
// dispatch capacity.
package natsinvoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/intent-solutions/foreman/internal/config"
	"github.com/intent-solutions/foreman/internal/resilience"
)

// SubjectPrefix is the subject namespace for specialist invocation.
// The full subject is "a2a.invoke.{specialist}".
const SubjectPrefix = "a2a.invoke."

// invokeRequest is the wire envelope sent to a specialist.
type invokeRequest struct {
	SkillID string         `json:"skill_id"`
	Payload map[string]any `json:"payload"`
	Context map[string]any `json:"context,omitempty"`
}

// invokeReply is the wire envelope returned by a specialist. A non-empty
// Error means the specialist's skill raised; the dispatcher converts it
// into a FAILED result.
type invokeReply struct {
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Invoker sends invocation requests over NATS request/reply.
type Invoker struct {
	nc      *nats.Conn
	timeout time.Duration

	breakerCfg config.Breaker

	bmu      sync.Mutex
	breakers map[string]*resilience.Breaker
}

// Connect establishes a NATS connection for remote invocation.
func Connect(url string, timeout time.Duration, breakerCfg config.Breaker) (*Invoker, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	slog.Info("nats connected", "url", url)
	return &Invoker{
		nc:         nc,
		timeout:    timeout,
		breakerCfg: breakerCfg,
		breakers:   make(map[string]*resilience.Breaker),
	}, nil
}

// Subject returns the invoke subject for a specialist.
func Subject(specialist string) string {
	return SubjectPrefix + specialist
}

// Invoke sends the request and waits for the specialist's reply, bounded
// by the configured timeout. All failures (open breaker, timeout, NATS
// errors, specialist errors) come back as regular errors for the
// dispatcher to capture.
func (i *Invoker) Invoke(ctx context.Context, specialist, skillID string, payload, taskCtx map[string]any) (map[string]any, error) {
	data, err := json.Marshal(invokeRequest{
		SkillID: skillID,
		Payload: payload,
		Context: taskCtx,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal invoke request: %w", err)
	}

	var result map[string]any
	execErr := i.breaker(specialist).Execute(func() error {
		reqCtx := ctx
		if i.timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, i.timeout)
			defer cancel()
		}

		msg, err := i.nc.RequestWithContext(reqCtx, Subject(specialist), data)
		if err != nil {
			return fmt.Errorf("invoke %s over nats: %w", specialist, err)
		}

		var reply invokeReply
		if err := json.Unmarshal(msg.Data, &reply); err != nil {
			return fmt.Errorf("decode reply from %s: %w", specialist, err)
		}
		if reply.Error != "" {
			return errors.New(reply.Error)
		}
		result = reply.Result
		return nil
	})
	if execErr != nil {
		if errors.Is(execErr, resilience.ErrCircuitOpen) {
			return nil, fmt.Errorf("specialist %s: %w", specialist, execErr)
		}
		return nil, execErr
	}
	return result, nil
}

// IsConnected reports whether the NATS connection is up.
func (i *Invoker) IsConnected() bool {
	return i.nc.IsConnected()
}

// Close shuts down the NATS connection.
func (i *Invoker) Close() {
	i.nc.Close()
}

// breaker returns the circuit breaker for a specialist, creating it on
// first use.
func (i *Invoker) breaker(specialist string) *resilience.Breaker {
	i.bmu.Lock()
	defer i.bmu.Unlock()

	b, ok := i.breakers[specialist]
	if !ok {
		b = resilience.NewBreaker(i.breakerCfg.MaxFailures, i.breakerCfg.Timeout)
		i.breakers[specialist] = b
	}
	return b
}
