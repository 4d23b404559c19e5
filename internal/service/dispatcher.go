package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	fotel "github.com/intent-solutions/foreman/internal/adapter/otel"
	"github.com/intent-solutions/foreman/internal/adapter/ws"
	"github.com/intent-solutions/foreman/internal/domain/delegation"
	"github.com/intent-solutions/foreman/internal/logger"
	"github.com/intent-solutions/foreman/internal/port/audit"
	"github.com/intent-solutions/foreman/internal/port/invoker"
)

// Dispatcher is the single choke point through which every delegation
// passes: resolve descriptor, validate contract, invoke, wrap the outcome
// into a Result envelope, and emit one audit entry.
//
// Dispatch holds no lock and mutates no shared state; it is safe for any
// number of concurrent callers.
type Dispatcher struct {
	registry  *Registry
	validator ContractValidator
	strategy  invoker.Strategy
	sinks     audit.Fanout
	hub       *ws.Hub        // optional
	metrics   *fotel.Metrics // optional
}

// NewDispatcher creates a Dispatcher over the given registry and
// invocation strategy.
func NewDispatcher(registry *Registry, strategy invoker.Strategy) *Dispatcher {
	return &Dispatcher{registry: registry, strategy: strategy}
}

// AddAuditSink appends a sink that receives every dispatch audit entry.
func (d *Dispatcher) AddAuditSink(s audit.Sink) {
	d.sinks = append(d.sinks, s)
}

// SetHub sets the WebSocket hub for dispatch event broadcasts.
func (d *Dispatcher) SetHub(h *ws.Hub) {
	d.hub = h
}

// SetMetrics sets the metric instruments recorded per dispatch.
func (d *Dispatcher) SetMetrics(m *fotel.Metrics) {
	d.metrics = m
}

// Dispatch executes one delegation.
//
// Structural errors (unknown specialist, unknown skill, invalid payload)
// are returned immediately — fail fast, no invocation attempted, no
// duration charged. Runtime errors from the invocation strategy are
// captured into a FAILED Result and never re-raised; that asymmetry is
// what makes independent fan-out safe.
func (d *Dispatcher) Dispatch(ctx context.Context, task delegation.Task) (delegation.Result, error) {
	if err := task.Validate(); err != nil {
		d.recordRejected(ctx, task, "invalid_task")
		return delegation.Result{}, err
	}

	card, err := d.registry.Get(task.Specialist)
	if err != nil {
		d.recordRejected(ctx, task, "specialist_not_found")
		return delegation.Result{}, err
	}

	skill, err := d.validator.ResolveSkill(card, task.SkillID)
	if err != nil {
		d.recordRejected(ctx, task, "skill_not_found")
		return delegation.Result{}, err
	}

	if err := d.validator.ValidatePayload(task.Payload, skill); err != nil {
		d.recordRejected(ctx, task, "invalid_payload")
		return delegation.Result{}, err
	}

	spanCtx, span := fotel.StartDispatchSpan(ctx, task.ID, task.Specialist, task.SkillID)

	start := time.Now()
	raw, invokeErr := d.invoke(spanCtx, task)
	elapsed := time.Since(start)

	result := delegation.Result{
		Specialist: task.Specialist,
		SkillID:    task.SkillID,
		DurationMS: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if invokeErr != nil {
		result.Status = delegation.StatusFailed
		result.Error = invokeErr.Error()
	} else {
		result.Status = delegation.StatusSuccess
		result.Result = raw
	}

	span.SetAttributes(attribute.String("status", string(result.Status)))
	span.End()

	d.audit(ctx, task, result)
	d.recordOutcome(ctx, task, result, elapsed)

	return result, nil
}

// invoke calls the strategy, converting a specialist panic into a regular
// invocation error so it is captured as FAILED like any other.
func (d *Dispatcher) invoke(ctx context.Context, task delegation.Task) (raw map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("specialist panicked: %v", r)
		}
	}()
	return d.strategy.Invoke(ctx, task.Specialist, task.SkillID, task.Payload, task.Context)
}

// audit emits the structured audit log entry and fans it out to sinks.
func (d *Dispatcher) audit(ctx context.Context, task delegation.Task, result delegation.Result) {
	entry := audit.Entry{
		TaskID:     task.ID,
		RequestID:  logger.RequestID(ctx),
		Identity:   task.Identity,
		Specialist: result.Specialist,
		SkillID:    result.SkillID,
		Status:     string(result.Status),
		Error:      result.Error,
		DurationMS: result.DurationMS,
		Timestamp:  result.Timestamp,
	}

	slog.Info("dispatch audit",
		"task_id", entry.TaskID,
		"identity", entry.Identity,
		"specialist", entry.Specialist,
		"skill_id", entry.SkillID,
		"status", entry.Status,
		"duration_ms", entry.DurationMS,
		"timestamp", entry.Timestamp,
	)

	if err := d.sinks.Record(ctx, entry); err != nil {
		slog.Error("audit sink failed", "task_id", entry.TaskID, "error", err)
	}

	if d.hub != nil {
		d.hub.BroadcastEvent(ctx, ws.EventDispatchCompleted, ws.DispatchCompletedEvent{
			TaskID:     task.ID,
			Specialist: result.Specialist,
			SkillID:    result.SkillID,
			Status:     string(result.Status),
			Error:      result.Error,
			DurationMS: result.DurationMS,
		})
	}
}

func (d *Dispatcher) recordOutcome(ctx context.Context, task delegation.Task, result delegation.Result, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("specialist", task.Specialist),
		attribute.String("skill_id", task.SkillID),
	)
	d.metrics.Dispatched.Add(ctx, 1, attrs)
	if result.Status == delegation.StatusFailed {
		d.metrics.Failed.Add(ctx, 1, attrs)
	}
	d.metrics.DispatchDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (d *Dispatcher) recordRejected(ctx context.Context, task delegation.Task, reason string) {
	if d.metrics == nil {
		return
	}
	d.metrics.Rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("specialist", task.Specialist),
		attribute.String("reason", reason),
	))
}
