package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/intent-solutions/foreman/internal/domain/delegation"
)

// DelegationRequest is one entry in a fan-out batch.
type DelegationRequest struct {
	Specialist string         `json:"specialist"`
	SkillID    string         `json:"skill_id"`
	Payload    map[string]any `json:"payload"`
	Context    map[string]any `json:"context,omitempty"`
}

// DelegationService is the façade the foreman uses to route work to
// specialists: single delegation, independent fan-out, availability
// probing, and capability introspection.
type DelegationService struct {
	dispatcher *Dispatcher
	registry   *Registry
	// identity is the foreman's own identity string, stamped on every
	// task it creates and propagated unchanged into audit entries.
	identity    string
	maxParallel int64
}

// NewDelegationService creates the façade. maxParallel bounds concurrent
// dispatches in DelegateToMultiple; values below 1 mean sequential.
func NewDelegationService(dispatcher *Dispatcher, registry *Registry, identity string, maxParallel int) *DelegationService {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &DelegationService{
		dispatcher:  dispatcher,
		registry:    registry,
		identity:    identity,
		maxParallel: int64(maxParallel),
	}
}

// DelegateToSpecialist builds a Task stamped with the foreman's identity
// and dispatches it. Structural errors are returned to the caller;
// invocation failures come back as a FAILED Result with a nil error.
func (s *DelegationService) DelegateToSpecialist(ctx context.Context, specialist, skillID string, payload, taskCtx map[string]any) (delegation.Result, error) {
	task := delegation.Task{
		ID:         uuid.NewString(),
		Specialist: specialist,
		SkillID:    skillID,
		Payload:    payload,
		Context:    taskCtx,
		Identity:   s.identity,
	}
	return s.dispatcher.Dispatch(ctx, task)
}

// DelegateToMultiple dispatches each request independently: one request's
// structural or runtime failure never cancels or skips the others. The
// returned slice has exactly one Result per request, in input order.
// Structural errors are folded into FAILED results so no error escapes.
//
// Requests run on a bounded worker pool of maxParallel dispatches.
func (s *DelegationService) DelegateToMultiple(ctx context.Context, requests []DelegationRequest) []delegation.Result {
	results := make([]delegation.Result, len(requests))
	sem := semaphore.NewWeighted(s.maxParallel)
	var wg sync.WaitGroup

	for i, req := range requests {
		wg.Add(1)
		go func(i int, req DelegationRequest) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = failedResult(req, err.Error())
				return
			}
			defer sem.Release(1)

			result, err := s.DelegateToSpecialist(ctx, req.Specialist, req.SkillID, req.Payload, req.Context)
			if err != nil {
				results[i] = failedResult(req, err.Error())
				return
			}
			results[i] = result
		}(i, req)
	}

	wg.Wait()
	return results
}

// CheckAvailability reports whether the named specialist is registered.
// No dispatch is performed.
func (s *DelegationService) CheckAvailability(specialist string) bool {
	_, err := s.registry.Get(specialist)
	return err == nil
}

// GetCapabilities returns the specialist's declared skills for
// introspection and planning, without dispatching.
func (s *DelegationService) GetCapabilities(specialist string) ([]delegation.Skill, error) {
	card, err := s.registry.Get(specialist)
	if err != nil {
		return nil, err
	}
	return card.Skills, nil
}

// failedResult wraps a structural error into the Result shape used for
// batch entries, so batch callers see a uniform list.
func failedResult(req DelegationRequest, msg string) delegation.Result {
	return delegation.Result{
		Status:     delegation.StatusFailed,
		Specialist: req.Specialist,
		SkillID:    req.SkillID,
		Error:      msg,
		Timestamp:  time.Now().UTC(),
	}
}
