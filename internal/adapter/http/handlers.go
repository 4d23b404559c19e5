package http

import (
	"context"
	"net/http"

	"github.com/intent-solutions/foreman/internal/domain/delegation"
	"github.com/intent-solutions/foreman/internal/port/audit"
	"github.com/intent-solutions/foreman/internal/service"
)

const maxBodyBytes = 1 << 20

// AuditReader serves audit trail queries. Nil when audit persistence is
// disabled.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
	RecentBySpecialist(ctx context.Context, specialist string, limit int) ([]audit.Entry, error)
}

// Handlers bundles the services the HTTP surface exposes.
type Handlers struct {
	Delegation *service.DelegationService
	Registry   *service.Registry
	Audit      AuditReader
	Card       CardInfo
}

// delegateRequest is the body for a single delegation.
type delegateRequest struct {
	Specialist string         `json:"specialist"`
	SkillID    string         `json:"skill_id"`
	Payload    map[string]any `json:"payload"`
	Context    map[string]any `json:"context,omitempty"`
}

// batchRequest is the body for a fan-out delegation.
type batchRequest struct {
	Requests []service.DelegationRequest `json:"requests"`
}

// batchResponse carries the per-request results plus the aggregate verdict.
type batchResponse struct {
	Status  delegation.Status   `json:"status"`
	Results []delegation.Result `json:"results"`
}

// Delegate handles POST /api/v1/delegations.
func (h *Handlers) Delegate(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[delegateRequest](w, r, maxBodyBytes)
	if !ok {
		return
	}
	if req.Specialist == "" {
		writeError(w, http.StatusBadRequest, "specialist is required")
		return
	}
	if req.SkillID == "" {
		writeError(w, http.StatusBadRequest, "skill_id is required")
		return
	}

	result, err := h.Delegation.DelegateToSpecialist(r.Context(), req.Specialist, req.SkillID, req.Payload, req.Context)
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DelegateBatch handles POST /api/v1/delegations/batch.
// Structural failures are folded into FAILED entries; the call itself
// always succeeds with one result per request, in input order.
func (h *Handlers) DelegateBatch(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[batchRequest](w, r, maxBodyBytes)
	if !ok {
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "requests must not be empty")
		return
	}

	results := h.Delegation.DelegateToMultiple(r.Context(), req.Requests)
	writeJSON(w, http.StatusOK, batchResponse{
		Status:  delegation.Aggregate(results),
		Results: results,
	})
}

// ListSpecialists handles GET /api/v1/specialists.
func (h *Handlers) ListSpecialists(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.List())
}

// GetCapabilities handles GET /api/v1/specialists/{name}/capabilities.
func (h *Handlers) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	skills, err := h.Delegation.GetCapabilities(name)
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"specialist": name,
		"skills":     skills,
	})
}

// CheckAvailability handles GET /api/v1/specialists/{name}/availability.
func (h *Handlers) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	writeJSON(w, http.StatusOK, map[string]any{
		"specialist": name,
		"available":  h.Delegation.CheckAvailability(name),
	})
}

// ReloadRegistry handles POST /api/v1/registry/reload.
func (h *Handlers) ReloadRegistry(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Reload(r.Context()); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"specialists": h.Registry.Len(),
	})
}

// GetAuditTrail handles GET /api/v1/audit.
func (h *Handlers) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		writeError(w, http.StatusNotFound, "audit persistence is disabled")
		return
	}

	limit := queryInt(r, "limit", 50)
	specialist := r.URL.Query().Get("specialist")

	var entries []audit.Entry
	var err error
	if specialist != "" {
		entries, err = h.Audit.RecentBySpecialist(r.Context(), specialist, limit)
	} else {
		entries, err = h.Audit.Recent(r.Context(), limit)
	}
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
