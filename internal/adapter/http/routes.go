package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	// A2A discovery (outside the versioned API, fixed path per the A2A spec)
	r.Get("/.well-known/agent-card.json", h.HandleAgentCard)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Delegations
		r.Post("/delegations", h.Delegate)
		r.Post("/delegations/batch", h.DelegateBatch)

		// Specialists
		r.Get("/specialists", h.ListSpecialists)
		r.Get("/specialists/{name}/capabilities", h.GetCapabilities)
		r.Get("/specialists/{name}/availability", h.CheckAvailability)

		// Registry
		r.Post("/registry/reload", h.ReloadRegistry)

		// Audit trail
		r.Get("/audit", h.GetAuditTrail)
	})
}
