package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/intent-solutions/foreman/internal/adapter/localinvoke"
	"github.com/intent-solutions/foreman/internal/domain/delegation"
	"github.com/intent-solutions/foreman/internal/service"
)

type staticSource struct {
	cards []delegation.AgentCard
}

func (s *staticSource) Load(context.Context) ([]delegation.AgentCard, []error, error) {
	return s.cards, nil, nil
}

func reviewerCard() delegation.AgentCard {
	return delegation.AgentCard{
		Name:        "reviewer",
		Description: "code review specialist",
		Version:     "1.0.0",
		Identity:    "spiffe://test/agent/reviewer",
		Skills: []delegation.Skill{
			{
				SkillID:     "reviewer.review",
				Name:        "Review",
				InputSchema: delegation.Schema{Type: "object", Required: []string{"diff"}},
			},
		},
	}
}

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	reg := service.NewRegistry(false, &staticSource{cards: []delegation.AgentCard{reviewerCard()}})
	if _, err := reg.Discover(context.Background()); err != nil {
		t.Fatal(err)
	}

	inv := localinvoke.New()
	inv.Register("reviewer.review", func(_ context.Context, payload, _ map[string]any) (map[string]any, error) {
		return map[string]any{"reviewed": payload["diff"]}, nil
	})

	dispatcher := service.NewDispatcher(reg, inv)
	svc := service.NewDelegationService(dispatcher, reg, "spiffe://test/agent/foreman", 2)

	h := &Handlers{
		Delegation: svc,
		Registry:   reg,
		Card: CardInfo{
			Name:     "foreman",
			Version:  "0.1.0",
			BaseURL:  "http://localhost:8080",
			Identity: "spiffe://test/agent/foreman",
		},
	}

	r := chi.NewRouter()
	MountRoutes(r, h)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDelegateEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/delegations",
		`{"specialist":"reviewer","skill_id":"reviewer.review","payload":{"diff":"+x"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var result delegation.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Status != delegation.StatusSuccess {
		t.Errorf("result.Status = %q", result.Status)
	}
	if result.Result["reviewed"] != "+x" {
		t.Errorf("result payload = %v", result.Result)
	}
}

func TestDelegateEndpointErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing specialist", `{"skill_id":"reviewer.review"}`, http.StatusBadRequest},
		{"missing skill_id", `{"specialist":"reviewer"}`, http.StatusBadRequest},
		{"unknown specialist", `{"specialist":"ghost","skill_id":"ghost.review","payload":{"diff":"x"}}`, http.StatusNotFound},
		{"unknown skill", `{"specialist":"reviewer","skill_id":"reviewer.deploy","payload":{"diff":"x"}}`, http.StatusNotFound},
		{"invalid payload", `{"specialist":"reviewer","skill_id":"reviewer.review","payload":{}}`, http.StatusUnprocessableEntity},
		{"malformed body", `{not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/api/v1/delegations", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestDelegateBatchEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/delegations/batch", `{"requests":[
		{"specialist":"reviewer","skill_id":"reviewer.review","payload":{"diff":"a"}},
		{"specialist":"ghost","skill_id":"ghost.review","payload":{"diff":"b"}}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp batchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != delegation.StatusPartial {
		t.Errorf("aggregate = %q", resp.Status)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Status != delegation.StatusSuccess || resp.Results[1].Status != delegation.StatusFailed {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestDelegateBatchEmpty(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/delegations/batch", `{"requests":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSpecialistEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/specialists", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var cards []delegation.AgentCard
	if err := json.Unmarshal(rec.Body.Bytes(), &cards); err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].Name != "reviewer" {
		t.Errorf("cards = %+v", cards)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/specialists/reviewer/capabilities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("capabilities status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "reviewer.review") {
		t.Errorf("capabilities body = %s", rec.Body)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/specialists/ghost/capabilities", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown capabilities status = %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/specialists/reviewer/availability", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"available":true`) {
		t.Errorf("availability = %d %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/specialists/ghost/availability", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"available":false`) {
		t.Errorf("availability = %d %s", rec.Code, rec.Body)
	}
}

func TestReloadEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/registry/reload", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"specialists":1`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestAuditEndpointDisabled(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/audit", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestWellKnownAgentCard(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/.well-known/agent-card.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var card struct {
		Name               string `json:"name"`
		PreferredTransport string `json:"preferredTransport"`
		Skills             []struct {
			ID   string   `json:"id"`
			Tags []string `json:"tags"`
		} `json:"skills"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &card); err != nil {
		t.Fatal(err)
	}
	if card.Name != "foreman" {
		t.Errorf("name = %q", card.Name)
	}
	if card.PreferredTransport != "HTTP+JSON" {
		t.Errorf("preferredTransport = %q", card.PreferredTransport)
	}
	if len(card.Skills) != 1 || card.Skills[0].ID != "reviewer.review" {
		t.Fatalf("skills = %+v", card.Skills)
	}
	if len(card.Skills[0].Tags) != 1 || card.Skills[0].Tags[0] != "reviewer" {
		t.Errorf("tags = %v", card.Skills[0].Tags)
	}
}
