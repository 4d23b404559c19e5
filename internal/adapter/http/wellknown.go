package http

import (
	"net/http"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/intent-solutions/foreman/internal/domain/delegation"
)

// CardInfo is the foreman's own identity advertised on the well-known path.
type CardInfo struct {
	Name        string
	Description string
	Version     string
	BaseURL     string
	Identity    string
}

// BuildAgentCard exports the foreman as a standard A2A agent card. Its
// skill list is the union of every registered specialist's skills, tagged
// with the owning specialist so A2A-native callers can route through the
// delegation endpoints.
func BuildAgentCard(info CardInfo, specialists []delegation.AgentCard) a2a.AgentCard {
	var skills []a2a.AgentSkill
	for _, sp := range specialists {
		for _, sk := range sp.Skills {
			name := sk.Name
			if name == "" {
				name = sk.SkillID
			}
			skills = append(skills, a2a.AgentSkill{
				ID:          sk.SkillID,
				Name:        name,
				Description: sk.Description,
				Tags:        []string{sp.Name},
			})
		}
	}

	return a2a.AgentCard{
		ProtocolVersion:    "0.3.0",
		Name:               info.Name,
		Description:        info.Description,
		Version:            info.Version,
		URL:                info.BaseURL,
		PreferredTransport: a2a.TransportProtocolHTTPJSON,
		DefaultInputModes:  []string{"application/json"},
		DefaultOutputModes: []string{"application/json"},
		Capabilities:       a2a.AgentCapabilities{},
		Skills:             skills,
	}
}

// HandleAgentCard serves GET /.well-known/agent-card.json.
func (h *Handlers) HandleAgentCard(w http.ResponseWriter, _ *http.Request) {
	card := BuildAgentCard(h.Card, h.Registry.List())
	writeJSON(w, http.StatusOK, card)
}
