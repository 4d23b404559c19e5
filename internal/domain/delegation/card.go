// Package delegation provides the domain model for agent-to-agent task
// delegation: capability descriptors (agent cards), task and result
// envelopes, and the structural errors raised before a dispatch runs.
package delegation

import (
	"errors"
	"fmt"
	"strings"
)

// Schema describes the shape of a skill's input or output payload.
// Only Type and Required are contractually significant; Properties is
// carried for documentation and future full-schema validation.
type Schema struct {
	Type       string         `json:"type"`
	Required   []string       `json:"required,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Skill is a single named capability with a declared input/output contract.
// OutputSchema is informational only and never enforced on results.
type Skill struct {
	SkillID      string `json:"skill_id"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	InputSchema  Schema `json:"input_schema"`
	OutputSchema Schema `json:"output_schema,omitempty"`
}

// AgentCard is the static, versioned manifest describing one specialist's
// identity and skills. Cards are loaded at registry discovery time and are
// immutable thereafter.
type AgentCard struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Version     string  `json:"version,omitempty"`
	Identity    string  `json:"identity"`
	Skills      []Skill `json:"skills"`
}

// Validate checks the required top-level fields and the skill naming
// invariant: every skill_id must be "{card name}.{skill name}".
// A card that fails Validate must be excluded from the registry.
func (c *AgentCard) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Description == "" {
		return errors.New("description is required")
	}
	if c.Identity == "" {
		return errors.New("identity is required")
	}
	if len(c.Skills) == 0 {
		return errors.New("at least one skill is required")
	}

	prefix := c.Name + "."
	for i := range c.Skills {
		id := c.Skills[i].SkillID
		if id == "" {
			return fmt.Errorf("skill %d: skill_id is required", i)
		}
		if !strings.HasPrefix(id, prefix) || len(id) == len(prefix) {
			return fmt.Errorf("skill %q does not match the %q prefix", id, prefix)
		}
	}
	return nil
}

// Skill returns the skill with the given id, if present on the card.
func (c *AgentCard) Skill(skillID string) (Skill, bool) {
	for i := range c.Skills {
		if c.Skills[i].SkillID == skillID {
			return c.Skills[i], true
		}
	}
	return Skill{}, false
}

// SkillIDs returns the ids of all skills on the card, in declared order.
func (c *AgentCard) SkillIDs() []string {
	ids := make([]string, len(c.Skills))
	for i := range c.Skills {
		ids[i] = c.Skills[i].SkillID
	}
	return ids
}
