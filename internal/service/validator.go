package service

import (
	"sort"

	"github.com/intent-solutions/foreman/internal/domain/delegation"
)

// ContractValidator enforces the two structural invariants that gate every
// dispatch before any specialist code runs: the skill must exist on the
// descriptor, and the payload must carry every required top-level field.
//
// This is intentionally lightweight: full recursive schema validation
// (types, nested objects) is not enforced in this core.
type ContractValidator struct{}

// ResolveSkill returns the skill declared on the descriptor.
// Returns *delegation.SkillNotFoundError if the id is not present.
func (ContractValidator) ResolveSkill(card delegation.AgentCard, skillID string) (delegation.Skill, error) {
	skill, ok := card.Skill(skillID)
	if !ok {
		return delegation.Skill{}, &delegation.SkillNotFoundError{
			Specialist: card.Name,
			SkillID:    skillID,
		}
	}
	return skill, nil
}

// ValidatePayload checks top-level required-field presence against the
// skill's input schema. The returned *delegation.InvalidPayloadError lists
// every missing field, not just the first.
func (ContractValidator) ValidatePayload(payload map[string]any, skill delegation.Skill) error {
	var missing []string
	for _, field := range skill.InputSchema.Required {
		if _, ok := payload[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &delegation.InvalidPayloadError{SkillID: skill.SkillID, Missing: missing}
	}
	return nil
}
