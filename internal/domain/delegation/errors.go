package delegation

import (
	"fmt"
	"strings"
)

// SpecialistNotFoundError is raised when a task names a specialist that is
// absent from the registry (or was excluded during discovery).
type SpecialistNotFoundError struct {
	Specialist string
}

func (e *SpecialistNotFoundError) Error() string {
	return fmt.Sprintf("specialist %q not found in registry", e.Specialist)
}

// SkillNotFoundError is raised when a skill id is not declared on an
// otherwise valid specialist card.
type SkillNotFoundError struct {
	Specialist string
	SkillID    string
}

func (e *SkillNotFoundError) Error() string {
	return fmt.Sprintf("skill %q not found on specialist %q", e.SkillID, e.Specialist)
}

// InvalidPayloadError is raised when a payload is missing one or more
// required fields. Missing lists every absent field, not just the first.
type InvalidPayloadError struct {
	SkillID string
	Missing []string
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("payload for skill %q missing required fields: %s",
		e.SkillID, strings.Join(e.Missing, ", "))
}
