package ws

// Event type constants for WebSocket messages.
const (
	EventDispatchCompleted = "dispatch.completed"
	EventRegistryReloaded  = "registry.reloaded"
)

// DispatchCompletedEvent is broadcast after every dispatch, successful or not.
type DispatchCompletedEvent struct {
	TaskID     string `json:"task_id,omitempty"`
	Specialist string `json:"specialist"`
	SkillID    string `json:"skill_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// RegistryReloadedEvent is broadcast when the capability registry swaps in
// a new descriptor snapshot.
type RegistryReloadedEvent struct {
	Specialists int `json:"specialists"`
}
