package game

// Chat roles as seen from the agent's point of view. The environment always
// speaks to the agent in the user role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Observation is the rendered context shown to a player before its turn. It
// doubles as a chat message: the dialogue history is a sequence of
// observations and assistant replies.
type Observation struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// Grid optionally carries the bare grid rendering alongside the composed
	// content, for games that render boards.
	Grid string `json:"grid,omitempty"`

	// Image optionally references an alternate rendered-image representation.
	// The core never requires it.
	Image string `json:"image,omitempty"`
}

// UserObservation builds an observation in the user role.
func UserObservation(content string) Observation {
	return Observation{Role: RoleUser, Content: content}
}
