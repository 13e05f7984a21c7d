// Package game holds the shared types of the environment/orchestrator
// contract: episode state, actions, observations, and players.
package game

// State carries the fields every episode must track. Concrete game states
// embed it, so the required fields exist at compile time instead of being
// looked up in a map.
type State struct {
	// Terminated is true once the episode is over. It becomes true exactly
	// once; stepping a terminated environment is a contract violation.
	Terminated bool `json:"terminated"`

	// Success is true when the outcome was favorable for the player(s).
	Success bool `json:"success"`

	// Aborted is true when the episode ended due to a rule violation rather
	// than normal play. Aborted and a won outcome are mutually exclusive.
	Aborted bool `json:"aborted"`

	// Moves counts accepted actions. Rejected actions do not increment it.
	Moves int `json:"moves"`

	// Warning holds a transient human-readable note for the acting player,
	// cleared after being surfaced once.
	Warning string `json:"warning"`
}

// Reset returns the common fields to their initial values.
func (s *State) Reset() {
	*s = State{}
}

// Abort marks the episode as ended by a rule violation. Aborting always
// clears Success: an aborted episode cannot be a won one.
func (s *State) Abort() {
	s.Aborted = true
	s.Terminated = true
	s.Success = false
}

// TakeWarning returns the pending warning and clears it.
func (s *State) TakeWarning() string {
	w := s.Warning
	s.Warning = ""
	return w
}
