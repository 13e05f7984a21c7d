package game

// Action is a move a player wants to make. Concrete games define small
// structs carrying the type-specific fields (a direction, a cell, a text).
type Action interface {
	// Type returns the action's discriminator tag, checked against the
	// acting player's current action space.
	Type() string
}

// ActionSpace is the set of action-type tags currently permitted for one
// player. It is set by the environment per player and may change per turn.
type ActionSpace []string

// Contains reports whether the given action type is permitted.
func (s ActionSpace) Contains(actionType string) bool {
	for _, t := range s {
		if t == actionType {
			return true
		}
	}
	return false
}

// TextAction is the default action for games whose moves are free text.
type TextAction struct {
	Body string
}

// ActionTypeText tags plain verbal responses.
const ActionTypeText = "verbal_response"

func (TextAction) Type() string { return ActionTypeText }
