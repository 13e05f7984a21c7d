package game

// History is a player's dialogue memory for one episode: the observations it
// was shown and the responses it produced, in order.
type History struct {
	messages []Observation
}

// Append adds a message to the history.
func (h *History) Append(msg Observation) {
	h.messages = append(h.messages, msg)
}

// Messages returns a copy of all messages so callers cannot mutate the
// history behind the player's back.
func (h *History) Messages() []Observation {
	out := make([]Observation, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of stored messages.
func (h *History) Len() int {
	return len(h.messages)
}

// Clear drops all messages. Used when a player is reused across episodes.
func (h *History) Clear() {
	h.messages = h.messages[:0]
}
