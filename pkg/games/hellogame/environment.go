// Package hellogame implements the greeting game: a single player must
// greet a target person with a fixed set of required words.
package hellogame

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/paulutsch/clembench/pkg/environment"
	"github.com/paulutsch/clembench/pkg/game"
)

// Config holds the per-instance parameters.
type Config struct {
	TargetName string `yaml:"target_name"`
	Language   string `yaml:"language"`

	// Prompt is the base prompt shown on the greeter's first turn.
	Prompt string `yaml:"-"`
}

// State extends the common episode fields with the greeting outcome.
type State struct {
	game.State
	TargetName    string
	RequiredWords []string
	MissingWords  []string
}

// Environment evaluates a single greeting. A response without the literal
// "GREET:" prefix is a hard rejection: the episode ends as aborted.
type Environment struct {
	*environment.Base
	st  *State
	cfg Config
}

// NewEnvironment creates the greeting environment.
func NewEnvironment(cfg Config) *Environment {
	e := &Environment{st: &State{}, cfg: cfg}
	e.Base = environment.NewBase(&e.st.State, environment.PolicyAbort, e)
	return e
}

// GameState exposes the typed state for masters and tests.
func (e *Environment) GameState() *State { return e.st }

// OnReset rebuilds the greeting requirements and the initial observation.
func (e *Environment) OnReset() error {
	target := e.cfg.TargetName
	if target == "" {
		return fmt.Errorf("hellogame: target_name is required")
	}
	e.st.TargetName = target
	e.st.RequiredWords = []string{"welcome", "hello", strings.ToLower(target)}
	e.st.MissingWords = nil

	for _, p := range e.Players() {
		e.SetActionSpace(p, game.ActionSpace{game.ActionTypeText})
	}
	e.UpdateObservations(nil)
	return nil
}

// Validate requires the literal greeting prefix. With the environment's
// abort policy, a missing prefix ends the episode as a rule violation.
func (e *Environment) Validate(_ *game.Player, a game.Action) (bool, string) {
	text, ok := a.(game.TextAction)
	if !ok {
		return false, "The response is not a greeting."
	}
	if !strings.HasPrefix(text.Body, "GREET:") {
		return false, "The greeting must start with 'GREET:'."
	}
	return true, ""
}

// Apply evaluates the greeting. The game is over after one turn either way.
func (e *Environment) Apply(_ *game.Player, a game.Action) error {
	text, ok := a.(game.TextAction)
	if !ok {
		return fmt.Errorf("hellogame: unexpected action %T", a)
	}

	cleaned := stripPunctuation(strings.ToLower(text.Body))
	var missing []string
	for _, word := range e.st.RequiredWords {
		if !strings.Contains(cleaned, word) {
			missing = append(missing, word)
		}
	}
	e.st.MissingWords = missing
	e.st.Success = len(missing) == 0
	e.st.Terminated = true
	return nil
}

// UpdateObservations composes each player's context: pending warning, then
// the prompt (before the turn) or the outcome (after it).
func (e *Environment) UpdateObservations(_ *game.Player) {
	for _, p := range e.Players() {
		var sb strings.Builder
		if w := e.State().TakeWarning(); w != "" {
			sb.WriteString("Warning: " + w + "\n\n")
		}
		switch {
		case !e.st.Terminated:
			sb.WriteString(e.cfg.Prompt)
		case e.st.Success:
			sb.WriteString(fmt.Sprintf("Your greeting reached %s. Well done!", e.st.TargetName))
		case e.st.Aborted:
			sb.WriteString("That was not a greeting. The game is over.")
		default:
			sb.WriteString(fmt.Sprintf("Your greeting was missing: %s.", strings.Join(e.st.MissingWords, ", ")))
		}
		e.SetObservation(p, game.UserObservation(sb.String()))
	}
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
}
