package game

import (
	"context"
	"fmt"

	"github.com/paulutsch/clembench/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Model is the language-model collaborator behind a player: one blocking
// call per turn that turns a dialogue into a textual response. The core
// assumes nothing else about it; timeout and retry are the implementation's
// business.
type Model interface {
	// Generate produces the next response given the dialogue so far.
	Generate(ctx context.Context, messages []Observation) (string, error)

	// Name identifies the backing model, e.g. "gpt-4o-mini".
	Name() string
}

// Player wraps a model with a stable per-episode identity. Players are
// registered with a game master, which assigns their name and turn index
// from add-order.
type Player struct {
	// Name is assigned by the game master and unique per episode.
	Name string

	// Kind describes the player's in-game role, e.g. "Greeter".
	Kind string

	// Index is the player's turn position, assigned from add-order.
	Index int

	model   Model
	history History
	tags    map[string]string

	log *logrus.Entry
}

// NewPlayer creates a player of the given kind backed by the given model.
func NewPlayer(kind string, model Model) *Player {
	return &Player{
		Kind:  kind,
		model: model,
		tags:  make(map[string]string),
		log:   logger.Named("player"),
	}
}

// Call shows the observation to the player and obtains its response. The
// observation and the response are appended to the player's history, so the
// model always sees the whole dialogue. This is the single suspension point
// of an episode.
func (p *Player) Call(ctx context.Context, obs Observation) (string, error) {
	p.history.Append(obs)

	response, err := p.model.Generate(ctx, p.history.Messages())
	if err != nil {
		return "", fmt.Errorf("player %q: %w", p.Name, err)
	}

	p.history.Append(Observation{Role: RoleAssistant, Content: response})
	p.log.WithFields(logrus.Fields{
		"player": p.Name,
		"model":  p.model.Name(),
	}).Debug("player responded")
	return response, nil
}

// Model returns the backing model.
func (p *Player) Model() Model { return p.model }

// History returns the dialogue so far.
func (p *Player) History() []Observation { return p.history.Messages() }

// Reset clears the player's dialogue history and tags. Required before
// reusing a player in another episode.
func (p *Player) Reset() {
	p.history.Clear()
	p.tags = make(map[string]string)
}

// SetTag attaches a game-specific attribute to the player, e.g. an assigned
// board symbol.
func (p *Player) SetTag(key, value string) {
	p.tags[key] = value
}

// Tag returns a game-specific attribute, or "" when unset.
func (p *Player) Tag(key string) string {
	return p.tags[key]
}

// Description is used when logging the player roster.
func (p *Player) Description() string {
	return fmt.Sprintf("%s (%s)", p.Kind, p.model.Name())
}
