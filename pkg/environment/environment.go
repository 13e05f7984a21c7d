// Package environment implements the state-machine side of the contract: a
// base environment owning per-player observation and action spaces and the
// validate → mutate → re-render step cycle, plus a grid specialization.
package environment

import (
	"fmt"

	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/logger"
	"github.com/sirupsen/logrus"
)

// RejectionPolicy decides what happens when the validity predicate rejects
// an action. Each concrete environment declares its policy explicitly.
type RejectionPolicy int

const (
	// PolicyWarn records the rejection reason as a warning and leaves the
	// episode running; the player gets another attempt.
	PolicyWarn RejectionPolicy = iota

	// PolicyAbort ends the episode, flagged as a rule violation.
	PolicyAbort
)

// Hooks is the game-specific capability set a concrete environment plugs
// into the shared Base. Apply is the only code path that may mutate domain
// state and the success/aborted/terminated flags.
type Hooks interface {
	// OnReset rebuilds the domain state from configuration and registers the
	// initial observation and action space for every player.
	OnReset() error

	// Validate is the state-validity predicate. A false result carries a
	// human-readable reason that is shown back to the acting player.
	Validate(p *game.Player, a game.Action) (ok bool, reason string)

	// Apply mutates the domain state for an accepted action.
	Apply(p *game.Player, a game.Action) error

	// UpdateObservations recomputes every player's observation. Called after
	// every state change with the player who acted, or nil when the change
	// came from outside a step, such as a master-issued abort.
	UpdateObservations(acting *game.Player)
}

// Base is the shared environment state machine. Concrete environments embed
// a *Base and implement Hooks.
type Base struct {
	hooks  Hooks
	state  *game.State
	policy RejectionPolicy

	players      []*game.Player
	observations map[string]game.Observation
	actionSpaces map[string]game.ActionSpace

	log *logrus.Entry
}

// NewBase creates the shared part of an environment. The state pointer must
// reference the game.State embedded in the concrete game's state struct.
func NewBase(state *game.State, policy RejectionPolicy, hooks Hooks) *Base {
	return &Base{
		hooks:        hooks,
		state:        state,
		policy:       policy,
		observations: make(map[string]game.Observation),
		actionSpaces: make(map[string]game.ActionSpace),
		log:          logger.Named("environment"),
	}
}

// State exposes the common episode fields.
func (b *Base) State() *game.State { return b.state }

// Policy returns the environment's declared rejection policy.
func (b *Base) Policy() RejectionPolicy { return b.policy }

// AddPlayer registers a player with the environment. Players must carry the
// name assigned by the game master.
func (b *Base) AddPlayer(p *game.Player) error {
	for _, existing := range b.players {
		if existing.Name == p.Name {
			return fmt.Errorf("%w: %s", game.ErrDuplicatePlayer, p.Name)
		}
	}
	b.players = append(b.players, p)
	return nil
}

// Players returns the registered players in add-order.
func (b *Base) Players() []*game.Player { return b.players }

// Reset (re)initializes the episode: common fields back to their zero
// values, then the game-specific rebuild. Calling it twice in a row yields
// the same state as calling it once.
func (b *Base) Reset() error {
	b.state.Reset()
	b.observations = make(map[string]game.Observation)
	b.actionSpaces = make(map[string]game.ActionSpace)

	if err := b.hooks.OnReset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	// Malformed setup is a programmer error, caught right away.
	for _, p := range b.players {
		if _, ok := b.observations[p.Name]; !ok {
			return fmt.Errorf("reset: %w: %s", game.ErrNoObservation, p.Name)
		}
		if len(b.actionSpaces[p.Name]) == 0 {
			return fmt.Errorf("reset: %w: %s", game.ErrNoActionSpace, p.Name)
		}
	}

	b.log.WithField("players", len(b.players)).Debug("environment reset")
	return nil
}

// Step validates and applies one action. It returns the acting player's new
// observation, whether the action was accepted, and the terminated flag.
//
// Rejected actions leave the domain state untouched: under PolicyWarn the
// reason lands in the state warning and the acting player gets another
// attempt, under PolicyAbort the episode ends as aborted. Stepping a
// terminated environment fails loudly.
func (b *Base) Step(p *game.Player, a game.Action) (game.Observation, bool, bool, error) {
	if b.state.Terminated {
		return game.Observation{}, false, true, fmt.Errorf("step %s: %w", p.Name, game.ErrTerminated)
	}

	space, ok := b.actionSpaces[p.Name]
	if !ok {
		return game.Observation{}, false, false, fmt.Errorf("step %s: %w", p.Name, game.ErrNoActionSpace)
	}
	if !space.Contains(a.Type()) {
		return game.Observation{}, false, false, fmt.Errorf("step %s: %w: %q", p.Name, game.ErrInvalidActionType, a.Type())
	}

	if ok, reason := b.hooks.Validate(p, a); !ok {
		b.log.WithFields(logrus.Fields{"player": p.Name, "reason": reason}).Warn("action rejected")
		switch b.policy {
		case PolicyAbort:
			b.state.Abort()
			b.state.Warning = reason
		default:
			b.state.Warning = reason
		}
		b.hooks.UpdateObservations(p)
		obs, err := b.Observation(p)
		return obs, false, b.state.Terminated, err
	}

	if err := b.hooks.Apply(p, a); err != nil {
		return game.Observation{}, false, false, fmt.Errorf("step %s: %w", p.Name, err)
	}
	b.state.Moves++

	if b.state.Aborted && b.state.Success {
		return game.Observation{}, false, false, fmt.Errorf("step %s: aborted and success are mutually exclusive", p.Name)
	}

	b.hooks.UpdateObservations(p)

	obs, err := b.Observation(p)
	if err != nil {
		return game.Observation{}, false, false, err
	}
	b.log.WithFields(logrus.Fields{
		"player":     p.Name,
		"moves":      b.state.Moves,
		"success":    b.state.Success,
		"terminated": b.state.Terminated,
	}).Debug("step applied")
	return obs, true, b.state.Terminated, nil
}

// Abort ends the episode as a rule violation, recording the reason. Used by
// the game master when its format-invalid policy is to end the episode.
func (b *Base) Abort(reason string) {
	b.state.Abort()
	b.state.Warning = reason
	b.hooks.UpdateObservations(nil)
}

// SetObservation registers the current observation for a player.
func (b *Base) SetObservation(p *game.Player, obs game.Observation) {
	b.observations[p.Name] = obs
}

// Observation returns the current observation for a player. A missing
// observation is a setup error, never silently defaulted.
func (b *Base) Observation(p *game.Player) (game.Observation, error) {
	obs, ok := b.observations[p.Name]
	if !ok {
		return game.Observation{}, fmt.Errorf("%w: %s", game.ErrNoObservation, p.Name)
	}
	return obs, nil
}

// SetActionSpace registers the permitted action types for a player.
func (b *Base) SetActionSpace(p *game.Player, space game.ActionSpace) {
	b.actionSpaces[p.Name] = space
}

// ActionSpace returns the current action space for a player.
func (b *Base) ActionSpace(p *game.Player) (game.ActionSpace, error) {
	space, ok := b.actionSpaces[p.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", game.ErrNoActionSpace, p.Name)
	}
	return space, nil
}
