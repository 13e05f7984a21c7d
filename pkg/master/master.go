// Package master drives episodes: it owns the player roster, the play loop,
// response validation and parsing hooks, turn-passing and round boundaries,
// and the scoring hooks every concrete game must provide.
package master

import (
	"context"
	"fmt"

	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/logger"
	"github.com/paulutsch/clembench/pkg/recorder"
	"github.com/sirupsen/logrus"
)

// Environment is the state machine a game master drives. Satisfied by
// *environment.Base and everything embedding it.
type Environment interface {
	Reset() error
	Step(p *game.Player, a game.Action) (game.Observation, bool, bool, error)
	Observation(p *game.Player) (game.Observation, error)
	State() *game.State
	Abort(reason string)
}

// Game is the per-game hook set plugged into a DialogueGameMaster. Embed
// Defaults to pick up the default behavior and override what the game
// needs. The scoring hooks and the response/action handling have no
// defaults: every game must implement them.
type Game interface {
	// ValidateResponse checks the response's format, syntactically and
	// independently of the environment's semantic validity check.
	ValidateResponse(p *game.Player, response string) bool

	// ParseResponse may normalize or trim the raw response before it is
	// turned into an action.
	ParseResponse(p *game.Player, response string) string

	// OnValidResponse runs after a response passed format validation,
	// commonly to propagate it into another player's observation.
	OnValidResponse(p *game.Player, parsed string)

	// ActionFromResponse turns the parsed response into a domain action.
	ActionFromResponse(p *game.Player, parsed string) (game.Action, error)

	// ResponseScore is the turn-level score for the most recent action.
	ResponseScore(p *game.Player, response string) float64

	// EpisodeScore is the episode-level score, a read-only projection of
	// the final environment state.
	EpisodeScore() float64

	// AbortOnInvalidResponse selects the format-invalid policy: end the
	// episode as aborted, or skip without consuming a turn.
	AbortOnInvalidResponse() bool

	// ShouldPassTurn reports whether the turn passes to the next player.
	ShouldPassTurn() bool

	// Proceed is the game-specific continuation predicate.
	Proceed() bool

	// FinalKeys contributes game-specific entries to the episode trace.
	FinalKeys() map[string]any

	OnBeforeGame()
	OnAfterGame()
	OnBeforeRound()
	OnAfterRound()
}

// Defaults provides the default hook behavior: identity parsing, always
// pass the turn, never abort on format errors, no-op round/game hooks.
type Defaults struct{}

func (Defaults) ParseResponse(_ *game.Player, response string) string { return response }
func (Defaults) OnValidResponse(_ *game.Player, _ string)             {}
func (Defaults) AbortOnInvalidResponse() bool                         { return false }
func (Defaults) ShouldPassTurn() bool                                 { return true }
func (Defaults) Proceed() bool                                        { return true }
func (Defaults) FinalKeys() map[string]any                            { return nil }
func (Defaults) OnBeforeGame()                                        {}
func (Defaults) OnAfterGame()                                         {}
func (Defaults) OnBeforeRound()                                       {}
func (Defaults) OnAfterRound()                                        {}

// DialogueGameMaster runs one episode of one game instance as a turn-based
// conversation between the environment and the registered players.
type DialogueGameMaster struct {
	name string
	g    Game
	env  Environment
	rec  *recorder.Recorder

	players    []*game.Player
	currentIdx int
	round      int
	phase      Phase
	formatNote string

	log *logrus.Entry
}

// New creates a game master for one episode.
func New(name string, g Game, env Environment, rec *recorder.Recorder) *DialogueGameMaster {
	return &DialogueGameMaster{
		name:  name,
		g:     g,
		env:   env,
		rec:   rec,
		phase: PhaseAwaitingResponse,
		log:   logger.Named("master").WithField("game", name),
	}
}

// AddPlayer registers a player. Identity is derived from add-order and the
// player's kind; play order is fixed at add-time and never changes.
func (m *DialogueGameMaster) AddPlayer(p *game.Player) error {
	p.Index = len(m.players)
	p.Name = fmt.Sprintf("Player %d (%s)", p.Index+1, p.Kind)
	for _, existing := range m.players {
		if existing.Name == p.Name {
			return fmt.Errorf("%w: %s", game.ErrDuplicatePlayer, p.Name)
		}
	}
	m.players = append(m.players, p)
	return nil
}

// Players returns the roster in add-order.
func (m *DialogueGameMaster) Players() []*game.Player { return m.players }

// CurrentPlayer returns the player whose turn it is.
func (m *DialogueGameMaster) CurrentPlayer() *game.Player {
	if len(m.players) == 0 {
		return nil
	}
	return m.players[m.currentIdx]
}

// Round returns the zero-based round counter.
func (m *DialogueGameMaster) Round() int { return m.round }

// Phase returns the play loop's current phase.
func (m *DialogueGameMaster) Phase() Phase { return m.phase }

// Recorder returns the episode recorder.
func (m *DialogueGameMaster) Recorder() *recorder.Recorder { return m.rec }

// Play runs the episode to completion: reset, then turn after turn until
// the environment terminates or the game's continuation predicate says
// stop. The only suspension point is the model call inside Player.Call.
func (m *DialogueGameMaster) Play(ctx context.Context) error {
	if len(m.players) == 0 {
		return game.ErrNoPlayers
	}

	roster := make(map[string]string, len(m.players)+1)
	roster[recorder.GM] = fmt.Sprintf("Game master for %s", m.name)
	for _, p := range m.players {
		roster[p.Name] = p.Description()
	}
	m.rec.LogPlayers(roster)

	if err := m.env.Reset(); err != nil {
		return fmt.Errorf("play %s: %w", m.name, err)
	}
	m.currentIdx = 0
	m.round = 0
	m.formatNote = ""

	m.g.OnBeforeGame()
	m.g.OnBeforeRound()

	for m.g.Proceed() {
		cur := m.players[m.currentIdx]

		m.phase = PhaseAwaitingResponse
		obs, err := m.env.Observation(cur)
		if err != nil {
			return fmt.Errorf("play %s: %w", m.name, err)
		}
		content := obs.Content
		if m.formatNote != "" {
			content = m.formatNote + "\n\n" + content
			m.formatNote = ""
		}
		m.rec.LogEvent(recorder.GM, cur.Name, "send message", content)

		response, err := cur.Call(ctx, game.UserObservation(content))
		if err != nil {
			return fmt.Errorf("play %s: %w", m.name, err)
		}
		m.rec.LogEvent(cur.Name, recorder.GM, "get message", response)

		m.phase = PhaseValidating
		action, ok := m.parseAction(cur, response)
		if !ok {
			if m.g.AbortOnInvalidResponse() {
				m.log.WithField("player", cur.Name).Warn("invalid response format, aborting episode")
				m.env.Abort("invalid response format")
				m.finish()
				return nil
			}
			// Skip without consuming a turn; the same player answers again,
			// with a corrective note ahead of the repeated observation.
			m.log.WithField("player", cur.Name).Warn("invalid response format, re-prompting")
			m.formatNote = "Your last response did not follow the required format. Please answer again in the required format."
			continue
		}

		m.phase = PhaseStepping
		_, accepted, terminated, err := m.env.Step(cur, action)
		if err != nil {
			return fmt.Errorf("play %s: %w", m.name, err)
		}
		if accepted {
			m.rec.LogSelf("response_score", m.g.ResponseScore(cur, response))
		}

		if terminated {
			m.finish()
			return nil
		}

		// A rejected action keeps the turn: the warned player tries again.
		if accepted && m.g.ShouldPassTurn() {
			m.currentIdx = (m.currentIdx + 1) % len(m.players)
			if m.currentIdx == 0 {
				// Round boundary: the wrap returned to the first player.
				m.phase = PhaseRoundBoundary
				m.g.OnAfterRound()
				m.round++
				m.rec.NextRound()
				m.g.OnBeforeRound()
			}
		}
	}

	m.finish()
	return nil
}

// parseAction runs format validation, parsing, the valid-response hook, and
// action construction. A false result means a response-format failure.
func (m *DialogueGameMaster) parseAction(p *game.Player, response string) (game.Action, bool) {
	if !m.g.ValidateResponse(p, response) {
		m.rec.LogSelf("invalid format", response)
		return nil, false
	}
	parsed := m.g.ParseResponse(p, response)
	m.g.OnValidResponse(p, parsed)
	action, err := m.g.ActionFromResponse(p, parsed)
	if err != nil {
		m.rec.LogSelf("invalid format", err.Error())
		return nil, false
	}
	return action, true
}

// finish runs the after-game hook and emits the final state plus the
// episode score as the flat key/value trace the scorer consumes.
func (m *DialogueGameMaster) finish() {
	m.phase = PhaseTerminated
	m.g.OnAfterGame()

	st := m.env.State()
	m.rec.LogKey("terminated", st.Terminated)
	m.rec.LogKey("success", st.Success)
	m.rec.LogKey("aborted", st.Aborted)
	m.rec.LogKey("moves", st.Moves)
	if st.Warning != "" {
		m.rec.LogKey("warning", st.Warning)
	}
	for k, v := range m.g.FinalKeys() {
		m.rec.LogKey(k, v)
	}
	m.rec.LogKey("episode_score", m.g.EpisodeScore())

	m.log.WithFields(logrus.Fields{
		"success": st.Success,
		"aborted": st.Aborted,
		"moves":   st.Moves,
		"rounds":  m.round + 1,
	}).Info("episode finished")
}
