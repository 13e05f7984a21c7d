package master

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/recorder"
)

// scriptedModel replays canned responses in order.
type scriptedModel struct {
	name      string
	responses []string
	calls     int
	prompts   []string
}

func (m *scriptedModel) Name() string { return m.name }

func (m *scriptedModel) Generate(_ context.Context, messages []game.Observation) (string, error) {
	if len(messages) > 0 {
		m.prompts = append(m.prompts, messages[len(messages)-1].Content)
	}
	if m.calls >= len(m.responses) {
		return "", fmt.Errorf("model %s: script exhausted after %d call(s)", m.name, m.calls)
	}
	response := m.responses[m.calls]
	m.calls++
	return response, nil
}

// fakeEnv terminates after a configured number of accepted steps.
type fakeEnv struct {
	st        *game.State
	stepLimit int
	steps     []string
}

func newFakeEnv(stepLimit int) *fakeEnv {
	return &fakeEnv{st: &game.State{}, stepLimit: stepLimit}
}

func (e *fakeEnv) Reset() error {
	e.st.Reset()
	e.steps = nil
	return nil
}

func (e *fakeEnv) Step(p *game.Player, a game.Action) (game.Observation, bool, bool, error) {
	if e.st.Terminated {
		return game.Observation{}, false, true, game.ErrTerminated
	}
	if ta, ok := a.(game.TextAction); ok && ta.Body == "reject" {
		return game.UserObservation("rejected"), false, false, nil
	}
	e.steps = append(e.steps, p.Name)
	e.st.Moves++
	if e.st.Moves >= e.stepLimit {
		e.st.Terminated = true
		e.st.Success = true
	}
	return game.UserObservation("next"), true, e.st.Terminated, nil
}

func (e *fakeEnv) Observation(p *game.Player) (game.Observation, error) {
	return game.UserObservation("your turn, " + p.Name), nil
}

func (e *fakeEnv) State() *game.State { return e.st }

func (e *fakeEnv) Abort(reason string) {
	e.st.Abort()
	e.st.Warning = reason
}

// echoGame accepts every non-empty response and turns it into a text
// action. abortOnInvalid selects the format-invalid policy.
type echoGame struct {
	Defaults
	env            *fakeEnv
	abortOnInvalid bool
	rounds         []string
}

func (g *echoGame) ValidateResponse(_ *game.Player, response string) bool {
	return response != ""
}

func (g *echoGame) ActionFromResponse(_ *game.Player, parsed string) (game.Action, error) {
	return game.TextAction{Body: parsed}, nil
}

func (g *echoGame) ResponseScore(_ *game.Player, _ string) float64 { return 1 }

func (g *echoGame) EpisodeScore() float64 {
	if g.env.st.Success {
		return 1
	}
	return 0
}

func (g *echoGame) AbortOnInvalidResponse() bool { return g.abortOnInvalid }

func (g *echoGame) OnBeforeRound() { g.rounds = append(g.rounds, "before") }
func (g *echoGame) OnAfterRound()  { g.rounds = append(g.rounds, "after") }

func newTestMaster(t *testing.T, env *fakeEnv, g Game, models ...*scriptedModel) *DialogueGameMaster {
	t.Helper()
	dm := New("echo", g, env, recorder.New("echo"))
	for _, m := range models {
		if err := dm.AddPlayer(game.NewPlayer("Echoer", m)); err != nil {
			t.Fatalf("AddPlayer failed: %v", err)
		}
	}
	return dm
}

func TestPlayerNamingFromAddOrder(t *testing.T) {
	env := newFakeEnv(2)
	g := &echoGame{env: env}
	dm := newTestMaster(t, env, g,
		&scriptedModel{name: "m1"}, &scriptedModel{name: "m2"})

	players := dm.Players()
	if players[0].Name != "Player 1 (Echoer)" || players[1].Name != "Player 2 (Echoer)" {
		t.Errorf("player names = %q, %q", players[0].Name, players[1].Name)
	}
	if players[0].Index != 0 || players[1].Index != 1 {
		t.Errorf("player indexes = %d, %d, want 0, 1", players[0].Index, players[1].Index)
	}
}

func TestPlayRunsToTermination(t *testing.T) {
	env := newFakeEnv(3)
	g := &echoGame{env: env}
	m1 := &scriptedModel{name: "m1", responses: []string{"a", "b"}}
	m2 := &scriptedModel{name: "m2", responses: []string{"c"}}
	dm := newTestMaster(t, env, g, m1, m2)

	if err := dm.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	want := []string{"Player 1 (Echoer)", "Player 2 (Echoer)", "Player 1 (Echoer)"}
	if len(env.steps) != len(want) {
		t.Fatalf("steps = %v, want %v", env.steps, want)
	}
	for i := range want {
		if env.steps[i] != want[i] {
			t.Errorf("step %d by %s, want %s", i, env.steps[i], want[i])
		}
	}
	if dm.Phase() != PhaseTerminated {
		t.Errorf("final phase = %v, want PhaseTerminated", dm.Phase())
	}

	trace := dm.Recorder().Trace()
	if got := trace.Keys["episode_score"]; got != 1.0 {
		t.Errorf("episode_score = %v, want 1", got)
	}
	if got := trace.Keys["moves"]; got != 3 {
		t.Errorf("moves key = %v, want 3", got)
	}
}

func TestRoundBoundaryOnWrap(t *testing.T) {
	env := newFakeEnv(4)
	g := &echoGame{env: env}
	m1 := &scriptedModel{name: "m1", responses: []string{"a", "b"}}
	m2 := &scriptedModel{name: "m2", responses: []string{"c", "d"}}
	dm := newTestMaster(t, env, g, m1, m2)

	if err := dm.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// Two full rounds: one boundary between them, none after the final
	// terminating step.
	if dm.Round() != 1 {
		t.Errorf("rounds = %d, want 1", dm.Round())
	}
	want := []string{"before", "after", "before"}
	if len(g.rounds) != len(want) {
		t.Fatalf("round hooks = %v, want %v", g.rounds, want)
	}
	trace := dm.Recorder().Trace()
	if len(trace.Rounds) != 2 {
		t.Errorf("trace rounds = %d, want 2", len(trace.Rounds))
	}
}

func TestRejectedActionsAreNotScored(t *testing.T) {
	env := newFakeEnv(2)
	g := &echoGame{env: env}
	m1 := &scriptedModel{name: "m1", responses: []string{"reject", "a", "b"}}
	dm := newTestMaster(t, env, g, m1)

	if err := dm.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	scored := 0
	for _, round := range dm.Recorder().Trace().Rounds {
		for _, ev := range round {
			if ev.Kind == "response_score" {
				scored++
			}
		}
	}
	if scored != 2 {
		t.Errorf("response_score events = %d, want 2; rejected actions carry no turn score", scored)
	}
}

func TestInvalidFormatRepromptsSamePlayer(t *testing.T) {
	env := newFakeEnv(2)
	g := &echoGame{env: env}
	m1 := &scriptedModel{name: "m1", responses: []string{"", "a", "b"}}
	dm := newTestMaster(t, env, g, m1)

	if err := dm.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if m1.calls != 3 {
		t.Errorf("model calls = %d, want 3 (one retry)", m1.calls)
	}
	if env.st.Moves != 2 {
		t.Errorf("moves = %d, want 2; the invalid response must not consume a move", env.st.Moves)
	}
	if len(m1.prompts) != 3 {
		t.Fatalf("prompts seen = %d, want 3", len(m1.prompts))
	}
	if !strings.Contains(m1.prompts[1], "did not follow the required format") {
		t.Errorf("retry prompt = %q, want a format note ahead of the observation", m1.prompts[1])
	}
	if strings.Contains(m1.prompts[2], "did not follow the required format") {
		t.Errorf("prompt after a valid response = %q, the note must not repeat", m1.prompts[2])
	}
}

func TestInvalidFormatAbortsWhenConfigured(t *testing.T) {
	env := newFakeEnv(2)
	g := &echoGame{env: env, abortOnInvalid: true}
	m1 := &scriptedModel{name: "m1", responses: []string{""}}
	dm := newTestMaster(t, env, g, m1)

	if err := dm.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !env.st.Aborted {
		t.Error("episode not aborted on invalid format")
	}
	trace := dm.Recorder().Trace()
	if got := trace.Keys["aborted"]; got != true {
		t.Errorf("aborted key = %v, want true", got)
	}
	if got := trace.Keys["episode_score"]; got != 0.0 {
		t.Errorf("episode_score = %v, want 0", got)
	}
}

func TestPlayWithoutPlayers(t *testing.T) {
	env := newFakeEnv(1)
	g := &echoGame{env: env}
	dm := New("echo", g, env, recorder.New("echo"))

	if err := dm.Play(context.Background()); !errors.Is(err, game.ErrNoPlayers) {
		t.Errorf("Play error = %v, want ErrNoPlayers", err)
	}
}
