package hellogame

import (
	"context"
	"fmt"
	"testing"

	"github.com/paulutsch/clembench/pkg/config"
	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/recorder"
	"github.com/paulutsch/clembench/pkg/scoring"
)

// scriptedModel replays canned responses in order.
type scriptedModel struct {
	responses []string
	calls     int
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Generate(_ context.Context, _ []game.Observation) (string, error) {
	if m.calls >= len(m.responses) {
		return "", fmt.Errorf("script exhausted after %d call(s)", m.calls)
	}
	response := m.responses[m.calls]
	m.calls++
	return response, nil
}

func testInstance() config.Instance {
	return config.Instance{
		ID:     0,
		Prompt: "Greet Alice with GREET:",
		Params: map[string]any{"target_name": "Alice", "language": "en"},
	}
}

func playEpisode(t *testing.T, response string) recorder.Trace {
	t.Helper()
	rec := recorder.New(Name)
	model := &scriptedModel{responses: []string{response}}
	dm, err := New([]game.Model{model}, testInstance(), rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := dm.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	return rec.Trace()
}

func TestCompleteGreetingWins(t *testing.T) {
	trace := playEpisode(t, "GREET: Hello Alice, welcome to the game!")

	if got := trace.Keys["success"]; got != true {
		t.Errorf("success = %v, want true", got)
	}
	if got := trace.Keys["aborted"]; got != false {
		t.Errorf("aborted = %v, want false", got)
	}
	if got := trace.Keys["episode_score"]; got != 1.0 {
		t.Errorf("episode_score = %v, want 1", got)
	}
	if got := trace.Keys["moves"]; got != 1 {
		t.Errorf("moves = %v, want 1", got)
	}
}

func TestMissingWordsLose(t *testing.T) {
	trace := playEpisode(t, "GREET: Hello Alice!")

	if got := trace.Keys["success"]; got != false {
		t.Errorf("success = %v, want false", got)
	}
	if got := trace.Keys["aborted"]; got != false {
		t.Errorf("aborted = %v, want false", got)
	}
	missing, ok := trace.Keys["missing_words"].([]string)
	if !ok || len(missing) != 1 || missing[0] != "welcome" {
		t.Errorf("missing_words = %v, want [welcome]", trace.Keys["missing_words"])
	}
}

func TestMissingPrefixAborts(t *testing.T) {
	trace := playEpisode(t, "Hello Alice, welcome!")

	if got := trace.Keys["aborted"]; got != true {
		t.Errorf("aborted = %v, want true", got)
	}
	if got := trace.Keys["success"]; got != false {
		t.Errorf("success = %v, want false", got)
	}
}

func TestGreetingIsCaseAndPunctuationInsensitive(t *testing.T) {
	trace := playEpisode(t, "GREET: hello... WELCOME, alice?!")
	if got := trace.Keys["success"]; got != true {
		t.Errorf("success = %v, want true", got)
	}
}

func TestScorer(t *testing.T) {
	trace := playEpisode(t, "GREET: Hello Alice, welcome!")
	scores, err := Scorer{}.ComputeScores(trace)
	if err != nil {
		t.Fatalf("ComputeScores failed: %v", err)
	}
	if scores[scoring.BenchScore] != 100 {
		t.Errorf("bench score = %v, want 100", scores[scoring.BenchScore])
	}
	if scores[scoring.MetricSuccess] != 1 {
		t.Errorf("success score = %v, want 1", scores[scoring.MetricSuccess])
	}
}

func TestMissingTargetName(t *testing.T) {
	rec := recorder.New(Name)
	inst := config.Instance{ID: 0, Prompt: "p", Params: map[string]any{}}
	dm, err := New([]game.Model{&scriptedModel{responses: []string{"x"}}}, inst, rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := dm.Play(context.Background()); err == nil {
		t.Error("Play succeeded without target_name")
	}
}
