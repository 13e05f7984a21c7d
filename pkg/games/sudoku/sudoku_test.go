package sudoku

import (
	"context"
	"fmt"
	"strings"
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

// solvedBase is a valid full 9x9 solution used to derive test puzzles.
var solvedBase = [gridSize][gridSize]int{
	{1, 2, 3, 4, 5, 6, 7, 8, 9},
	{4, 5, 6, 7, 8, 9, 1, 2, 3},
	{7, 8, 9, 1, 2, 3, 4, 5, 6},
	{2, 3, 1, 5, 6, 4, 8, 9, 7},
	{5, 6, 4, 8, 9, 7, 2, 3, 1},
	{8, 9, 7, 2, 3, 1, 5, 6, 4},
	{3, 1, 2, 6, 4, 5, 9, 7, 8},
	{6, 4, 5, 9, 7, 8, 3, 1, 2},
	{9, 7, 8, 3, 1, 2, 6, 4, 5},
}

// puzzleWithBlanks clears the given cells of the solved base board.
func puzzleWithBlanks(blanks ...[2]int) [][]int {
	grid := make([][]int, gridSize)
	for i := range grid {
		grid[i] = make([]int, gridSize)
		copy(grid[i], solvedBase[i][:])
	}
	for _, b := range blanks {
		grid[b[0]][b[1]] = 0
	}
	return grid
}

func testInstance(grid [][]int, maxMoves int) config.Instance {
	return config.Instance{
		ID:     0,
		Prompt: "Solve the puzzle.",
		Params: map[string]any{
			"max_moves":  maxMoves,
			"difficulty": 0.5,
			"grid":       grid,
		},
	}
}

func playPuzzle(t *testing.T, grid [][]int, maxMoves int, responses ...string) recorder.Trace {
	t.Helper()
	rec := recorder.New(Name)
	model := &scriptedModel{responses: responses}
	dm, err := New([]game.Model{model}, testInstance(grid, maxMoves), rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := dm.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	return rec.Trace()
}

func TestFillingLastCellsWins(t *testing.T) {
	grid := puzzleWithBlanks([2]int{0, 0}, [2]int{8, 8})
	trace := playPuzzle(t, grid, 20, "0 0 1", "8 8 5")

	if got := trace.Keys["success"]; got != true {
		t.Errorf("success = %v, want true", got)
	}
	if got := trace.Keys["moves"]; got != 2 {
		t.Errorf("moves = %v, want 2", got)
	}
}

func TestConstraintViolationLoses(t *testing.T) {
	grid := puzzleWithBlanks([2]int{0, 0}, [2]int{8, 8})
	// 2 already occurs in row 0.
	trace := playPuzzle(t, grid, 20, "0 0 2")

	if got := trace.Keys["terminated"]; got != true {
		t.Errorf("terminated = %v, want true", got)
	}
	if got := trace.Keys["success"]; got != false {
		t.Errorf("success = %v, want false", got)
	}
	if got := trace.Keys["aborted"]; got != false {
		t.Errorf("aborted = %v, want false; a wrong number is a loss, not a violation", got)
	}
}

func TestGivenCellIsImmutable(t *testing.T) {
	grid := puzzleWithBlanks([2]int{0, 0})
	// (1, 1) is a given; the warned player then fills the real blank.
	trace := playPuzzle(t, grid, 20, "1 1 5", "0 0 1")

	if got := trace.Keys["success"]; got != true {
		t.Errorf("success = %v, want true", got)
	}
	if got := trace.Keys["moves"]; got != 1 {
		t.Errorf("moves = %v, want 1; the rejected fill must not count", got)
	}
}

func TestEnvironmentRejections(t *testing.T) {
	var cfg Config
	inst := testInstance(puzzleWithBlanks([2]int{4, 4}), 20)
	if err := inst.DecodeParams(&cfg); err != nil {
		t.Fatalf("DecodeParams failed: %v", err)
	}
	cfg.Prompt = inst.Prompt

	env := NewEnvironment(cfg)
	p := game.NewPlayer("Solver", nil)
	p.Name = "Player 1 (Solver)"
	if err := env.AddPlayer(p); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	if err := env.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	tests := []struct {
		desc   string
		action FillAction
		reason string
	}{
		{"row out of range", FillAction{Row: 9, Col: 0, Value: 1}, "outside the grid"},
		{"value out of range", FillAction{Row: 4, Col: 4, Value: 10}, "out of range"},
		{"occupied cell", FillAction{Row: 0, Col: 0, Value: 1}, "already filled"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			ok, reason := env.Validate(p, tt.action)
			if ok {
				t.Fatal("Validate accepted the action")
			}
			if !strings.Contains(reason, tt.reason) {
				t.Errorf("reason = %q, want it to mention %q", reason, tt.reason)
			}
		})
	}
}

func TestMoveBudgetExhaustionLoses(t *testing.T) {
	grid := puzzleWithBlanks([2]int{0, 0}, [2]int{8, 8})
	trace := playPuzzle(t, grid, 1, "0 0 1")

	if got := trace.Keys["terminated"]; got != true {
		t.Errorf("terminated = %v, want true", got)
	}
	if got := trace.Keys["success"]; got != false {
		t.Errorf("success = %v, want false", got)
	}
}

func TestParseFill(t *testing.T) {
	tests := []struct {
		response string
		ok       bool
	}{
		{"0 0 1", true},
		{" 8 8 9 ", true},
		{"0 0", false},
		{"a b c", false},
		{"", false},
	}
	for _, tt := range tests {
		_, err := parseFill(tt.response)
		if (err == nil) != tt.ok {
			t.Errorf("parseFill(%q) error = %v, want ok=%v", tt.response, err, tt.ok)
		}
	}
}

func TestGeneratorBoardsAreValid(t *testing.T) {
	opts := DefaultGeneratorOptions()
	opts.NumInstances = 2
	exp, err := GenerateExperiment(opts)
	if err != nil {
		t.Fatalf("GenerateExperiment failed: %v", err)
	}

	for _, inst := range exp.Instances {
		var cfg Config
		if err := inst.DecodeParams(&cfg); err != nil {
			t.Fatalf("instance %d: DecodeParams failed: %v", inst.ID, err)
		}

		var board [gridSize][gridSize]int
		blanks := 0
		for i, row := range cfg.Grid {
			for j, v := range row {
				if v == 0 {
					blanks++
					continue
				}
				// Every given must be consistent with the others.
				if !cellValid(&board, i, j, v) {
					t.Errorf("instance %d: given %d at (%d, %d) conflicts", inst.ID, v, i, j)
				}
				board[i][j] = v
			}
		}
		wantBlanks := int(opts.Difficulty * gridSize * gridSize)
		if blanks != wantBlanks {
			t.Errorf("instance %d: %d blank(s), want %d", inst.ID, blanks, wantBlanks)
		}
	}
}

func TestScorer(t *testing.T) {
	grid := puzzleWithBlanks([2]int{0, 0})
	trace := playPuzzle(t, grid, 20, "0 0 1")

	scores, err := Scorer{}.ComputeScores(trace)
	if err != nil {
		t.Fatalf("ComputeScores failed: %v", err)
	}
	if scores[scoring.BenchScore] != 100 {
		t.Errorf("bench score = %v, want 100", scores[scoring.BenchScore])
	}
}
