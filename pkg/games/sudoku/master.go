package sudoku

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulutsch/clembench/pkg/config"
	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/master"
	"github.com/paulutsch/clembench/pkg/recorder"
)

// Name is the game's registry key.
const Name = "sudoku"

// Master provides the sudoku hooks for the dialogue game master.
type Master struct {
	master.Defaults
	env *Environment
}

// New builds a game master for one puzzle episode.
func New(models []game.Model, inst config.Instance, rec *recorder.Recorder) (*master.DialogueGameMaster, error) {
	if len(models) < 1 {
		return nil, fmt.Errorf("sudoku: one player model required")
	}

	var cfg Config
	if err := inst.DecodeParams(&cfg); err != nil {
		return nil, fmt.Errorf("sudoku: %w", err)
	}
	cfg.Prompt = inst.Prompt

	env := NewEnvironment(cfg)
	g := &Master{env: env}
	dm := master.New(Name, g, env, rec)

	solver := game.NewPlayer("Solver", models[0])
	if err := dm.AddPlayer(solver); err != nil {
		return nil, err
	}
	if err := env.AddPlayer(solver); err != nil {
		return nil, err
	}
	return dm, nil
}

// ValidateResponse requires exactly three integers.
func (m *Master) ValidateResponse(_ *game.Player, response string) bool {
	_, err := parseFill(response)
	return err == nil
}

func (m *Master) ActionFromResponse(_ *game.Player, parsed string) (game.Action, error) {
	return parseFill(parsed)
}

func (m *Master) ResponseScore(_ *game.Player, _ string) float64 {
	if m.env.GameState().Success {
		return 1
	}
	return 0
}

func (m *Master) EpisodeScore() float64 {
	if m.env.GameState().Success {
		return 1
	}
	return 0
}

func (m *Master) FinalKeys() map[string]any {
	return map[string]any{
		"difficulty": m.env.cfg.Difficulty,
	}
}

// parseFill reads a "<row> <col> <value>" response.
func parseFill(response string) (FillAction, error) {
	fields := strings.Fields(strings.TrimSpace(response))
	if len(fields) != 3 {
		return FillAction{}, fmt.Errorf("expected \"<row> <col> <value>\", got %q", response)
	}
	nums := make([]int, 3)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return FillAction{}, fmt.Errorf("%q is not a number", f)
		}
		nums[i] = n
	}
	return FillAction{Row: nums[0], Col: nums[1], Value: nums[2]}, nil
}
