package tictactoe

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
const Name = "tictactoe"

// Master provides the tictactoe hooks for the dialogue game master.
type Master struct {
	master.Defaults
	env *Environment
}

// New builds a game master for one board episode. The first model plays X
// and moves first, the second plays O.
func New(models []game.Model, inst config.Instance, rec *recorder.Recorder) (*master.DialogueGameMaster, error) {
	if len(models) < 2 {
		return nil, fmt.Errorf("tictactoe: two player models required, have %d", len(models))
	}

	var cfg Config
	if err := inst.DecodeParams(&cfg); err != nil {
		return nil, fmt.Errorf("tictactoe: %w", err)
	}
	cfg.Prompt = inst.Prompt

	env := NewEnvironment(cfg)
	g := &Master{env: env}
	dm := master.New(Name, g, env, rec)

	for i, symbol := range []string{"X", "O"} {
		p := game.NewPlayer("Mark Placer", models[i])
		if err := dm.AddPlayer(p); err != nil {
			return nil, err
		}
		p.SetTag(TagSymbol, symbol)
		if err := env.AddPlayer(p); err != nil {
			return nil, err
		}
	}
	return dm, nil
}

// ValidateResponse requires exactly two in-range integers.
func (m *Master) ValidateResponse(_ *game.Player, response string) bool {
	_, _, err := parseMove(response)
	return err == nil
}

func (m *Master) ActionFromResponse(_ *game.Player, parsed string) (game.Action, error) {
	row, col, err := parseMove(parsed)
	if err != nil {
		return nil, err
	}
	return PlaceAction{Row: row, Col: col}, nil
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
		"winner": int(m.env.GameState().Winner),
	}
}

// parseMove reads a "<row> <col>" response.
func parseMove(response string) (int, int, error) {
	fields := strings.Fields(strings.TrimSpace(response))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected \"<row> <col>\", got %q", response)
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("row %q is not a number", fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("col %q is not a number", fields[1])
	}
	return row, col, nil
}
