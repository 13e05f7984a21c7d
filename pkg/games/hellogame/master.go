package hellogame

import (
	"fmt"
	"strings"

	"github.com/paulutsch/clembench/pkg/config"
	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/master"
	"github.com/paulutsch/clembench/pkg/recorder"
)

// Name is the game's registry key.
const Name = "hellogame"

// Master provides the hellogame hooks for the dialogue game master.
type Master struct {
	master.Defaults
	env *Environment
}

// New builds a game master for one greeting episode.
func New(models []game.Model, inst config.Instance, rec *recorder.Recorder) (*master.DialogueGameMaster, error) {
	if len(models) < 1 {
		return nil, fmt.Errorf("hellogame: one player model required")
	}

	var cfg Config
	if err := inst.DecodeParams(&cfg); err != nil {
		return nil, fmt.Errorf("hellogame: %w", err)
	}
	cfg.Prompt = inst.Prompt

	env := NewEnvironment(cfg)
	g := &Master{env: env}
	dm := master.New(Name, g, env, rec)

	greeter := game.NewPlayer("Greeter", models[0])
	if err := dm.AddPlayer(greeter); err != nil {
		return nil, err
	}
	if err := env.AddPlayer(greeter); err != nil {
		return nil, err
	}
	return dm, nil
}

// ValidateResponse only requires a non-empty utterance; whether it is a
// well-formed greeting is the environment's call.
func (m *Master) ValidateResponse(_ *game.Player, response string) bool {
	return strings.TrimSpace(response) != ""
}

func (m *Master) ActionFromResponse(_ *game.Player, parsed string) (game.Action, error) {
	return game.TextAction{Body: parsed}, nil
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
	st := m.env.GameState()
	return map[string]any{
		"target_name":   st.TargetName,
		"missing_words": append([]string{}, st.MissingWords...),
	}
}
