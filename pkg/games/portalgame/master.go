package portalgame

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paulutsch/clembench/pkg/config"
	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/master"
	"github.com/paulutsch/clembench/pkg/recorder"
)

// Name is the game's registry key.
const Name = "portalgame"

var directionRe = regexp.MustCompile(`DIRECTION:\s*([nsewNSEW])`)

// Master provides the portalgame hooks for the dialogue game master.
type Master struct {
	master.Defaults
	env *Environment
}

// New builds a game master for one maze episode.
func New(models []game.Model, inst config.Instance, rec *recorder.Recorder) (*master.DialogueGameMaster, error) {
	if len(models) < 1 {
		return nil, fmt.Errorf("portalgame: one player model required")
	}

	var cfg Config
	if err := inst.DecodeParams(&cfg); err != nil {
		return nil, fmt.Errorf("portalgame: %w", err)
	}
	cfg.Prompt = inst.Prompt

	env := NewEnvironment(cfg)
	g := &Master{env: env}
	dm := master.New(Name, g, env, rec)

	explorer := game.NewPlayer("Explorer", models[0])
	if err := dm.AddPlayer(explorer); err != nil {
		return nil, err
	}
	if err := env.AddPlayer(explorer); err != nil {
		return nil, err
	}
	return dm, nil
}

// ValidateResponse accepts any response that yields a direction letter,
// either via the DIRECTION: tag or as the trailing character.
func (m *Master) ValidateResponse(_ *game.Player, response string) bool {
	_, ok := extractDirection(response)
	return ok
}

func (m *Master) ParseResponse(_ *game.Player, response string) string {
	dir, _ := extractDirection(response)
	return dir
}

func (m *Master) ActionFromResponse(_ *game.Player, parsed string) (game.Action, error) {
	return MoveAction{Direction: parsed}, nil
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
		"shortest_path": m.env.cfg.ShortestPath,
		"switch_active": st.SwitchActive,
		"door_open":     st.DoorOpen,
	}
}

// extractDirection pulls the move letter out of a raw response. The tagged
// form wins; otherwise the last non-space character is taken, so bare
// answers like "n" still work.
func extractDirection(response string) (string, bool) {
	if match := directionRe.FindStringSubmatch(response); match != nil {
		return strings.ToLower(match[1]), true
	}
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return "", false
	}
	last := strings.ToLower(trimmed[len(trimmed)-1:])
	switch last {
	case "n", "s", "e", "w":
		return last, true
	}
	return "", false
}
