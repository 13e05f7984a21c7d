// Package games registers the shipped games: construction of a game
// master for one instance, the matching scorer, and how many player models
// the game needs.
package games

import (
	"fmt"
	"sort"

	"github.com/paulutsch/clembench/pkg/config"
	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/games/hellogame"
	"github.com/paulutsch/clembench/pkg/games/portalgame"
	"github.com/paulutsch/clembench/pkg/games/sudoku"
	"github.com/paulutsch/clembench/pkg/games/tictactoe"
	"github.com/paulutsch/clembench/pkg/master"
	"github.com/paulutsch/clembench/pkg/recorder"
	"github.com/paulutsch/clembench/pkg/scoring"
)

// Entry describes one registered game.
type Entry struct {
	Name       string
	NumPlayers int
	New        func(models []game.Model, inst config.Instance, rec *recorder.Recorder) (*master.DialogueGameMaster, error)
	Scorer     scoring.Scorer
	Generate   func() (*config.Experiment, error)
}

var registry = map[string]Entry{
	hellogame.Name: {
		Name:       hellogame.Name,
		NumPlayers: 1,
		New:        hellogame.New,
		Scorer:     hellogame.Scorer{},
		Generate: func() (*config.Experiment, error) {
			return hellogame.GenerateExperiment(hellogame.DefaultGeneratorOptions())
		},
	},
	portalgame.Name: {
		Name:       portalgame.Name,
		NumPlayers: 1,
		New:        portalgame.New,
		Scorer:     portalgame.Scorer{},
		Generate: func() (*config.Experiment, error) {
			return portalgame.GenerateExperiment(portalgame.DefaultGeneratorOptions())
		},
	},
	tictactoe.Name: {
		Name:       tictactoe.Name,
		NumPlayers: 2,
		New:        tictactoe.New,
		Scorer:     tictactoe.Scorer{},
		Generate: func() (*config.Experiment, error) {
			return tictactoe.GenerateExperiment(tictactoe.DefaultGeneratorOptions())
		},
	},
	sudoku.Name: {
		Name:       sudoku.Name,
		NumPlayers: 1,
		New:        sudoku.New,
		Scorer:     sudoku.Scorer{},
		Generate: func() (*config.Experiment, error) {
			return sudoku.GenerateExperiment(sudoku.DefaultGeneratorOptions())
		},
	},
}

// Lookup returns the registered game by name.
func Lookup(name string) (Entry, error) {
	entry, ok := registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown game %q, available: %v", name, Names())
	}
	return entry, nil
}

// Names lists the registered games, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
