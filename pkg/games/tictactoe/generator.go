package tictactoe

import "github.com/paulutsch/clembench/pkg/config"

const promptText = "You are playing a TicTacToe game. TicTacToe is a two-player game played on a 3x3 grid. " +
	"Players take turns placing their marks (X or O) in empty cells. The first player to get three of their " +
	"marks in a row (horizontally, vertically, or diagonally) wins. If all cells are filled and no player has " +
	"won, the game is a draw. See the board below. Make your move by specifying the row and column where you " +
	"want to place your mark. Answer in the following format: '<row> <col>', example: '0 2' for the upper " +
	"right cell. Return nothing but the '<row> <col>', otherwise the parsing won't work."

// GeneratorOptions parameterizes board instance generation.
type GeneratorOptions struct {
	NumInstances int
	MaxMoves     int
}

// DefaultGeneratorOptions matches the shipped experiment setup.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{NumInstances: 10, MaxMoves: 10}
}

// GenerateExperiment builds the standard board experiment. Instances only
// differ in their id; the board state itself is deterministic.
func GenerateExperiment(opts GeneratorOptions) (*config.Experiment, error) {
	exp := &config.Experiment{
		Name: "tictactoe_standard",
		Game: Name,
	}
	for id := 0; id < opts.NumInstances; id++ {
		exp.Instances = append(exp.Instances, config.Instance{
			ID:     id,
			Prompt: promptText,
			Params: map[string]any{
				"max_moves": opts.MaxMoves,
			},
		})
	}
	return exp, nil
}
