package sudoku

import (
	"fmt"
	"math/rand"

	"github.com/paulutsch/clembench/pkg/config"
)

const promptText = "You are playing a Sudoku game. Sudoku is a number puzzle played on a grid made up of subgrids. " +
	"The goal is to fill the grid with numbers following these rules: " +
	"1) Each row must contain all numbers 1 to 9 without repetition, " +
	"2) Each column must contain all numbers 1 to 9 without repetition, " +
	"3) Each subgrid must contain all numbers 1 to 9 without repetition. " +
	"Fill in the next number on your road to solve the puzzle, by replacing any of the 0s with the correct number. " +
	"Answer in the following format: '<row> <col> <value>', example: '0 0 1'. " +
	"Note that row and col values start with 0. Return nothing but the '<row> <col> <value>', " +
	"otherwise the parsing won't work."

// GeneratorOptions parameterizes puzzle instance generation.
type GeneratorOptions struct {
	NumInstances int
	MaxMoves     int
	Difficulty   float64
	Seed         int64
}

// DefaultGeneratorOptions matches the shipped medium experiment.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{NumInstances: 10, MaxMoves: 20, Difficulty: 0.5, Seed: 42}
}

// GenerateExperiment builds one puzzle experiment. Each instance is a
// freshly generated full board with a difficulty-sized fraction of cells
// blanked out, so no static puzzle leaks across runs.
func GenerateExperiment(opts GeneratorOptions) (*config.Experiment, error) {
	if opts.Difficulty < 0 || opts.Difficulty >= 1 {
		return nil, fmt.Errorf("sudoku: difficulty must be in [0, 1), got %g", opts.Difficulty)
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	exp := &config.Experiment{
		Name: fmt.Sprintf("sudoku_%.1f", opts.Difficulty),
		Game: Name,
	}
	for id := 0; id < opts.NumInstances; id++ {
		board, ok := generateSolvedBoard(rng)
		if !ok {
			return nil, fmt.Errorf("sudoku: board generation failed")
		}
		grid := blankCells(rng, board, opts.Difficulty)

		exp.Instances = append(exp.Instances, config.Instance{
			ID:     id,
			Prompt: promptText,
			Params: map[string]any{
				"max_moves":  opts.MaxMoves,
				"difficulty": opts.Difficulty,
				"grid":       grid,
			},
		})
	}
	return exp, nil
}

// generateSolvedBoard fills a 9x9 board by randomized backtracking.
func generateSolvedBoard(rng *rand.Rand) ([gridSize][gridSize]int, bool) {
	var board [gridSize][gridSize]int
	ok := fillFrom(rng, &board, 0)
	return board, ok
}

func fillFrom(rng *rand.Rand, board *[gridSize][gridSize]int, cell int) bool {
	if cell == gridSize*gridSize {
		return true
	}
	row, col := cell/gridSize, cell%gridSize

	values := rng.Perm(gridSize)
	for _, v := range values {
		value := v + 1
		if !cellValid(board, row, col, value) {
			continue
		}
		board[row][col] = value
		if fillFrom(rng, board, cell+1) {
			return true
		}
		board[row][col] = 0
	}
	return false
}

func cellValid(board *[gridSize][gridSize]int, row, col, value int) bool {
	for i := 0; i < gridSize; i++ {
		if board[row][i] == value || board[i][col] == value {
			return false
		}
	}
	boxRow := (row / boxSize) * boxSize
	boxCol := (col / boxSize) * boxSize
	for i := boxRow; i < boxRow+boxSize; i++ {
		for j := boxCol; j < boxCol+boxSize; j++ {
			if board[i][j] == value {
				return false
			}
		}
	}
	return true
}

// blankCells clears a difficulty-sized fraction of the solved board and
// returns it as the nested slice form the instance params carry.
func blankCells(rng *rand.Rand, board [gridSize][gridSize]int, difficulty float64) [][]int {
	order := rng.Perm(gridSize * gridSize)
	numBlanks := int(difficulty * gridSize * gridSize)
	for _, cell := range order[:numBlanks] {
		board[cell/gridSize][cell%gridSize] = 0
	}

	grid := make([][]int, gridSize)
	for i := range grid {
		grid[i] = make([]int, gridSize)
		copy(grid[i], board[i][:])
	}
	return grid
}
