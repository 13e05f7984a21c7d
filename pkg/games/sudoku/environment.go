// Package sudoku implements the single-player number puzzle: one cell is
// filled per turn, a constraint-breaking value loses the episode, and a
// completed board wins it.
package sudoku

import (
	"fmt"
	"strings"

	"github.com/paulutsch/clembench/pkg/environment"
	"github.com/paulutsch/clembench/pkg/game"
)

// ActionFill is the only action type on the puzzle.
const ActionFill = "fill_cell"

// FillAction writes a value into an empty cell.
type FillAction struct {
	Row   int
	Col   int
	Value int
}

func (FillAction) Type() string { return ActionFill }

const gridSize = 9
const boxSize = 3

// Config holds the per-instance puzzle.
type Config struct {
	MaxMoves   int     `yaml:"max_moves"`
	Difficulty float64 `yaml:"difficulty"`
	Grid       [][]int `yaml:"grid"`

	Prompt string `yaml:"-"`
}

// State extends the common episode fields with the working board and the
// immutable givens mask.
type State struct {
	game.State
	Board  [gridSize][gridSize]int
	Givens [gridSize][gridSize]bool
}

// Environment is the puzzle. Out-of-range coordinates and occupied cells
// are soft rejections; a value that breaks a row, column, or box
// constraint ends the episode as lost.
type Environment struct {
	*environment.Base
	st  *State
	cfg Config
}

// NewEnvironment creates the puzzle environment from an instance config.
func NewEnvironment(cfg Config) *Environment {
	e := &Environment{st: &State{}, cfg: cfg}
	e.Base = environment.NewBase(&e.st.State, environment.PolicyWarn, e)
	return e
}

// GameState exposes the typed state for masters and tests.
func (e *Environment) GameState() *State { return e.st }

// OnReset loads the givens and shows the player the starting grid.
func (e *Environment) OnReset() error {
	players := e.Players()
	if len(players) != 1 {
		return fmt.Errorf("sudoku: exactly one player required, have %d", len(players))
	}
	player := players[0]

	if len(e.cfg.Grid) != gridSize {
		return fmt.Errorf("sudoku: grid must have %d rows, got %d", gridSize, len(e.cfg.Grid))
	}
	for i, row := range e.cfg.Grid {
		if len(row) != gridSize {
			return fmt.Errorf("sudoku: row %d must have %d cells, got %d", i, gridSize, len(row))
		}
		for j, v := range row {
			if v < 0 || v > gridSize {
				return fmt.Errorf("sudoku: cell (%d, %d) holds %d, want 0..%d", i, j, v, gridSize)
			}
			e.st.Board[i][j] = v
			e.st.Givens[i][j] = v != 0
		}
	}

	e.SetActionSpace(player, game.ActionSpace{ActionFill})
	e.SetObservation(player, game.Observation{
		Role:    game.RoleUser,
		Content: e.cfg.Prompt + "\n\n" + e.FormatBoard(),
		Grid:    e.FormatBoard(),
	})
	return nil
}

// Validate rejects out-of-range coordinates and values, and cells that are
// already filled. Constraint checking happens in Apply, where a violation
// is a loss rather than a retry.
func (e *Environment) Validate(_ *game.Player, a game.Action) (bool, string) {
	fill, ok := a.(FillAction)
	if !ok {
		return false, "That is not a cell fill."
	}
	if fill.Row < 0 || fill.Row >= gridSize || fill.Col < 0 || fill.Col >= gridSize {
		return false, fmt.Sprintf("The cell (%d, %d) is outside the grid! Please try again.", fill.Row, fill.Col)
	}
	if fill.Value < 1 || fill.Value > gridSize {
		return false, fmt.Sprintf("The value %d is out of range, use 1 to %d. Please try again.", fill.Value, gridSize)
	}
	if e.st.Board[fill.Row][fill.Col] != 0 {
		return false, fmt.Sprintf("The cell (%d, %d) is already filled! Please try again.", fill.Row, fill.Col)
	}
	return true, ""
}

// Apply writes the value. A constraint violation terminates the episode as
// lost, a completed board terminates it as won, and exhausting the move
// budget terminates it as lost.
func (e *Environment) Apply(_ *game.Player, a game.Action) error {
	fill, ok := a.(FillAction)
	if !ok {
		return fmt.Errorf("sudoku: unexpected action %T", a)
	}

	if !e.placementValid(fill.Row, fill.Col, fill.Value) {
		e.st.Board[fill.Row][fill.Col] = fill.Value
		e.st.Terminated = true
		e.st.Success = false
		return nil
	}
	e.st.Board[fill.Row][fill.Col] = fill.Value

	// Every placement was constraint-checked, so a full board is solved.
	if e.boardFilled() {
		e.st.Terminated = true
		e.st.Success = true
		return nil
	}

	if e.cfg.MaxMoves > 0 && e.st.Moves+1 >= e.cfg.MaxMoves {
		e.st.Terminated = true
		e.st.Success = false
	}
	return nil
}

// placementValid checks the row, column, and box constraints for writing
// value at (row, col), which must currently be empty.
func (e *Environment) placementValid(row, col, value int) bool {
	for i := 0; i < gridSize; i++ {
		if e.st.Board[row][i] == value || e.st.Board[i][col] == value {
			return false
		}
	}
	boxRow := (row / boxSize) * boxSize
	boxCol := (col / boxSize) * boxSize
	for i := boxRow; i < boxRow+boxSize; i++ {
		for j := boxCol; j < boxCol+boxSize; j++ {
			if e.st.Board[i][j] == value {
				return false
			}
		}
	}
	return true
}

func (e *Environment) boardFilled() bool {
	for i := range e.st.Board {
		for j := range e.st.Board[i] {
			if e.st.Board[i][j] == 0 {
				return false
			}
		}
	}
	return true
}

// UpdateObservations shows the player the working grid, prefixed with a
// pending warning or the final outcome.
func (e *Environment) UpdateObservations(_ *game.Player) {
	for _, p := range e.Players() {
		var sb strings.Builder
		if w := e.State().TakeWarning(); w != "" {
			sb.WriteString("Warning: " + w + "\n\n")
		}
		switch {
		case e.st.Terminated && e.st.Success:
			sb.WriteString("You solved the puzzle!\n\n")
		case e.st.Terminated:
			sb.WriteString("Game over.\n\n")
		default:
			sb.WriteString("The updated grid is:\n\n")
		}
		sb.WriteString(e.FormatBoard())
		if !e.st.Terminated {
			sb.WriteString("\nFill in the next number in the format described before.")
		}
		e.SetObservation(p, game.Observation{Role: game.RoleUser, Content: sb.String(), Grid: e.FormatBoard()})
	}
}

// FormatBoard serializes the grid, digits separated by spaces, one row per
// line. Empty cells show as 0, matching the fill instructions.
func (e *Environment) FormatBoard() string {
	var sb strings.Builder
	for i := range e.st.Board {
		for j := range e.st.Board[i] {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d", e.st.Board[i][j])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
