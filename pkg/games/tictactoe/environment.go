// Package tictactoe implements the two-player mark placement game on a
// 3x3 board. It is the multi-player exercise of the episode loop: turn
// alternation, per-player observations, and a draw outcome.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/paulutsch/clembench/pkg/environment"
	"github.com/paulutsch/clembench/pkg/game"
)

// ActionPlace is the only action type on the board.
const ActionPlace = "make_move"

// PlaceAction puts the acting player's symbol on a cell.
type PlaceAction struct {
	Row int
	Col int
}

func (PlaceAction) Type() string { return ActionPlace }

const (
	boardSize = 3
	emptyCell = "▢"

	// TagSymbol is the player tag carrying the assigned mark.
	TagSymbol = "symbol"
)

// Winner identifies the episode outcome.
type Winner int

const (
	WinnerNone Winner = iota - 1 // game still running or move budget hit
	WinnerDraw                   // full board, no line
	WinnerX
	WinnerO
)

// Config holds the per-instance parameters.
type Config struct {
	MaxMoves int `yaml:"max_moves"`

	Prompt string `yaml:"-"`
}

// State extends the common episode fields with the board and outcome.
type State struct {
	game.State
	Board  [boardSize][boardSize]string
	Winner Winner
}

// Environment is the board. Occupied-cell and out-of-bounds placements are
// soft rejections: the player is warned and the turn is retried.
type Environment struct {
	*environment.Base
	st  *State
	cfg Config
}

// NewEnvironment creates the board environment from an instance config.
func NewEnvironment(cfg Config) *Environment {
	e := &Environment{st: &State{}, cfg: cfg}
	e.Base = environment.NewBase(&e.st.State, environment.PolicyWarn, e)
	return e
}

// GameState exposes the typed state for masters and tests.
func (e *Environment) GameState() *State { return e.st }

// OnReset clears the board and shows both players the prompt with their
// assigned symbol.
func (e *Environment) OnReset() error {
	players := e.Players()
	if len(players) != 2 {
		return fmt.Errorf("tictactoe: exactly two players required, have %d", len(players))
	}

	for i := range e.st.Board {
		for j := range e.st.Board[i] {
			e.st.Board[i][j] = emptyCell
		}
	}
	e.st.Winner = WinnerNone

	for _, p := range players {
		if p.Tag(TagSymbol) == "" {
			return fmt.Errorf("tictactoe: player %s has no symbol", p.Name)
		}
		e.SetActionSpace(p, game.ActionSpace{ActionPlace})
		e.SetObservation(p, game.Observation{
			Role: game.RoleUser,
			Content: e.cfg.Prompt +
				fmt.Sprintf("\n\nYou are the player that plays %s.\n\n", p.Tag(TagSymbol)) +
				"The current board is:\n\n" + e.FormatBoard(),
		})
	}
	return nil
}

// Validate rejects out-of-bounds and occupied cells.
func (e *Environment) Validate(_ *game.Player, a game.Action) (bool, string) {
	place, ok := a.(PlaceAction)
	if !ok {
		return false, "That is not a board move."
	}
	if place.Row < 0 || place.Row >= boardSize || place.Col < 0 || place.Col >= boardSize {
		return false, fmt.Sprintf("The cell (%d, %d) is outside the board! Please try again.", place.Row, place.Col)
	}
	if e.st.Board[place.Row][place.Col] != emptyCell {
		return false, fmt.Sprintf("The cell (%d, %d) is already taken! Please try again.", place.Row, place.Col)
	}
	return true, ""
}

// Apply places the mark and checks for a line, a draw, or an exhausted
// move budget.
func (e *Environment) Apply(p *game.Player, a game.Action) error {
	place, ok := a.(PlaceAction)
	if !ok {
		return fmt.Errorf("tictactoe: unexpected action %T", a)
	}

	symbol := p.Tag(TagSymbol)
	e.st.Board[place.Row][place.Col] = symbol
	e.checkOutcome()

	if !e.st.Terminated && e.cfg.MaxMoves > 0 && e.st.Moves+1 >= e.cfg.MaxMoves {
		e.st.Terminated = true
		e.st.Success = false
	}
	return nil
}

// checkOutcome scans rows, columns, and both diagonals for a full line,
// then checks for a draw. A draw still counts as a successful episode.
func (e *Environment) checkOutcome() {
	for _, symbol := range []string{"X", "O"} {
		if e.hasLine(symbol) {
			e.st.Terminated = true
			e.st.Success = true
			if symbol == "X" {
				e.st.Winner = WinnerX
			} else {
				e.st.Winner = WinnerO
			}
			return
		}
	}
	for i := range e.st.Board {
		for j := range e.st.Board[i] {
			if e.st.Board[i][j] == emptyCell {
				return
			}
		}
	}
	e.st.Terminated = true
	e.st.Success = true
	e.st.Winner = WinnerDraw
}

func (e *Environment) hasLine(symbol string) bool {
	b := &e.st.Board
	for i := 0; i < boardSize; i++ {
		if b[i][0] == symbol && b[i][1] == symbol && b[i][2] == symbol {
			return true
		}
		if b[0][i] == symbol && b[1][i] == symbol && b[2][i] == symbol {
			return true
		}
	}
	if b[0][0] == symbol && b[1][1] == symbol && b[2][2] == symbol {
		return true
	}
	return b[0][2] == symbol && b[1][1] == symbol && b[2][0] == symbol
}

// UpdateObservations composes each side's view of the last move: the
// rejection warning goes only to the player whose move was rejected, the
// mover sees the board it produced, and the opponent is told the other
// player moved.
func (e *Environment) UpdateObservations(acting *game.Player) {
	if e.st.Moves == 0 && e.st.Warning == "" {
		return
	}
	warning := e.State().TakeWarning()
	for _, p := range e.Players() {
		var content string
		switch {
		case warning != "" && p == acting:
			content = warning
		case warning != "":
			continue
		case p == acting:
			content = "You made a move. The new board is:\n\n" + e.FormatBoard()
		default:
			content = "The other player made a move. The new board is:\n\n" +
				e.FormatBoard() +
				"\n\nMake your next move in the format described before."
		}
		if e.st.Terminated {
			content += "\n\n" + e.outcomeMessage()
		}
		e.SetObservation(p, game.Observation{Role: game.RoleUser, Content: content})
	}
}

func (e *Environment) outcomeMessage() string {
	switch e.st.Winner {
	case WinnerDraw:
		return "Game ended in a draw!"
	case WinnerX, WinnerO:
		symbol := "X"
		if e.st.Winner == WinnerO {
			symbol = "O"
		}
		for _, p := range e.Players() {
			if p.Tag(TagSymbol) == symbol {
				return fmt.Sprintf("Game over! %s (%s) wins!", p.Name, symbol)
			}
		}
		return fmt.Sprintf("Game over! %s wins!", symbol)
	default:
		return "Game over! The move limit was reached."
	}
}

// FormatBoard serializes the board, one row per line.
func (e *Environment) FormatBoard() string {
	var sb strings.Builder
	for i := range e.st.Board {
		sb.WriteString(strings.Join(e.st.Board[i][:], ""))
		sb.WriteByte('\n')
	}
	return sb.String()
}
