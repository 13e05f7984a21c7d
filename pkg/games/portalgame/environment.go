// Package portalgame implements the maze game: a single player navigates a
// grid toward a portal, past walls and a door that a switch toggles. The
// grid is rendered with fog-of-war, so the player has to explore.
package portalgame

import (
	"fmt"
	"strings"

	"github.com/paulutsch/clembench/pkg/environment"
	"github.com/paulutsch/clembench/pkg/game"
)

// ActionMove is the only action type in the maze.
const ActionMove = "move"

// MoveAction moves the player one cell in a cardinal direction.
type MoveAction struct {
	Direction string
}

func (MoveAction) Type() string { return ActionMove }

// Config holds the per-instance maze layout.
type Config struct {
	Height            int     `yaml:"height"`
	Width             int     `yaml:"width"`
	MaxMoves          int     `yaml:"max_moves"`
	LimitedVisibility bool    `yaml:"limited_visibility"`
	PlayerStart       []int   `yaml:"player_start"`
	Walls             [][]int `yaml:"walls"`
	Portal            []int   `yaml:"portal"`
	Door              []int   `yaml:"door"`
	Switch            []int   `yaml:"switch"`
	ShortestPath      int     `yaml:"shortest_path"`

	Prompt string `yaml:"-"`
}

// State extends the common episode fields with the toggle states the
// player is told about.
type State struct {
	game.State
	SwitchActive bool
	DoorOpen     bool
}

// Environment is the maze. Movement violations are soft rejections: the
// player is warned and may try again.
type Environment struct {
	*environment.GridEnvironment
	st  *State
	cfg Config

	portal *environment.Portal
	door   *environment.Door
	sw     *environment.Switch
}

// NewEnvironment creates the maze environment from an instance config.
func NewEnvironment(cfg Config) *Environment {
	e := &Environment{st: &State{}, cfg: cfg}
	e.GridEnvironment = environment.NewGridEnvironment(
		&e.st.State, environment.PolicyWarn, e, cfg.Height, cfg.Width, cfg.LimitedVisibility,
	)
	return e
}

// GameState exposes the typed state for masters and tests.
func (e *Environment) GameState() *State { return e.st }

// OnReset populates the grid from configuration and shows the player the
// initial layout.
func (e *Environment) OnReset() error {
	players := e.Players()
	if len(players) != 1 {
		return fmt.Errorf("portalgame: exactly one player required, have %d", len(players))
	}
	player := players[0]

	e.st.SwitchActive = false
	e.st.DoorOpen = false
	e.portal, e.door, e.sw = nil, nil, nil

	e.InitGrid()
	for _, wall := range e.cfg.Walls {
		pos, err := toPosition(wall)
		if err != nil {
			return fmt.Errorf("portalgame: wall: %w", err)
		}
		if err := e.AddObject(environment.NewWall(pos)); err != nil {
			return err
		}
	}
	if len(e.cfg.Portal) > 0 {
		pos, err := toPosition(e.cfg.Portal)
		if err != nil {
			return fmt.Errorf("portalgame: portal: %w", err)
		}
		e.portal = environment.NewPortal(pos)
		if err := e.AddObject(e.portal); err != nil {
			return err
		}
	}
	if len(e.cfg.Door) > 0 {
		pos, err := toPosition(e.cfg.Door)
		if err != nil {
			return fmt.Errorf("portalgame: door: %w", err)
		}
		e.door = environment.NewDoor(pos)
		if err := e.AddObject(e.door); err != nil {
			return err
		}
	}
	if len(e.cfg.Switch) > 0 {
		pos, err := toPosition(e.cfg.Switch)
		if err != nil {
			return fmt.Errorf("portalgame: switch: %w", err)
		}
		e.sw = environment.NewSwitch(pos)
		if err := e.AddObject(e.sw); err != nil {
			return err
		}
	}

	start, err := toPosition(e.cfg.PlayerStart)
	if err != nil {
		return fmt.Errorf("portalgame: player_start: %w", err)
	}
	if err := e.PlacePlayer(player.Name, start); err != nil {
		return err
	}

	e.SetActionSpace(player, game.ActionSpace{ActionMove})
	e.SetObservation(player, game.Observation{
		Role: game.RoleUser,
		Content: e.cfg.Prompt + "\n\n" +
			"You initially see the following grid layout:\n" + e.Render(player.Name),
		Grid: e.Render(player.Name),
	})
	return nil
}

// Validate layers the movement checks; each failure reason is shown back
// to the player verbatim.
func (e *Environment) Validate(p *game.Player, a game.Action) (bool, string) {
	move, ok := a.(MoveAction)
	if !ok {
		return false, "That is not a move."
	}
	_, ok, reason := e.CheckMove(p.Name, move.Direction)
	return ok, reason
}

// Apply moves the player and runs the interaction side effects of the
// entered cell: a portal wins, a switch toggles every door.
func (e *Environment) Apply(p *game.Player, a game.Action) error {
	move, ok := a.(MoveAction)
	if !ok {
		return fmt.Errorf("portalgame: unexpected action %T", a)
	}

	target, err := e.MovePlayer(p.Name, move.Direction)
	if err != nil {
		return err
	}

	if e.enteredKind(p.Name, target, environment.KindPortal) {
		e.st.Success = true
		e.st.Terminated = true
		return nil
	}

	e.st.Success = false
	if e.enteredKind(p.Name, target, environment.KindSwitch) {
		e.sw.Activated = !e.sw.Activated
		e.st.SwitchActive = e.sw.Activated
		e.ToggleDoors()
		if e.door != nil {
			e.st.DoorOpen = e.door.Open
		}
	}

	// Moves counts this action once the base accepts it, hence the +1.
	if e.cfg.MaxMoves > 0 && e.st.Moves+1 >= e.cfg.MaxMoves {
		e.st.Terminated = true
	}
	return nil
}

// enteredKind probes the entered cell, top object first, ignoring the
// player's own marker.
func (e *Environment) enteredKind(player string, pos environment.Position, kind string) bool {
	objects := e.ObjectsAt(pos)
	for i := len(objects) - 1; i >= 0; i-- {
		if marker, ok := objects[i].(*environment.PlayerMarker); ok && marker.Player == player {
			continue
		}
		return objects[i].Kind() == kind
	}
	return false
}

// UpdateObservations recomposes the player's view: warning, position,
// toggle states, and the fog-filtered grid.
func (e *Environment) UpdateObservations(_ *game.Player) {
	for _, p := range e.Players() {
		pos, err := e.PlayerPosition(p.Name)
		if err != nil {
			continue
		}
		grid := e.Render(p.Name)

		var sb strings.Builder
		if w := e.State().TakeWarning(); w != "" {
			sb.WriteString("Warning: " + w + "\n")
		}
		fmt.Fprintf(&sb, "Current position: (%d, %d)\n", pos.Row, pos.Col)
		if e.sw != nil {
			fmt.Fprintf(&sb, "Switch active: %t\n", e.st.SwitchActive)
		}
		if e.door != nil {
			doorState := "closed"
			if e.st.DoorOpen {
				doorState = "open"
			}
			fmt.Fprintf(&sb, "Door state: %s\n", doorState)
		}
		sb.WriteString("\nGrid (Visible Area):\n" + grid)

		e.SetObservation(p, game.Observation{Role: game.RoleUser, Content: sb.String(), Grid: grid})
	}
}

func toPosition(coords []int) (environment.Position, error) {
	if len(coords) != 2 {
		return environment.Position{}, fmt.Errorf("expected [row, col], got %v", coords)
	}
	return environment.Position{Row: coords[0], Col: coords[1]}, nil
}
