package environment

import (
	"fmt"
	"strings"

	"github.com/paulutsch/clembench/pkg/game"
)

// MaxStack caps how many objects may share one cell. Stacks stay tiny (a
// player standing on a switch is the common case).
const MaxStack = 4

// CellStack is the ordered object list of one cell. The last-pushed object
// is on top and wins for occlusion and interaction purposes.
type CellStack struct {
	objects []Object
}

// Push appends an object on top of the stack.
func (c *CellStack) Push(o Object) error {
	if len(c.objects) >= MaxStack {
		return fmt.Errorf("cell %v: stack full", o.Pos())
	}
	c.objects = append(c.objects, o)
	return nil
}

// Remove deletes an object by identity. It reports whether the object was
// present.
func (c *CellStack) Remove(o Object) bool {
	for i, existing := range c.objects {
		if existing == o {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			return true
		}
	}
	return false
}

// Top returns the topmost object, or nil for an empty cell.
func (c *CellStack) Top() Object {
	if len(c.objects) == 0 {
		return nil
	}
	return c.objects[len(c.objects)-1]
}

// Objects returns a copy of the stack, bottom to top.
func (c *CellStack) Objects() []Object {
	out := make([]Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// Empty reports whether the cell holds no objects.
func (c *CellStack) Empty() bool { return len(c.objects) == 0 }

// Directions are the four cardinal letters accepted in moves.
const (
	North = "n"
	South = "s"
	East  = "e"
	West  = "w"
)

// ValidDirection reports whether dir is one of the four cardinal letters.
func ValidDirection(dir string) bool {
	switch dir {
	case North, South, East, West:
		return true
	}
	return false
}

// GridEnvironment extends Base with a fixed-size 2D cell grid, player
// position tracking, per-player explored masks, and text rendering.
type GridEnvironment struct {
	*Base

	Height int
	Width  int

	// Limited enables fog-of-war: players only see cells their explored
	// mask covers.
	Limited bool

	cells    [][]CellStack
	pos      map[string]Position
	markers  map[string]*PlayerMarker
	explored map[string][][]bool
}

// NewGridEnvironment creates a grid environment of the given dimensions.
// The grid itself is allocated by InitGrid during reset.
func NewGridEnvironment(state *game.State, policy RejectionPolicy, hooks Hooks, height, width int, limited bool) *GridEnvironment {
	g := &GridEnvironment{
		Height:  height,
		Width:   width,
		Limited: limited,
	}
	g.Base = NewBase(state, policy, hooks)
	return g
}

// InitGrid (re)allocates the grid and all per-player tracking structures.
// Concrete games call it from OnReset before populating cells.
func (g *GridEnvironment) InitGrid() {
	g.cells = make([][]CellStack, g.Height)
	for i := range g.cells {
		g.cells[i] = make([]CellStack, g.Width)
	}
	g.pos = make(map[string]Position)
	g.markers = make(map[string]*PlayerMarker)
	g.explored = make(map[string][][]bool)
	for _, p := range g.Players() {
		mask := make([][]bool, g.Height)
		for i := range mask {
			mask[i] = make([]bool, g.Width)
		}
		g.explored[p.Name] = mask
	}
}

// InBounds reports whether the position lies within the grid.
func (g *GridEnvironment) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.Height && pos.Col >= 0 && pos.Col < g.Width
}

// AddObject appends an object at its position.
func (g *GridEnvironment) AddObject(o Object) error {
	if !g.InBounds(o.Pos()) {
		return fmt.Errorf("add object %s at %v: out of bounds", o.Kind(), o.Pos())
	}
	return g.cells[o.Pos().Row][o.Pos().Col].Push(o)
}

// RemoveObject deletes an object by identity from the cell it occupies. A
// removal of an absent object is a programmer error and fails loudly.
func (g *GridEnvironment) RemoveObject(o Object) error {
	if !g.InBounds(o.Pos()) {
		return fmt.Errorf("remove object %s at %v: out of bounds", o.Kind(), o.Pos())
	}
	if !g.cells[o.Pos().Row][o.Pos().Col].Remove(o) {
		return fmt.Errorf("remove object %s at %v: %w", o.Kind(), o.Pos(), game.ErrObjectNotFound)
	}
	return nil
}

// ObjectsAt returns the ordered object list at a position; an empty list
// means an empty cell.
func (g *GridEnvironment) ObjectsAt(pos Position) []Object {
	if !g.InBounds(pos) {
		return nil
	}
	return g.cells[pos.Row][pos.Col].Objects()
}

// TopObjectAt returns the topmost object at a position, or nil.
func (g *GridEnvironment) TopObjectAt(pos Position) Object {
	if !g.InBounds(pos) {
		return nil
	}
	return g.cells[pos.Row][pos.Col].Top()
}

// ForEachObject visits every object in the grid, row-major, bottom to top.
func (g *GridEnvironment) ForEachObject(fn func(Object)) {
	for i := range g.cells {
		for j := range g.cells[i] {
			for _, o := range g.cells[i][j].Objects() {
				fn(o)
			}
		}
	}
}

// ToggleDoors flips every door in the grid. This is the switch interaction
// side effect: the one place where one action touches objects other than
// the mover.
func (g *GridEnvironment) ToggleDoors() {
	g.ForEachObject(func(o Object) {
		if d, ok := o.(*Door); ok {
			d.Toggle()
		}
	})
}

// PlacePlayer puts a fresh marker for the player at the given position and
// marks its neighborhood explored.
func (g *GridEnvironment) PlacePlayer(name string, pos Position) error {
	if !g.InBounds(pos) {
		return fmt.Errorf("place player %s at %v: out of bounds", name, pos)
	}
	marker := NewPlayerMarker(name, pos)
	if err := g.cells[pos.Row][pos.Col].Push(marker); err != nil {
		return err
	}
	g.pos[name] = pos
	g.markers[name] = marker
	g.MarkExplored(name, pos)
	return nil
}

// PlayerPosition returns the player's current position.
func (g *GridEnvironment) PlayerPosition(name string) (Position, error) {
	pos, ok := g.pos[name]
	if !ok {
		return Position{}, fmt.Errorf("%w: %s", game.ErrUnknownPlayer, name)
	}
	return pos, nil
}

// Neighbor computes the four-connected neighbor in the given direction.
func Neighbor(pos Position, dir string) Position {
	switch dir {
	case North:
		return Position{Row: pos.Row - 1, Col: pos.Col}
	case South:
		return Position{Row: pos.Row + 1, Col: pos.Col}
	case East:
		return Position{Row: pos.Row, Col: pos.Col + 1}
	case West:
		return Position{Row: pos.Row, Col: pos.Col - 1}
	}
	return pos
}

// CheckMove layers the movement validity checks bottom-up: direction, then
// bounds, then blocking objects. Each rejection carries its own corrective
// reason because that text is shown back to the acting agent.
func (g *GridEnvironment) CheckMove(name, dir string) (Position, bool, string) {
	if !ValidDirection(dir) {
		return Position{}, false, fmt.Sprintf("Invalid direction: %s! Please try again.", dir)
	}
	cur, err := g.PlayerPosition(name)
	if err != nil {
		return Position{}, false, err.Error()
	}
	target := Neighbor(cur, dir)
	if !g.InBounds(target) {
		return target, false, fmt.Sprintf("The cell (%d, %d) is outside the grid! Please try again.", target.Row, target.Col)
	}
	switch o := g.TopObjectAt(target).(type) {
	case *Wall:
		return target, false, fmt.Sprintf("The object at cell (%d, %d) is a wall! You cannot pass through walls! Please try again.", target.Row, target.Col)
	case *Door:
		if !o.Open {
			return target, false, fmt.Sprintf("The object at cell (%d, %d) is a closed door! You need to open it first.", target.Row, target.Col)
		}
	}
	return target, true, ""
}

// MovePlayer re-homes the player's marker to the four-connected neighbor in
// the given direction and marks the new neighborhood explored. Validity
// must have been checked already; only setup mistakes error here.
func (g *GridEnvironment) MovePlayer(name, dir string) (Position, error) {
	marker, ok := g.markers[name]
	if !ok {
		return Position{}, fmt.Errorf("move: %w: %s", game.ErrUnknownPlayer, name)
	}
	cur := g.pos[name]
	target := Neighbor(cur, dir)
	if !g.InBounds(target) {
		return Position{}, fmt.Errorf("move %s to %v: out of bounds", name, target)
	}

	if err := g.RemoveObject(marker); err != nil {
		return Position{}, err
	}
	marker.rehome(target)
	if err := g.cells[target.Row][target.Col].Push(marker); err != nil {
		return Position{}, err
	}
	g.pos[name] = target
	g.MarkExplored(name, target)
	return target, nil
}

// MarkExplored marks the 3×3 neighborhood of pos as explored for the
// player. The explored set only ever grows within an episode.
func (g *GridEnvironment) MarkExplored(name string, pos Position) {
	mask, ok := g.explored[name]
	if !ok {
		return
	}
	for i := pos.Row - 1; i <= pos.Row+1; i++ {
		for j := pos.Col - 1; j <= pos.Col+1; j++ {
			if i >= 0 && i < g.Height && j >= 0 && j < g.Width {
				mask[i][j] = true
			}
		}
	}
}

// ExploredAt reports whether a cell has ever been within the player's
// visibility radius.
func (g *GridEnvironment) ExploredAt(name string, pos Position) bool {
	mask, ok := g.explored[name]
	if !ok || !g.InBounds(pos) {
		return false
	}
	return mask[pos.Row][pos.Col]
}

// Render serializes the grid row-major, one compact glyph per cell. With
// fog-of-war enabled for the requesting player, unexplored cells render as
// "?" and empty explored cells as a space.
func (g *GridEnvironment) Render(name string) string {
	return g.render(name, func(o Object) string { return o.Glyph() }, "?", " ")
}

// RenderPretty is the human-readable variant using decorative symbols.
func (g *GridEnvironment) RenderPretty(name string) string {
	return g.render(name, func(o Object) string { return o.Pretty() }, "❔", "⬜")
}

func (g *GridEnvironment) render(name string, symbol func(Object) string, hidden, empty string) string {
	var sb strings.Builder
	for i := 0; i < g.Height; i++ {
		for j := 0; j < g.Width; j++ {
			pos := Position{Row: i, Col: j}
			if g.Limited && !g.ExploredAt(name, pos) {
				sb.WriteString(hidden)
				continue
			}
			if top := g.cells[i][j].Top(); top != nil {
				sb.WriteString(symbol(top))
			} else {
				sb.WriteString(empty)
			}
		}
		if i < g.Height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
