package environment

// Position addresses a grid cell, row-major.
type Position struct {
	Row int
	Col int
}

// Object kind tags used by the grid environment.
const (
	KindWall         = "wall"
	KindPortal       = "portal"
	KindSwitch       = "switch"
	KindDoor         = "door"
	KindPlayerMarker = "player"
)

// Object is an entity placed in a grid cell. Objects are owned by the cell
// list they occupy; moving one means removing it from its old cell and
// appending it at the new one, never mutating position while indexed.
type Object interface {
	Pos() Position
	Kind() string

	// Glyph is the compact single-glyph symbol used in machine-parseable
	// renderings; Pretty is the decorative symbol for human-readable ones.
	Glyph() string
	Pretty() string

	rehome(Position)
}

// BaseObject carries the shared object fields. Concrete objects embed it.
type BaseObject struct {
	pos    Position
	kind   string
	glyph  string
	pretty string
}

func (o *BaseObject) Pos() Position        { return o.pos }
func (o *BaseObject) Kind() string         { return o.kind }
func (o *BaseObject) Glyph() string        { return o.glyph }
func (o *BaseObject) Pretty() string       { return o.pretty }
func (o *BaseObject) rehome(pos Position)  { o.pos = pos }

// Wall blocks movement.
type Wall struct{ BaseObject }

func NewWall(pos Position) *Wall {
	return &Wall{BaseObject{pos: pos, kind: KindWall, glyph: "W", pretty: "⬛"}}
}

// Portal is a win-condition cell: entering it ends the episode favorably.
type Portal struct{ BaseObject }

func NewPortal(pos Position) *Portal {
	return &Portal{BaseObject{pos: pos, kind: KindPortal, glyph: "O", pretty: "🌀"}}
}

// Switch toggles all doors in the grid when entered.
type Switch struct {
	BaseObject
	Activated bool
}

func NewSwitch(pos Position) *Switch {
	return &Switch{BaseObject: BaseObject{pos: pos, kind: KindSwitch, glyph: "S", pretty: "🔘"}}
}

// Door blocks movement while closed. Doors start closed.
type Door struct {
	BaseObject
	Open bool
}

func NewDoor(pos Position) *Door {
	return &Door{BaseObject: BaseObject{pos: pos, kind: KindDoor, glyph: "D", pretty: "🚪"}}
}

// Toggle flips the door between open and closed.
func (d *Door) Toggle() { d.Open = !d.Open }

// PlayerMarker represents a player's presence in a cell. A fresh marker is
// placed per position change rather than mutating one in place.
type PlayerMarker struct {
	BaseObject
	Player string
}

func NewPlayerMarker(player string, pos Position) *PlayerMarker {
	return &PlayerMarker{
		BaseObject: BaseObject{pos: pos, kind: KindPlayerMarker, glyph: "P", pretty: "🧍"},
		Player:     player,
	}
}
