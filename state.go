// Package worldviewer renders textual-game world snapshots as a live grid graph for web browsers.
package worldviewer

import "strings"

// Item type codes used by the snapshot format.
const (
	TypeKey       = "k"
	TypePlayer    = "P"
	TypeObject    = "o"
	TypeFood      = "f"
	TypeBiteSized = "b"
	TypeContainer = "c"
	TypeDoor      = "d"
	TypeSupporter = "s"
)

// Lock states carried in Item.OCL.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateLocked = "locked"
)

// WorldState is a complete snapshot of the game world. It is always replaced
// as a whole, never patched.
type WorldState struct {
	Rooms       []Room       `json:"rooms"`
	Connections []Connection `json:"connections"`
	Inventory   []Item       `json:"inventory"`
	History     string       `json:"history"`
	Objective   string       `json:"objective"`
	Command     string       `json:"command"`
}

// GridPos is an integer authoring position, serialized as [x, y].
type GridPos [2]int

// X returns the horizontal grid coordinate.
func (p GridPos) X() int { return p[0] }

// Y returns the vertical grid coordinate. Larger is further north.
func (p GridPos) Y() int { return p[1] }

// Room is a single location in the world.
type Room struct {
	Name     string   `json:"name"`
	Position GridPos  `json:"position"`
	Items    []Item   `json:"items"`
	BaseRoom BaseRoom `json:"base_room"`
}

// BaseRoom carries the logical identity of a room and the facts that mention it.
type BaseRoom struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Attributes []Fact `json:"attributes"`
}

// Fact is a serialized proposition such as north_of(r_1, r_0).
type Fact struct {
	Name      string     `json:"name"`
	Arguments []Variable `json:"arguments"`
}

// Variable is an argument of a Fact.
type Variable struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Item is an object in the world. An item exclusively owns its Contents.
type Item struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	OCL        string   `json:"ocl"`
	Portable   bool     `json:"portable"`
	Highlight  bool     `json:"highlight"`
	Contents   []Item   `json:"contents"`
	Infos      string   `json:"_infos"`
	Predicates []string `json:"predicates,omitempty"`
}

// Connection links two rooms, optionally through a door.
type Connection struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Door *Item  `json:"door"`
}

// Descriptor returns the extra text appended to the item's label.
func (i *Item) Descriptor() string {
	if i.Infos == "" && len(i.Predicates) > 0 {
		return ": (" + strings.Join(i.Predicates, ", ") + ")"
	}
	return i.Infos
}

// IsPlayer reports whether the item is the player.
func (i *Item) IsPlayer() bool {
	return i.Type == TypePlayer
}

// MaxDepth returns the nesting depth of the item: 1 for an item without
// contents, 2 for a container holding plain items, and so on.
func (i *Item) MaxDepth() int {
	depth := 0
	for n := range i.Contents {
		if d := i.Contents[n].MaxDepth(); d > depth {
			depth = d
		}
	}
	return depth + 1
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	out := i
	out.Contents = cloneItems(i.Contents)
	if i.Predicates != nil {
		out.Predicates = append([]string(nil), i.Predicates...)
	}
	return out
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for n := range items {
		out[n] = items[n].Clone()
	}
	return out
}

// Clone returns a deep copy of the world state.
func (s *WorldState) Clone() *WorldState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Rooms != nil {
		out.Rooms = make([]Room, len(s.Rooms))
		for n, r := range s.Rooms {
			r.Items = cloneItems(r.Items)
			out.Rooms[n] = r
		}
	}
	if s.Connections != nil {
		out.Connections = make([]Connection, len(s.Connections))
		for n, c := range s.Connections {
			if c.Door != nil {
				door := c.Door.Clone()
				c.Door = &door
			}
			out.Connections[n] = c
		}
	}
	out.Inventory = cloneItems(s.Inventory)
	return &out
}

// Room returns the room with the given name.
func (s *WorldState) Room(name string) (*Room, bool) {
	for n := range s.Rooms {
		if s.Rooms[n].Name == name {
			return &s.Rooms[n], true
		}
	}
	return nil, false
}

// HasPlayer reports whether the player stands in the room.
func (r *Room) HasPlayer() bool {
	for n := range r.Items {
		if r.Items[n].IsPlayer() {
			return true
		}
	}
	return false
}

// LogicalName returns the name used by adjacency facts to refer to the room.
func (r *Room) LogicalName() string {
	if r.BaseRoom.Name != "" {
		return r.BaseRoom.Name
	}
	return r.Name
}
