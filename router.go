package worldviewer

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ErrUnknownRoom is returned when a connection names a room that is not in
// the snapshot.
var ErrUnknownRoom = errors.New("unknown room")

// DoorLabel is the floating label drawn over a connection that has a door.
type DoorLabel struct {
	Name      string
	Label     string
	Icon      Icon
	LockIcon  Icon
	Highlight bool
	Box       Box
	Rect      Rect
}

// Edge is the routed geometry of one connection.
type Edge struct {
	Src, Dest string
	Dir       Direction
	From, To  Point
	Door      *DoorLabel
	// Impossible marks connections whose direction disagrees with the grid.
	Impossible bool
}

// Router computes edge geometry from measured room boxes.
type Router struct {
	Labels   *Labeler
	Measurer Measurer
	// GridFallback derives the direction from grid positions when the
	// adjacency facts do not name one.
	GridFallback bool
}

// ResolveDirection returns the direction of travel from src to dest, read
// from the facts attached to dest. A fact such as west_of(src, dest) says
// that src lies west of dest, so travel goes east. When no fact names src,
// or facts disagree, the direction is empty.
func ResolveDirection(src, dest *Room) Direction {
	found := mapset.New[Direction]()
	for _, fact := range dest.BaseRoom.Attributes {
		if len(fact.Arguments) == 0 || fact.Arguments[0].Name != src.LogicalName() {
			continue
		}
		if d := ParseDirection(fact.Name); d != DirNone {
			found.Put(d.Opposite())
		}
	}
	if found.Size() != 1 {
		return DirNone
	}
	var dir Direction
	found.Each(func(d Direction) { dir = d })
	return dir
}

// IsImpossible reports whether a connection cannot be drawn as a straight
// side-to-side segment: its direction is unknown, or dest is not strictly
// on that side of src along one grid axis.
func IsImpossible(src, dest *Room, dir Direction) bool {
	dx := dest.Position.X() - src.Position.X()
	dy := dest.Position.Y() - src.Position.Y()
	switch dir {
	case DirEast:
		return dx <= 0 || dy != 0
	case DirWest:
		return dx >= 0 || dy != 0
	case DirNorth:
		return dy <= 0 || dx != 0
	case DirSouth:
		return dy >= 0 || dx != 0
	default:
		return true
	}
}

// Route computes the edges for conns.
func (r *Router) Route(boxes []RoomBox, conns []Connection) ([]Edge, error) {
	idx := indexRooms(boxes)
	edges := make([]Edge, 0, len(conns))
	for _, c := range conns {
		e, err := r.route(idx, c)
		if err != nil {
			return nil, fmt.Errorf("connection %s -> %s: %w", c.Src, c.Dest, err)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func (r *Router) route(idx roomIndex, c Connection) (Edge, error) {
	src, ok := idx[c.Src]
	if !ok {
		return Edge{}, fmt.Errorf("source %q: %w", c.Src, ErrUnknownRoom)
	}
	dest, ok := idx[c.Dest]
	if !ok {
		return Edge{}, fmt.Errorf("destination %q: %w", c.Dest, ErrUnknownRoom)
	}

	dir := ResolveDirection(src.Room, dest.Room)
	if dir == DirNone && r.GridFallback {
		dir = GridDirection(src.Room.Position, dest.Room.Position)
	}

	e := Edge{
		Src:        c.Src,
		Dest:       c.Dest,
		Dir:        dir,
		From:       src.Rect.Anchor(dir),
		To:         dest.Rect.Anchor(dir.Opposite()),
		Impossible: IsImpossible(src.Room, dest.Room, dir),
	}
	if c.Door != nil {
		label, err := r.doorLabel(c.Door, Midpoint(e.From, e.To))
		if err != nil {
			return Edge{}, err
		}
		e.Door = label
	}
	return e, nil
}

func (r *Router) doorLabel(door *Item, mid Point) (*DoorLabel, error) {
	icon, err := ResolveIcon(door)
	if err != nil {
		return nil, fmt.Errorf("door label: %w", err)
	}
	label := &DoorLabel{
		Name:      door.Name,
		Label:     r.Labels.Capitalize(door.Name),
		Icon:      icon,
		Highlight: door.Highlight,
	}
	icons := []Icon{icon}
	if door.OCL != StateOpen {
		label.LockIcon = StaticIcon(door.OCL)
		icons = append(icons, label.LockIcon)
	}
	label.Box = Box{Kind: BoxDoor, Title: label.Label, Icons: icons}
	size, err := measureBox(&label.Box, r.Measurer)
	if err != nil {
		return nil, err
	}
	label.Rect = RectAround(mid, size)
	return label, nil
}
