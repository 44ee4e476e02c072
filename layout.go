package worldviewer

import (
	"errors"
	"fmt"
)

// ErrMissingMeasurement is returned when a box measures as zero, negative
// or non-finite. Routing edges from such a box would produce degenerate
// geometry.
var ErrMissingMeasurement = errors.New("box has no measured size")

// RoomBox is the transient geometry of one room for a single render pass.
type RoomBox struct {
	Room    *Room
	Box     Box
	Current bool
	// Target is the pixel centre derived from the grid position.
	Target Point
	Rect   Rect
}

// LayoutRooms places every room on the grid. It runs in three phases:
// build the box content, measure it, then centre each box on its grid
// target using the measured size.
func LayoutRooms(rooms []Room, expanded *ExpandedSet, labels *Labeler, m Measurer) ([]RoomBox, error) {
	boxes, err := buildRoomBoxes(rooms, expanded, labels)
	if err != nil {
		return nil, err
	}
	sizes, err := measureRoomBoxes(boxes, m)
	if err != nil {
		return nil, err
	}
	placeRoomBoxes(boxes, sizes)
	return boxes, nil
}

func buildRoomBoxes(rooms []Room, expanded *ExpandedSet, labels *Labeler) ([]RoomBox, error) {
	boxes := make([]RoomBox, len(rooms))
	for n := range rooms {
		room := &rooms[n]
		tree, err := BuildItemTree(room.Items, expanded, labels)
		if err != nil {
			return nil, fmt.Errorf("room %q: %w", room.Name, err)
		}
		boxes[n] = RoomBox{
			Room:    room,
			Box:     Box{Kind: BoxRoom, Title: room.Name, Items: tree},
			Current: room.HasPlayer(),
			Target:  GridToPixel(room.Position),
		}
	}
	return boxes, nil
}

func measureRoomBoxes(boxes []RoomBox, m Measurer) ([]Size, error) {
	sizes := make([]Size, len(boxes))
	for n := range boxes {
		s, err := measureBox(&boxes[n].Box, m)
		if err != nil {
			return nil, fmt.Errorf("room %q: %w", boxes[n].Room.Name, err)
		}
		sizes[n] = s
	}
	return sizes, nil
}

func placeRoomBoxes(boxes []RoomBox, sizes []Size) {
	for n := range boxes {
		boxes[n].Rect = RectAround(boxes[n].Target, sizes[n])
	}
}

func measureBox(b *Box, m Measurer) (Size, error) {
	s := m.Measure(b)
	if !s.Valid() {
		return Size{}, fmt.Errorf("%s box %q measured %gx%g: %w", b.Kind, b.Title, s.W, s.H, ErrMissingMeasurement)
	}
	return s, nil
}

// roomIndex looks room boxes up by room name.
type roomIndex map[string]*RoomBox

func indexRooms(boxes []RoomBox) roomIndex {
	idx := make(roomIndex, len(boxes))
	for n := range boxes {
		idx[boxes[n].Room.Name] = &boxes[n]
	}
	return idx
}
