package worldviewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adjacency(name, src, dest string) Fact {
	return Fact{Name: name, Arguments: []Variable{{Name: src, Type: "r"}, {Name: dest, Type: "r"}}}
}

func twoRooms() []Room {
	return []Room{
		{Name: "Hall", Position: GridPos{0, 0}, BaseRoom: BaseRoom{Name: "r_0", Attributes: []Fact{
			adjacency("east_of", "r_1", "r_0"),
		}}},
		{Name: "Yard", Position: GridPos{1, 0}, BaseRoom: BaseRoom{Name: "r_1", Attributes: []Fact{
			adjacency("west_of", "r_0", "r_1"),
		}}},
	}
}

func routeRooms(t *testing.T, rooms []Room, conns []Connection, fallback bool) []Edge {
	t.Helper()
	boxes, err := LayoutRooms(rooms, nil, nil, DefaultMeasurer())
	require.NoError(t, err)
	r := &Router{Measurer: DefaultMeasurer(), GridFallback: fallback}
	edges, err := r.Route(boxes, conns)
	require.NoError(t, err)
	return edges
}

func TestResolveDirection(t *testing.T) {
	rooms := twoRooms()
	assert.Equal(t, DirEast, ResolveDirection(&rooms[0], &rooms[1]))
	assert.Equal(t, DirWest, ResolveDirection(&rooms[1], &rooms[0]))

	t.Run("no fact", func(t *testing.T) {
		rooms := twoRooms()
		rooms[1].BaseRoom.Attributes = nil
		assert.Equal(t, DirNone, ResolveDirection(&rooms[0], &rooms[1]))
	})

	t.Run("conflicting facts", func(t *testing.T) {
		rooms := twoRooms()
		rooms[1].BaseRoom.Attributes = append(rooms[1].BaseRoom.Attributes, adjacency("north_of", "r_0", "r_1"))
		assert.Equal(t, DirNone, ResolveDirection(&rooms[0], &rooms[1]))
	})

	t.Run("repeated fact", func(t *testing.T) {
		rooms := twoRooms()
		rooms[1].BaseRoom.Attributes = append(rooms[1].BaseRoom.Attributes, adjacency("west_of", "r_0", "r_1"))
		assert.Equal(t, DirEast, ResolveDirection(&rooms[0], &rooms[1]))
	})

	t.Run("other facts ignored", func(t *testing.T) {
		rooms := twoRooms()
		rooms[1].BaseRoom.Attributes = []Fact{
			{Name: "at", Arguments: []Variable{{Name: "r_0"}}},
			{Name: "west_of"},
			adjacency("west_of", "r_9", "r_1"),
		}
		assert.Equal(t, DirNone, ResolveDirection(&rooms[0], &rooms[1]))
	})
}

func TestRouteEastward(t *testing.T) {
	rooms := twoRooms()
	edges := routeRooms(t, rooms, []Connection{{Src: "Hall", Dest: "Yard"}}, false)
	require.Len(t, edges, 1)

	e := edges[0]
	assert.Equal(t, DirEast, e.Dir)
	assert.False(t, e.Impossible)
	assert.Equal(t, e.From.Y, e.To.Y)
	assert.Less(t, e.From.X, e.To.X)

	boxes, err := LayoutRooms(rooms, nil, nil, DefaultMeasurer())
	require.NoError(t, err)
	assert.True(t, boxes[0].Rect.OnPerimeter(e.From))
	assert.True(t, boxes[1].Rect.OnPerimeter(e.To))
}

func TestRouteImpossible(t *testing.T) {
	t.Run("missing direction", func(t *testing.T) {
		rooms := twoRooms()
		rooms[1].BaseRoom.Attributes = nil
		edges := routeRooms(t, rooms, []Connection{{Src: "Hall", Dest: "Yard"}}, false)
		assert.Equal(t, DirNone, edges[0].Dir)
		assert.True(t, edges[0].Impossible)
		// Both ends collapse to the box centres.
		assert.Equal(t, GridToPixel(GridPos{0, 0}), edges[0].From)
		assert.Equal(t, GridToPixel(GridPos{1, 0}), edges[0].To)
	})

	t.Run("grid fallback", func(t *testing.T) {
		rooms := twoRooms()
		rooms[1].BaseRoom.Attributes = nil
		edges := routeRooms(t, rooms, []Connection{{Src: "Hall", Dest: "Yard"}}, true)
		assert.Equal(t, DirEast, edges[0].Dir)
		assert.False(t, edges[0].Impossible)
	})

	t.Run("direction disagrees with grid", func(t *testing.T) {
		rooms := twoRooms()
		rooms[1].BaseRoom.Attributes = []Fact{adjacency("south_of", "r_0", "r_1")}
		edges := routeRooms(t, rooms, []Connection{{Src: "Hall", Dest: "Yard"}}, false)
		assert.Equal(t, DirNorth, edges[0].Dir)
		assert.True(t, edges[0].Impossible)
	})
}

func TestIsImpossible(t *testing.T) {
	a := &Room{Position: GridPos{0, 0}}
	north := &Room{Position: GridPos{0, 2}}
	diagonal := &Room{Position: GridPos{1, 1}}

	assert.False(t, IsImpossible(a, north, DirNorth))
	assert.True(t, IsImpossible(a, north, DirSouth))
	assert.True(t, IsImpossible(a, diagonal, DirEast))
	assert.True(t, IsImpossible(a, diagonal, DirNone))
}

func TestRouteDoorLabel(t *testing.T) {
	rooms := twoRooms()
	door := &Item{Name: "oak door", Type: TypeDoor, OCL: StateLocked, Highlight: true}
	edges := routeRooms(t, rooms, []Connection{{Src: "Hall", Dest: "Yard", Door: door}}, false)

	label := edges[0].Door
	require.NotNil(t, label)
	assert.Equal(t, "Oak door", label.Label)
	assert.Equal(t, IconDoor, label.Icon)
	assert.Equal(t, IconLocked, label.LockIcon)
	assert.True(t, label.Highlight)
	assert.Equal(t, Midpoint(edges[0].From, edges[0].To), label.Rect.Center())
	assert.Equal(t, []Icon{IconDoor, IconLocked}, label.Box.Icons)

	open := &Item{Name: "gate", Type: TypeDoor, OCL: StateOpen}
	edges = routeRooms(t, rooms, []Connection{{Src: "Hall", Dest: "Yard", Door: open}}, false)
	assert.Equal(t, IconDoorOpen, edges[0].Door.Icon)
	assert.Equal(t, Icon(""), edges[0].Door.LockIcon)
}

func TestRouteErrors(t *testing.T) {
	boxes, err := LayoutRooms(twoRooms(), nil, nil, DefaultMeasurer())
	require.NoError(t, err)
	r := &Router{Measurer: DefaultMeasurer()}

	_, err = r.Route(boxes, []Connection{{Src: "Hall", Dest: "Cellar"}})
	assert.ErrorIs(t, err, ErrUnknownRoom)

	_, err = r.Route(boxes, []Connection{{Src: "Hall", Dest: "Yard", Door: &Item{Name: "door", Type: TypeDoor, OCL: "ajar"}}})
	assert.ErrorIs(t, err, ErrUnknownLockState)
}
