package worldviewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chestItem() Item {
	return Item{
		Name: "chest",
		Type: TypeContainer,
		OCL:  StateOpen,
		Contents: []Item{
			{Name: "coin", Type: TypeObject, Portable: true},
			{Name: "box", Type: TypeContainer, OCL: StateOpen, Contents: []Item{
				{Name: "ring", Type: TypeObject, Portable: true},
			}},
		},
	}
}

func TestExpandedSetToggle(t *testing.T) {
	s := NewExpandedSet()
	item := chestItem()
	original := item.Clone()

	assert.True(t, s.Toggle(&item))
	assert.True(t, s.Has("chest"))
	assert.Empty(t, item.Contents)
	assert.NotNil(t, item.Contents)

	assert.False(t, s.Toggle(&item))
	assert.False(t, s.Has("chest"))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, original, item)
}

func TestExpandedSetUnnamed(t *testing.T) {
	s := NewExpandedSet()
	item := Item{Type: TypeContainer, Contents: []Item{{Name: "x"}}}
	assert.False(t, s.Toggle(&item))
	assert.Len(t, item.Contents, 1)
	assert.Equal(t, 0, s.Len())
}

func TestExpandedSetReapply(t *testing.T) {
	s := NewExpandedSet()
	first := chestItem()
	s.Toggle(&first)

	// A later snapshot carries new contents for the folded chest.
	next := chestItem()
	next.Contents = append(next.Contents, Item{Name: "gem", Type: TypeObject})
	items := []Item{next}
	s.Reapply(items)

	assert.Empty(t, items[0].Contents)
	s.Toggle(&items[0])
	require.Len(t, items[0].Contents, 3)
	assert.Equal(t, "gem", items[0].Contents[2].Name)
}

func TestExpandedSetReapplyNested(t *testing.T) {
	s := NewExpandedSet()
	item := chestItem()
	box := &item.Contents[1]
	s.Toggle(box)

	state := &WorldState{Inventory: []Item{chestItem()}}
	s.ReapplyState(state)

	assert.Len(t, state.Inventory[0].Contents, 2)
	assert.Empty(t, state.Inventory[0].Contents[1].Contents)
	assert.True(t, s.Names().Has("box"))
}

func TestFind(t *testing.T) {
	door := &Item{Name: "door", Type: TypeDoor, OCL: StateClosed}
	state := &WorldState{
		Rooms:       []Room{{Name: "Hall", Items: []Item{chestItem()}}},
		Inventory:   []Item{{Name: "lamp"}},
		Connections: []Connection{{Src: "Hall", Dest: "Yard", Door: door}},
	}

	require.NotNil(t, Find(state, "ring"))
	assert.Equal(t, "ring", Find(state, "ring").Name)
	assert.Equal(t, "lamp", Find(state, "lamp").Name)
	assert.Same(t, door, Find(state, "door"))
	assert.Nil(t, Find(state, "ghost"))
	assert.Nil(t, Find(nil, "ring"))
}
