package worldviewer

import "github.com/zyedidia/generic/mapset"

// ExpandedSet records the items the user has toggled. Each entry holds the
// contents that were hidden when the item was folded, keyed by item name.
// It is local UI state and never leaves the viewer.
type ExpandedSet struct {
	saved map[string][]Item
}

// NewExpandedSet returns an empty set.
func NewExpandedSet() *ExpandedSet {
	return &ExpandedSet{saved: make(map[string][]Item)}
}

// Has reports whether the item named name has been toggled.
func (s *ExpandedSet) Has(name string) bool {
	if s == nil || name == "" {
		return false
	}
	_, ok := s.saved[name]
	return ok
}

// Len returns the number of toggled items.
func (s *ExpandedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.saved)
}

// Names returns the set of toggled item names.
func (s *ExpandedSet) Names() mapset.Set[string] {
	names := mapset.New[string]()
	if s == nil {
		return names
	}
	for name := range s.saved {
		names.Put(name)
	}
	return names
}

// Toggle flips the item. A toggled item gets its saved contents back and
// leaves the set; any other item has its contents saved and emptied. It
// reports whether the item is now in the set. Unnamed items cannot be
// toggled.
func (s *ExpandedSet) Toggle(item *Item) bool {
	if item.Name == "" {
		return false
	}
	if saved, ok := s.saved[item.Name]; ok {
		item.Contents = saved
		delete(s.saved, item.Name)
		return false
	}
	s.saved[item.Name] = cloneItems(item.Contents)
	item.Contents = []Item{}
	return true
}

// Reapply folds the freshly pushed contents of every toggled item found in
// items, so that a new snapshot keeps the user's choices. The saved copy is
// refreshed with the new contents.
func (s *ExpandedSet) Reapply(items []Item) {
	if s.Len() == 0 {
		return
	}
	for n := range items {
		item := &items[n]
		s.Reapply(item.Contents)
		if !s.Has(item.Name) {
			continue
		}
		s.saved[item.Name] = cloneItems(item.Contents)
		item.Contents = []Item{}
	}
}

// ReapplyState runs Reapply over every item list of the snapshot.
func (s *ExpandedSet) ReapplyState(state *WorldState) {
	if state == nil {
		return
	}
	for n := range state.Rooms {
		s.Reapply(state.Rooms[n].Items)
	}
	s.Reapply(state.Inventory)
}

// Find locates the item named name anywhere in the snapshot, including
// nested contents and doors.
func Find(state *WorldState, name string) *Item {
	if state == nil || name == "" {
		return nil
	}
	for n := range state.Rooms {
		if item := findItem(state.Rooms[n].Items, name); item != nil {
			return item
		}
	}
	if item := findItem(state.Inventory, name); item != nil {
		return item
	}
	for n := range state.Connections {
		if door := state.Connections[n].Door; door != nil && door.Name == name {
			return door
		}
	}
	return nil
}

func findItem(items []Item, name string) *Item {
	for n := range items {
		if items[n].Name == name {
			return &items[n]
		}
		if item := findItem(items[n].Contents, name); item != nil {
			return item
		}
	}
	return nil
}
