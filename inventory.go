package worldviewer

import "fmt"

// InventoryTitle is the heading of the inventory panel.
const InventoryTitle = "Inventory:"

// InventoryPanel is the player's carried items, laid out on its own
// surface independent of the room graph.
type InventoryPanel struct {
	Box  Box
	Rect Rect
}

// LayoutInventory builds and measures the inventory panel. The panel sits
// at its own origin.
func LayoutInventory(items []Item, expanded *ExpandedSet, labels *Labeler, m Measurer) (*InventoryPanel, error) {
	tree, err := BuildItemTree(items, expanded, labels)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	p := &InventoryPanel{Box: Box{Kind: BoxInventory, Title: labels.Get(InventoryTitle), Items: tree}}
	size, err := measureBox(&p.Box, m)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	p.Rect = Rect{Size: size}
	return p, nil
}
