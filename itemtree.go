package worldviewer

import "fmt"

// ItemRow is one row of an item table.
type ItemRow struct {
	// Parent is the index of the row whose child table holds this row, or
	// -1 for a top-level row.
	Parent    int
	Depth     int
	Name      string
	Label     string
	Icon      Icon
	Chevron   bool
	Rotated   bool
	Anchor    bool
	Highlight bool
}

// ItemTree is a flattened item table. Rows are stored in pre-order, so the
// children of a row follow it.
type ItemTree struct {
	Rows []ItemRow
}

// BuildItemTree describes the table for items. Rows with contents, or rows
// the user has toggled, get a chevron and a nested child table.
func BuildItemTree(items []Item, expanded *ExpandedSet, labels *Labeler) (*ItemTree, error) {
	t := &ItemTree{}
	if err := t.add(items, -1, 0, expanded, labels); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *ItemTree) add(items []Item, parent, depth int, expanded *ExpandedSet, labels *Labeler) error {
	for n := range items {
		item := &items[n]
		icon, err := ResolveIcon(item)
		if err != nil {
			return fmt.Errorf("item row: %w", err)
		}
		toggled := expanded.Has(item.Name)
		expandable := len(item.Contents) > 0 || toggled
		t.Rows = append(t.Rows, ItemRow{
			Parent:    parent,
			Depth:     depth,
			Name:      item.Name,
			Label:     labels.ItemLabel(item),
			Icon:      icon,
			Chevron:   expandable,
			Rotated:   toggled,
			Anchor:    !item.Portable && !item.IsPlayer(),
			Highlight: item.Highlight,
		})
		if expandable {
			if err := t.add(item.Contents, len(t.Rows)-1, depth+1, expanded, labels); err != nil {
				return err
			}
		}
	}
	return nil
}

// Roots returns the indices of the top-level rows.
func (t *ItemTree) Roots() []int {
	return t.Children(-1)
}

// Children returns the indices of the rows in the child table of row i.
func (t *ItemTree) Children(i int) []int {
	var out []int
	for n := range t.Rows {
		if t.Rows[n].Parent == i {
			out = append(out, n)
		}
	}
	return out
}

// HasChildTable reports whether row i renders a nested table.
func (t *ItemTree) HasChildTable(i int) bool {
	return t.Rows[i].Chevron
}

// Len returns the number of rows.
func (t *ItemTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
