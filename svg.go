package worldviewer

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// HighlightColor is the background of highlighted rows and door labels.
const HighlightColor = "#ffffb2"

// painter writes markup and remembers the first write error.
type painter struct {
	w     io.Writer
	icons IconSet
	err   error
}

func (p *painter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func esc(s string) string {
	return html.EscapeString(s)
}

// PaintSVG writes the scene as an SVG document. Room and door boxes are
// XHTML tables inside foreignObject elements, sized to their measurement.
func PaintSVG(w io.Writer, scene *Scene, icons IconSet) error {
	p := &painter{w: w, icons: icons}
	p.printf(`<svg xmlns="http://www.w3.org/2000/svg" id="world" width="%g" height="%g">`, scene.View.W, scene.View.H)
	p.printf(`<g class="wrapper" transform="%s">`, scene.Transform.SVG())
	for n := range scene.Rooms {
		p.room(&scene.Rooms[n])
	}
	for n := range scene.Edges {
		p.edge(&scene.Edges[n])
	}
	p.printf(`</g></svg>`)
	return p.err
}

// PaintInventory writes the inventory panel as an HTML table.
func PaintInventory(w io.Writer, inv *InventoryPanel, icons IconSet) error {
	p := &painter{w: w, icons: icons}
	p.printf(`<table class="table table-hover" cellspacing="0">`)
	p.printf(`<thead class="thead-dark"><tr><th><b>%s</b></th></tr></thead><tbody>`, esc(inv.Box.Title))
	p.rows(inv.Box.Items, -1)
	p.printf(`</tbody></table>`)
	return p.err
}

func (p *painter) room(rb *RoomBox) {
	tableClass, headClass := "table room-table table-hover", "thead-room"
	if rb.Current {
		tableClass += " current-room"
		headClass += " current-room-head"
	}
	p.printf(`<g class="node" id="%s" transform="translate(%g,%g)">`, esc(rb.Room.Name), rb.Rect.Min.X, rb.Rect.Min.Y)
	p.printf(`<foreignObject width="%g" height="%g"><div xmlns="http://www.w3.org/1999/xhtml">`, rb.Rect.Size.W, rb.Rect.Size.H)
	p.printf(`<table class="%s" cellspacing="0">`, tableClass)
	p.printf(`<thead class="%s"><tr><th class="room-name"><b class="text">%s</b></th></tr></thead><tbody>`, headClass, esc(rb.Box.Title))
	p.rows(rb.Box.Items, -1)
	p.printf(`</tbody></table></div></foreignObject></g>`)
}

func (p *painter) rows(t *ItemTree, parent int) {
	if t == nil {
		return
	}
	for _, i := range t.Children(parent) {
		row := t.Rows[i]
		p.printf(`<tr class="item" data-item="%s"`, esc(row.Name))
		if row.Highlight {
			p.printf(` bgcolor="%s"`, HighlightColor)
		}
		p.printf(`><td class="item-text"><div class="col-container"><div class="col-container-left">`)
		p.printf(`<img class="icon" src="%s"/><span class="item-span">%s`, esc(p.icons.URL(row.Icon)), esc(row.Label))
		if row.Anchor {
			p.printf(`<img class="anchor" src="%s"/>`, esc(p.icons.URL(IconAnchor)))
		}
		p.printf(`</span></div>`)
		if row.Chevron {
			class := "anchor"
			if row.Rotated {
				class += " rotate"
			}
			p.printf(`<div class="col-container-right"><img class="%s" src="%s"/></div>`, class, esc(p.icons.URL(IconChevron)))
		}
		p.printf(`</div>`)
		if t.HasChildTable(i) {
			p.printf(`<table class="child-table"><tbody>`)
			p.rows(t, i)
			p.printf(`</tbody></table>`)
		}
		p.printf(`</td></tr>`)
	}
}

func (p *painter) edge(e *Edge) {
	class := "edgePath"
	dash := ""
	if e.Impossible {
		class += " impossible"
		dash = ` stroke-dasharray="8,6"`
	}
	p.printf(`<g class="edgeWrapper" data-src="%s" data-dest="%s">`, esc(e.Src), esc(e.Dest))
	p.printf(`<line class="%s" x1="%g" y1="%g" x2="%g" y2="%g" fill="black" stroke="black"%s/>`,
		class, e.From.X, e.From.Y, e.To.X, e.To.Y, dash)
	if d := e.Door; d != nil {
		bg := ""
		if d.Highlight {
			bg = HighlightColor
		}
		p.printf(`<g transform="translate(%g,%g)">`, d.Rect.Min.X, d.Rect.Min.Y)
		p.printf(`<foreignObject width="%g" height="%g"><div xmlns="http://www.w3.org/1999/xhtml" class="label-container">`, d.Rect.Size.W, d.Rect.Size.H)
		p.printf(`<table class="table table-door" bgcolor="white" cellspacing="0"><tr class="door-row" bgcolor="%s"><td class="door-inner">`, bg)
		p.printf(`<span class="door-span">%s</span>`, esc(d.Label))
		for _, icon := range d.Box.Icons {
			p.printf(`<img class="icon door-img-icon" width="25" src="%s"/>`, esc(p.icons.URL(icon)))
		}
		p.printf(`</td></tr></table></div></foreignObject></g>`)
	}
	p.printf(`</g>`)
}

// RenderSVG paints the scene into a string.
func RenderSVG(scene *Scene, icons IconSet) (string, error) {
	var b strings.Builder
	if err := PaintSVG(&b, scene, icons); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderInventory paints the inventory panel into a string.
func RenderInventory(inv *InventoryPanel, icons IconSet) (string, error) {
	var b strings.Builder
	if inv == nil {
		return "", nil
	}
	if err := PaintInventory(&b, inv, icons); err != nil {
		return "", err
	}
	return b.String(), nil
}
