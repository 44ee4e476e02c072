package worldviewer

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// BoxKind tells what a box holds.
type BoxKind int

const (
	BoxRoom BoxKind = iota
	BoxInventory
	BoxDoor
)

func (k BoxKind) String() string {
	switch k {
	case BoxRoom:
		return "room"
	case BoxInventory:
		return "inventory"
	case BoxDoor:
		return "door"
	default:
		return fmt.Sprintf("BoxKind(%d)", int(k))
	}
}

// Box is the declarative content of a rendered rectangle: a title, optional
// inline icons and an optional item table. Its size is only known after
// measuring.
type Box struct {
	Kind  BoxKind
	Title string
	Icons []Icon
	Items *ItemTree
}

// Measurer reports the rendered size of a box.
type Measurer interface {
	Measure(b *Box) Size
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(b *Box) Size

// Measure implements Measurer.
func (f MeasureFunc) Measure(b *Box) Size {
	return f(b)
}

// TableMetrics are the fixed dimensions of the item table markup.
type TableMetrics struct {
	RowHeight    float64
	HeaderHeight float64
	IconSize     float64
	MarkerSize   float64
	Padding      float64
	Indent       float64
	Gap          float64
	MinWidth     float64
}

// DefaultTableMetrics matches the stylesheet shipped with the viewer.
var DefaultTableMetrics = TableMetrics{
	RowHeight:    25,
	HeaderHeight: 30,
	IconSize:     25,
	MarkerSize:   16,
	Padding:      8,
	Indent:       12,
	Gap:          4,
	MinWidth:     120,
}

// FontMeasurer sizes boxes from real glyph advances of a font face.
type FontMeasurer struct {
	mu      sync.Mutex
	face    font.Face
	metrics TableMetrics
}

// NewFontMeasurer measures text with face and lays tables out with m.
func NewFontMeasurer(face font.Face, m TableMetrics) *FontMeasurer {
	return &FontMeasurer{face: face, metrics: m}
}

// DefaultMeasurer uses the fixed 7x13 bitmap face.
func DefaultMeasurer() *FontMeasurer {
	return NewFontMeasurer(basicfont.Face7x13, DefaultTableMetrics)
}

// GoRegularMeasurer uses the Go regular OpenType face at the given point
// size.
func GoRegularMeasurer(size float64) (*FontMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return NewFontMeasurer(face, DefaultTableMetrics), nil
}

// TextWidth returns the advance of s in pixels.
func (m *FontMeasurer) TextWidth(s string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(font.MeasureString(m.face, s)) / 64
}

// Measure implements Measurer.
func (m *FontMeasurer) Measure(b *Box) Size {
	tm := m.metrics
	if b.Kind == BoxDoor {
		w := tm.Padding*2 + m.TextWidth(b.Title) + float64(len(b.Icons))*(tm.IconSize+tm.Gap)
		return Size{W: w, H: tm.RowHeight + tm.Padding}
	}

	w := m.TextWidth(b.Title) + tm.Padding*2
	h := tm.HeaderHeight
	if b.Items != nil {
		for _, row := range b.Items.Rows {
			rw := tm.Padding*2 + float64(row.Depth)*tm.Indent + tm.IconSize + tm.Gap + m.TextWidth(row.Label)
			if row.Anchor {
				rw += tm.MarkerSize + tm.Gap
			}
			if row.Chevron {
				rw += tm.MarkerSize + tm.Gap
			}
			if rw > w {
				w = rw
			}
			h += tm.RowHeight
		}
	}
	if w < tm.MinWidth {
		w = tm.MinWidth
	}
	return Size{W: w, H: h}
}
