package worldviewer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var (
	colorBackground  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorRoom        = color.RGBA{0xf2, 0xf2, 0xf2, 0xff}
	colorCurrentRoom = color.RGBA{0xd9, 0xf2, 0xd0, 0xff}
	colorBorder      = color.RGBA{0x55, 0x55, 0x55, 0xff}
	colorHighlight   = color.RGBA{0xff, 0xff, 0xb2, 0xff}
	colorEdge        = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colorImpossible  = color.RGBA{0xcc, 0x33, 0x33, 0xff}
	colorText        = color.RGBA{0x11, 0x11, 0x11, 0xff}
)

// Rasterize draws a scene into an image of the scene's view size, applying
// the scene's transform. Icons are not drawn; rows show their labels only.
func Rasterize(scene *Scene) *image.RGBA {
	w, h := int(math.Ceil(scene.View.W)), int(math.Ceil(scene.View.H))
	if w < 1 || h < 1 {
		w, h = int(DefaultViewSize.W), int(DefaultViewSize.H)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	tf := scene.Transform
	for _, e := range scene.Edges {
		c := colorEdge
		if e.Impossible {
			c = colorImpossible
		}
		strokeLine(img, tf.Apply(e.From), tf.Apply(e.To), 2, c)
	}
	for n := range scene.Rooms {
		rb := &scene.Rooms[n]
		fill := colorRoom
		if rb.Current {
			fill = colorCurrentRoom
		}
		r := screenRect(tf, rb.Rect)
		fillRect(img, r, fill)
		strokeRect(img, r, colorBorder)
		drawText(img, r.Min.X+8, r.Min.Y+18, rb.Box.Title)
		drawRows(img, tf, rb)
	}
	for _, e := range scene.Edges {
		if e.Door == nil {
			continue
		}
		fill := colorBackground
		if e.Door.Highlight {
			fill = colorHighlight
		}
		r := screenRect(tf, e.Door.Rect)
		fillRect(img, r, fill)
		strokeRect(img, r, colorBorder)
		drawText(img, r.Min.X+6, r.Min.Y+r.Dy()/2+4, e.Door.Label)
	}
	return img
}

func drawRows(img *image.RGBA, tf Transform, rb *RoomBox) {
	if rb.Box.Items == nil {
		return
	}
	tm := DefaultTableMetrics
	for n, row := range rb.Box.Items.Rows {
		y := rb.Rect.Min.Y + tm.HeaderHeight + float64(n)*tm.RowHeight
		x := rb.Rect.Min.X + tm.Padding + float64(row.Depth)*tm.Indent
		top := tf.Apply(Point{X: rb.Rect.Min.X, Y: y})
		if row.Highlight {
			bottom := tf.Apply(Point{X: rb.Rect.Max().X, Y: y + tm.RowHeight})
			fillRect(img, image.Rect(int(top.X)+1, int(top.Y), int(bottom.X)-1, int(bottom.Y)), colorHighlight)
		}
		p := tf.Apply(Point{X: x, Y: y})
		label := row.Label
		if row.Chevron {
			label = "> " + label
		}
		drawText(img, int(p.X), int(p.Y)+16, label)
	}
}

func screenRect(tf Transform, r Rect) image.Rectangle {
	a, b := tf.Apply(r.Min), tf.Apply(r.Max())
	return image.Rect(int(math.Floor(a.X)), int(math.Floor(a.Y)), int(math.Ceil(b.X)), int(math.Ceil(b.Y)))
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// strokeLine draws a segment of the given width as a filled quad.
func strokeLine(img *image.RGBA, a, b Point, width float64, c color.Color) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	bounds := img.Bounds()
	if math.Max(a.X, b.X) < 0 || math.Max(a.Y, b.Y) < 0 ||
		math.Min(a.X, b.X) > float64(bounds.Dx()) || math.Min(a.Y, b.Y) > float64(bounds.Dy()) {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	z.ClosePath()
	z.Draw(img, bounds, image.NewUniform(c), image.Point{})
}

func drawText(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// EncodePNG rasterizes a scene and encodes it as PNG.
func EncodePNG(scene *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Rasterize(scene)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
