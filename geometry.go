package worldviewer

import "math"

// Pixel distance between neighbouring grid cells. Y is negative so that
// north is drawn above south.
const (
	SpreadX = 500
	SpreadY = -500
)

// Point is a pixel position.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a measured width and height in pixels.
type Size struct {
	W, H float64
}

// Valid reports whether both dimensions are finite and positive.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0 && !math.IsInf(s.W, 0) && !math.IsInf(s.H, 0)
}

// Half returns the size halved, as an offset from a centre.
func (s Size) Half() Point {
	return Point{X: s.W / 2, Y: s.H / 2}
}

// Rect is an axis-aligned box described by its top-left corner and size.
type Rect struct {
	Min  Point
	Size Size
}

// RectAround returns the rect of the given size centred on c.
func RectAround(c Point, s Size) Rect {
	return Rect{Min: c.Sub(s.Half()), Size: s}
}

// Max returns the bottom-right corner.
func (r Rect) Max() Point {
	return Point{X: r.Min.X + r.Size.W, Y: r.Min.Y + r.Size.H}
}

// Center returns the centre of the rect.
func (r Rect) Center() Point {
	return r.Min.Add(r.Size.Half())
}

// Anchor returns the point on the rect's perimeter reached by moving from
// its centre in the given direction. The empty direction yields the centre.
func (r Rect) Anchor(d Direction) Point {
	return r.Center().Add(Shift(d, r.Size))
}

// OnPerimeter reports whether p lies on the boundary of r.
func (r Rect) OnPerimeter(p Point) bool {
	const eps = 1e-9
	hi := r.Max()
	inX := p.X >= r.Min.X-eps && p.X <= hi.X+eps
	inY := p.Y >= r.Min.Y-eps && p.Y <= hi.Y+eps
	if !inX || !inY {
		return false
	}
	return math.Abs(p.X-r.Min.X) < eps || math.Abs(p.X-hi.X) < eps ||
		math.Abs(p.Y-r.Min.Y) < eps || math.Abs(p.Y-hi.Y) < eps
}

// Union returns the smallest rect containing both r and o. A zero rect is
// treated as empty.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	rmax, omax := r.Max(), o.Max()
	lo := Point{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)}
	hi := Point{X: math.Max(rmax.X, omax.X), Y: math.Max(rmax.Y, omax.Y)}
	return Rect{Min: lo, Size: Size{W: hi.X - lo.X, H: hi.Y - lo.Y}}
}

// Direction is a compass direction between two rooms. The zero value means
// the direction could not be determined.
type Direction string

const (
	DirNone  Direction = ""
	DirNorth Direction = "n"
	DirSouth Direction = "s"
	DirEast  Direction = "e"
	DirWest  Direction = "w"
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirNorth:
		return DirSouth
	case DirSouth:
		return DirNorth
	case DirEast:
		return DirWest
	case DirWest:
		return DirEast
	default:
		return DirNone
	}
}

// ParseDirection accepts short codes, full names and TextWorld fact names
// such as "north_of".
func ParseDirection(s string) Direction {
	switch s {
	case "n", "north", "north_of":
		return DirNorth
	case "s", "south", "south_of":
		return DirSouth
	case "e", "east", "east_of":
		return DirEast
	case "w", "west", "west_of":
		return DirWest
	default:
		return DirNone
	}
}

// Shift returns the offset from a box centre to the middle of the box side
// facing d.
func Shift(d Direction, s Size) Point {
	switch d {
	case DirEast:
		return Point{X: s.W / 2}
	case DirWest:
		return Point{X: -s.W / 2}
	case DirNorth:
		return Point{Y: -s.H / 2}
	case DirSouth:
		return Point{Y: s.H / 2}
	default:
		return Point{}
	}
}

// GridToPixel maps a grid coordinate to the pixel centre of its room.
func GridToPixel(p GridPos) Point {
	return Point{X: float64(p.X() * SpreadX), Y: float64(p.Y() * SpreadY)}
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// GridDirection derives the direction from one grid position to another,
// preferring the horizontal axis.
func GridDirection(from, to GridPos) Direction {
	dx, dy := to.X()-from.X(), to.Y()-from.Y()
	switch {
	case dx > 0:
		return DirEast
	case dx < 0:
		return DirWest
	case dy > 0:
		return DirNorth
	case dy < 0:
		return DirSouth
	default:
		return DirNone
	}
}
