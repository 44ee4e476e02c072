package worldviewer

import (
	"fmt"
	"math"
)

// Zoom limits and fit constants.
const (
	MinScale   = 0.1
	MaxScale   = 3.0
	FitMargin  = 20.0
	FitPadding = 100.0
)

// Transform is a pan/zoom transform: screen = world*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to screen coordinates.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// SVG renders the transform as an SVG transform attribute value.
func (t Transform) SVG() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

func clampScale(k float64) float64 {
	if math.IsNaN(k) || k <= 0 {
		return 1
	}
	return math.Min(MaxScale, math.Max(MinScale, k))
}

type fitState int

const (
	fitNone fitState = iota
	// fitted against an assumed view size
	fitProvisional
	// fitted against a reported size, or set by the user
	fitFixed
)

// Viewport owns the pan/zoom transform. The first render fits the content
// provisionally; once a real view size is reported the fit is redone once
// and kept. Any user transform locks the current transform in.
type Viewport struct {
	state     fitState
	reported  bool
	transform Transform
}

// NewViewport returns an uninitialized viewport.
func NewViewport() *Viewport {
	return &Viewport{transform: Identity}
}

// Fitted reports whether the viewport holds a transform, provisional or not.
func (v *Viewport) Fitted() bool {
	return v.state != fitNone
}

// Provisional reports whether the current fit still waits for a real
// view size.
func (v *Viewport) Provisional() bool {
	return v.state == fitProvisional
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform {
	return v.transform
}

// Resized records that the view size now comes from a real display. A
// provisional fit is redone on the next Frame.
func (v *Viewport) Resized() {
	v.reported = true
}

// Frame returns the transform for a render pass over content shown in a
// view of the given size.
func (v *Viewport) Frame(content Rect, view Size) Transform {
	switch {
	case v.state == fitFixed:
		return v.transform
	case v.state == fitProvisional && !v.reported:
		return v.transform
	}
	v.transform = Fit(content, view)
	v.state = fitProvisional
	if v.reported {
		v.state = fitFixed
	}
	return v.transform
}

// Fit scales content to fit in view and moves its top-left corner to the
// fit margin.
func Fit(content Rect, view Size) Transform {
	wr := view.W / (content.Size.W + FitPadding)
	hr := view.H / (content.Size.H + FitPadding)
	k := clampScale(math.Min(wr, hr))
	return Transform{
		X: FitMargin - content.Min.X*k,
		Y: FitMargin - content.Min.Y*k,
		K: k,
	}
}

// SetTransform replaces the transform, clamping the scale. Setting a
// transform counts as initialization.
func (v *Viewport) SetTransform(t Transform) {
	t.K = clampScale(t.K)
	v.transform = t
	v.state = fitFixed
}

// Zoom multiplies the scale by factor keeping the screen point at fixed.
func (v *Viewport) Zoom(factor float64, at Point) {
	t := v.transform
	k := clampScale(t.K * factor)
	// world point under the cursor stays put
	wx, wy := (at.X-t.X)/t.K, (at.Y-t.Y)/t.K
	v.transform = Transform{X: at.X - wx*k, Y: at.Y - wy*k, K: k}
	v.state = fitFixed
}

// Pan moves the view by a screen-space offset.
func (v *Viewport) Pan(dx, dy float64) {
	v.transform.X += dx
	v.transform.Y += dy
	v.state = fitFixed
}

// Reset forgets the transform so the next render fits again.
func (v *Viewport) Reset() {
	v.state = fitNone
	v.transform = Identity
}
