package worldviewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	content := Rect{Min: Point{X: -100, Y: -50}, Size: Size{W: 900, H: 400}}
	tf := Fit(content, Size{W: 500, H: 1000})
	// Width is the binding side: 500 / (900 + 100).
	assert.Equal(t, 0.5, tf.K)
	assert.Equal(t, FitMargin+50, tf.X)
	assert.Equal(t, FitMargin+25, tf.Y)

	huge := Fit(Rect{Size: Size{W: 100000, H: 100000}}, Size{W: 100, H: 100})
	assert.Equal(t, MinScale, huge.K)

	tiny := Fit(Rect{Size: Size{W: 1, H: 1}}, Size{W: 2000, H: 2000})
	assert.Equal(t, MaxScale, tiny.K)
}

func TestViewportFitsOnce(t *testing.T) {
	v := NewViewport()
	assert.False(t, v.Fitted())

	first := v.Frame(Rect{Size: Size{W: 900, H: 900}}, Size{W: 1000, H: 1000})
	assert.True(t, v.Fitted())
	assert.Equal(t, 1.0, first.K)

	// Later content never refits.
	second := v.Frame(Rect{Min: Point{X: -5000}, Size: Size{W: 20000, H: 20000}}, Size{W: 100, H: 100})
	assert.Equal(t, first, second)
}

func TestViewportRefitsAfterResize(t *testing.T) {
	v := NewViewport()
	content := Rect{Size: Size{W: 900, H: 900}}

	v.Frame(content, Size{W: 1000, H: 1000})
	assert.True(t, v.Provisional())

	v.Resized()
	small := Size{W: 250, H: 250}
	assert.Equal(t, Fit(content, small), v.Frame(content, small))
	assert.False(t, v.Provisional())

	// Fixed now: a second resize does not refit.
	v.Resized()
	assert.Equal(t, Fit(content, small), v.Frame(content, Size{W: 2000, H: 2000}))
}

func TestViewportUserInputLocksFit(t *testing.T) {
	content := Rect{Size: Size{W: 900, H: 900}}

	v := NewViewport()
	v.Frame(content, Size{W: 1000, H: 1000})
	v.Pan(5, 5)
	assert.False(t, v.Provisional())
	panned := v.Transform()
	v.Resized()
	assert.Equal(t, panned, v.Frame(content, Size{W: 100, H: 100}))

	v = NewViewport()
	v.Frame(content, Size{W: 1000, H: 1000})
	v.Zoom(2, Point{})
	zoomed := v.Transform()
	v.Resized()
	assert.Equal(t, zoomed, v.Frame(content, Size{W: 100, H: 100}))
}

func TestViewportUserTransform(t *testing.T) {
	v := NewViewport()
	user := Transform{X: 12.5, Y: -7.25, K: 1.75}
	v.SetTransform(user)
	assert.True(t, v.Fitted())
	assert.Equal(t, user, v.Frame(Rect{Size: Size{W: 10, H: 10}}, Size{W: 100, H: 100}))

	v.SetTransform(Transform{K: 50})
	assert.Equal(t, MaxScale, v.Transform().K)
	v.SetTransform(Transform{K: 0.001})
	assert.Equal(t, MinScale, v.Transform().K)
	v.SetTransform(Transform{})
	assert.Equal(t, 1.0, v.Transform().K)
}

func TestViewportZoomPan(t *testing.T) {
	v := NewViewport()
	v.Zoom(2, Point{X: 100, Y: 100})
	tf := v.Transform()
	assert.Equal(t, 2.0, tf.K)
	// The point under the cursor stays in place.
	assert.Equal(t, Point{X: 100, Y: 100}, tf.Apply(Point{X: 100, Y: 100}))

	v.Pan(10, -10)
	assert.Equal(t, tf.X+10, v.Transform().X)
	assert.Equal(t, tf.Y-10, v.Transform().Y)

	v.Zoom(100, Point{})
	assert.Equal(t, MaxScale, v.Transform().K)

	v.Reset()
	assert.False(t, v.Fitted())
	assert.Equal(t, Identity, v.Transform())
}

func TestTransformSVG(t *testing.T) {
	assert.Equal(t, "translate(20,-30.5) scale(0.5)", Transform{X: 20, Y: -30.5, K: 0.5}.SVG())
}
