package worldviewer

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterize(t *testing.T) {
	scene, err := NewRenderer().Render(sampleState(), Size{W: 1600, H: 1000})
	require.NoError(t, err)

	img := Rasterize(scene)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 1000, img.Bounds().Dy())

	// Below the last row the current room shows its fill colour.
	corner := scene.Transform.Apply(scene.Rooms[0].Rect.Max())
	assert.Equal(t, colorCurrentRoom, img.RGBAAt(int(corner.X)-3, int(corner.Y)-3))
	yard := scene.Transform.Apply(scene.Rooms[1].Rect.Max())
	assert.Equal(t, colorRoom, img.RGBAAt(int(yard.X)-3, int(yard.Y)-3))
	assert.Equal(t, colorBackground, img.RGBAAt(1, 1))

	empty := Rasterize(&Scene{})
	assert.Equal(t, int(DefaultViewSize.W), empty.Bounds().Dx())
}

func TestImageTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.png")
	target, err := NewImageTarget(path, WithImageSize(Size{W: 200, H: 100}))
	require.NoError(t, err)
	assert.Contains(t, target.Name(), "world.png")

	scene, err := NewRenderer().Render(sampleState(), DefaultViewSize)
	require.NoError(t, err)
	require.NoError(t, target.Update(context.Background(), &Frame{Seq: 1, Scene: scene}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
	// The scene passed in keeps its own view.
	assert.Equal(t, DefaultViewSize, scene.View)

	// Unchanged frames are not rewritten.
	require.NoError(t, os.Remove(path))
	require.NoError(t, target.Update(context.Background(), &Frame{Seq: 2, Scene: scene}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Frames without a scene are ignored.
	require.NoError(t, target.Update(context.Background(), &Frame{Seq: 3}))

	_, err = NewImageTarget("")
	assert.Error(t, err)
}
