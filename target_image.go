package worldviewer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ImageTarget writes every rendered scene to a PNG file, for dashboards and
// headless snapshots.
type ImageTarget struct {
	mu             sync.Mutex
	path           string
	lastImageBytes []byte // Cache to avoid redundant writes
	view           Size
}

// ImageOption configures an ImageTarget.
type ImageOption func(*ImageTarget)

// WithImageSize renders at a fixed size instead of the viewer's viewport.
func WithImageSize(s Size) ImageOption {
	return func(t *ImageTarget) {
		t.view = s
	}
}

// NewImageTarget creates a target writing PNG images to path.
func NewImageTarget(path string, opts ...ImageOption) (*ImageTarget, error) {
	if path == "" {
		return nil, fmt.Errorf("image target: empty path")
	}
	target := &ImageTarget{path: path}
	for _, opt := range opts {
		opt(target)
	}
	return target, nil
}

// Name implements Target.
func (t *ImageTarget) Name() string {
	return fmt.Sprintf("ImageTarget(%s)", t.path)
}

// Update implements Target.
func (t *ImageTarget) Update(ctx context.Context, frame *Frame) error {
	if frame.Scene == nil {
		return nil
	}
	scene := frame.Scene
	if t.view.Valid() {
		s := *scene
		s.View = t.view
		scene = &s
	}

	data, err := EncodePNG(scene)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Skip if image hasn't changed
	if bytes.Equal(data, t.lastImageBytes) {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), ".worldviewer-*.png")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace image: %w", err)
	}
	t.lastImageBytes = data
	return nil
}

// Close implements Target.
func (t *ImageTarget) Close() error {
	return nil
}
