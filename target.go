package worldviewer

import "context"

// Frame is the outcome of one render pass.
type Frame struct {
	// Seq increases with every render.
	Seq   uint64
	State *WorldState
	// Scene is the last successfully rendered scene. When Err is set it
	// belongs to an earlier state.
	Scene *Scene
	Err   error
}

// Target represents a visualization output destination.
type Target interface {
	// Update sends a new frame to the target.
	Update(ctx context.Context, frame *Frame) error

	// Close cleans up the target.
	Close() error

	// Name returns a descriptive name for logging.
	Name() string
}

// Controller accepts the local UI input a target collects from its users.
type Controller interface {
	Toggle(ctx context.Context, item string) error
	Resize(ctx context.Context, view Size) error
	SetTransform(ctx context.Context, t Transform) error
	Frame() *Frame
}

// controllable is implemented by targets that forward user input.
type controllable interface {
	bind(c Controller)
}
