package worldviewer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrNoState is returned when there is nothing to render yet.
var ErrNoState = errors.New("no world state")

// Scene is the complete geometry of one render pass.
type Scene struct {
	Rooms     []RoomBox
	Edges     []Edge
	Inventory *InventoryPanel
	// Bounds encloses every room box and door label.
	Bounds    Rect
	View      Size
	Transform Transform

	History   string
	Objective string
	Command   string
}

// Renderer is the render context. It carries everything that outlives a
// single pass: the toggled items, the viewport and the measuring and
// labelling capabilities.
type Renderer struct {
	expanded *ExpandedSet
	viewport *Viewport
	measurer Measurer
	labels   *Labeler
	icons    IconSet
	fallback bool
	logger   *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithMeasurer sets the capability used to size boxes.
func WithMeasurer(m Measurer) RendererOption {
	return func(r *Renderer) {
		r.measurer = m
	}
}

// WithLabeler sets the labeler used for item labels and headings.
func WithLabeler(l *Labeler) RendererOption {
	return func(r *Renderer) {
		r.labels = l
	}
}

// WithIconBase sets the template path icon URLs are resolved against.
func WithIconBase(base string) RendererOption {
	return func(r *Renderer) {
		r.icons = IconSet{BasePath: base}
	}
}

// WithGridDirectionFallback lets the router derive a connection's direction
// from grid positions when the adjacency facts leave it undetermined.
func WithGridDirectionFallback(enable bool) RendererOption {
	return func(r *Renderer) {
		r.fallback = enable
	}
}

// WithRendererLogger sets the logger for render warnings.
func WithRendererLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = l
	}
}

// NewRenderer creates a render context.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		expanded: NewExpandedSet(),
		viewport: NewViewport(),
		measurer: DefaultMeasurer(),
		labels:   NewLabeler("", "en"),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expanded returns the toggled-item state.
func (r *Renderer) Expanded() *ExpandedSet { return r.expanded }

// Viewport returns the pan/zoom controller.
func (r *Renderer) Viewport() *Viewport { return r.viewport }

// Icons returns the icon URL resolver.
func (r *Renderer) Icons() IconSet { return r.icons }

// Labels returns the labeler.
func (r *Renderer) Labels() *Labeler { return r.labels }

// Render lays out state for a view of the given size. Icon and geometry
// errors abort the pass; nothing partial is returned.
func (r *Renderer) Render(state *WorldState, view Size) (*Scene, error) {
	if state == nil {
		return nil, ErrNoState
	}

	inv, err := LayoutInventory(state.Inventory, r.expanded, r.labels, r.measurer)
	if err != nil {
		return nil, err
	}

	rooms, err := LayoutRooms(state.Rooms, r.expanded, r.labels, r.measurer)
	if err != nil {
		return nil, err
	}

	router := Router{Labels: r.labels, Measurer: r.measurer, GridFallback: r.fallback}
	edges, err := router.Route(rooms, state.Connections)
	if err != nil {
		return nil, err
	}

	var bounds Rect
	for _, room := range rooms {
		bounds = bounds.Union(room.Rect)
	}
	for _, e := range edges {
		if e.Door != nil {
			bounds = bounds.Union(e.Door.Rect)
		}
		if e.Impossible {
			r.logger.Warn("connection cannot be drawn side to side",
				"src", e.Src, "dest", e.Dest, "dir", string(e.Dir))
		}
	}

	return &Scene{
		Rooms:     rooms,
		Edges:     edges,
		Inventory: inv,
		Bounds:    bounds,
		View:      view,
		Transform: r.viewport.Frame(bounds, view),
		History:   state.History,
		Objective: state.Objective,
		Command:   state.Command,
	}, nil
}

// Toggle flips the expansion of the item named name in state.
func (r *Renderer) Toggle(state *WorldState, name string) (bool, error) {
	item := Find(state, name)
	if item == nil {
		return false, fmt.Errorf("toggle %q: item not found", name)
	}
	if len(item.Contents) == 0 && !r.expanded.Has(name) {
		return false, fmt.Errorf("toggle %q: nothing to expand", name)
	}
	return r.expanded.Toggle(item), nil
}
