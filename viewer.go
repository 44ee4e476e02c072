package worldviewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNotStarted is returned by input methods before Start.
var ErrNotStarted = errors.New("viewer not started")

// DefaultViewSize is assumed until a target reports the real viewport.
var DefaultViewSize = Size{W: 1280, H: 800}

// Viewer owns the world state and the render context and drives all
// targets. Snapshots and user input are applied one at a time on a single
// loop goroutine; every change triggers a full render.
type Viewer struct {
	mu       sync.RWMutex
	provider StateProvider
	source   Source
	targets  []Target
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	commands chan command
	last     *Frame

	renderer *Renderer
	logger   *slog.Logger

	// owned by the loop goroutine
	state *WorldState
	view  Size
	seq   uint64
	good  *Scene
}

type command struct {
	apply func() error
	reply chan error
}

// Option configures the Viewer.
type Option func(*Viewer)

// WithInterval makes the viewer poll its state provider at the given
// interval. Zero disables polling.
func WithInterval(d time.Duration) Option {
	return func(v *Viewer) {
		v.interval = d
	}
}

// WithRenderer sets the render context.
func WithRenderer(r *Renderer) Option {
	return func(v *Viewer) {
		v.renderer = r
	}
}

// WithLogger sets the viewer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Viewer) {
		v.logger = l
	}
}

// WithViewSize sets the viewport size used until a target reports one.
func WithViewSize(s Size) Option {
	return func(v *Viewer) {
		v.view = s
	}
}

// New creates a new Viewer with the given options.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		done:     make(chan struct{}),
		commands: make(chan command),
		view:     DefaultViewSize,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.renderer == nil {
		v.renderer = NewRenderer(WithRendererLogger(v.logger))
	}
	return v
}

// SetStateProvider sets the source of the bootstrap WorldState.
func (v *Viewer) SetStateProvider(p StateProvider) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.provider = p
}

// SetSource sets the stream of pushed snapshots.
func (v *Viewer) SetSource(s Source) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.source = s
}

// AddTarget adds an output target. Targets that collect user input are
// wired to the viewer.
func (v *Viewer) AddTarget(t Target) error {
	if c, ok := t.(controllable); ok {
		c.bind(v)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.targets = append(v.targets, t)
	return nil
}

// RemoveTarget removes a target by reference.
func (v *Viewer) RemoveTarget(t Target) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, target := range v.targets {
		if target == t {
			v.targets = append(v.targets[:i], v.targets[i+1:]...)
			return
		}
	}
}

// Renderer returns the render context.
func (v *Viewer) Renderer() *Renderer {
	return v.renderer
}

// Start loads the bootstrap state, renders it and begins processing
// snapshots and input.
func (v *Viewer) Start(ctx context.Context) error {
	v.mu.Lock()
	if v.cancel != nil {
		v.mu.Unlock()
		return fmt.Errorf("viewer already started")
	}
	ctx, v.cancel = context.WithCancel(ctx)
	provider, source := v.provider, v.source
	v.mu.Unlock()

	if provider != nil {
		state, err := provider.GetWorldState()
		if err != nil {
			v.abort()
			return fmt.Errorf("failed to get world state: %w", err)
		}
		v.replace(state)
	}

	var snapshots <-chan *WorldState
	if source != nil {
		ch, err := source.Subscribe(ctx)
		if err != nil {
			v.abort()
			return fmt.Errorf("subscribe: %w", err)
		}
		snapshots = Coalesce(ctx, ch)
	}

	if v.state != nil {
		if err := v.render(ctx); err != nil {
			v.logger.Warn("initial render", "error", err)
		}
	}

	go v.run(ctx, snapshots)
	return nil
}

func (v *Viewer) abort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancel()
	v.cancel = nil
}

func (v *Viewer) run(ctx context.Context, snapshots <-chan *WorldState) {
	defer close(v.done)

	var tick <-chan time.Time
	if v.interval > 0 && v.provider != nil {
		ticker := time.NewTicker(v.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-snapshots:
			if !ok {
				v.logger.Info("no further snapshots, keeping last state")
				snapshots = nil
				continue
			}
			v.replace(state)
			v.renderAndLog(ctx)
		case <-tick:
			state, err := v.provider.GetWorldState()
			if err != nil {
				v.logger.Warn("poll state provider", "error", err)
				continue
			}
			v.replace(state)
			v.renderAndLog(ctx)
		case c := <-v.commands:
			err := c.apply()
			if err == nil {
				v.renderAndLog(ctx)
			}
			c.reply <- err
		}
	}
}

// replace installs a new snapshot, folding items the user has toggled.
func (v *Viewer) replace(state *WorldState) {
	v.renderer.Expanded().ReapplyState(state)
	v.state = state
}

func (v *Viewer) renderAndLog(ctx context.Context) {
	if v.state == nil {
		return
	}
	if err := v.render(ctx); err != nil {
		v.logger.Warn("render", "error", err)
	}
}

// render runs a full render pass and sends the frame to every target.
func (v *Viewer) render(ctx context.Context) error {
	// Targets read the frame concurrently; it must not share memory with
	// the state input keeps mutating.
	state := v.state.Clone()
	scene, err := v.renderer.Render(state, v.view)
	v.seq++
	frame := &Frame{Seq: v.seq, State: state, Scene: scene, Err: err}
	if err != nil {
		frame.Scene = v.good
	} else {
		v.good = scene
	}

	v.mu.Lock()
	v.last = frame
	targets := make([]Target, len(v.targets))
	copy(targets, v.targets)
	v.mu.Unlock()

	var g errgroup.Group
	for _, target := range targets {
		target := target
		g.Go(func() error {
			if err := target.Update(ctx, frame); err != nil {
				return fmt.Errorf("target %s: %w", target.Name(), err)
			}
			return nil
		})
	}
	if gerr := g.Wait(); gerr != nil {
		return errors.Join(err, gerr)
	}
	return err
}

// do runs fn on the loop goroutine and waits for it to finish.
func (v *Viewer) do(ctx context.Context, fn func() error) error {
	v.mu.RLock()
	started := v.cancel != nil
	v.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	c := command{apply: fn, reply: make(chan error, 1)}
	select {
	case v.commands <- c:
	case <-v.done:
		return ErrNotStarted
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Update triggers an immediate re-render of the current state.
func (v *Viewer) Update(ctx context.Context) error {
	return v.do(ctx, func() error { return nil })
}

// Push replaces the world state with a new snapshot.
func (v *Viewer) Push(ctx context.Context, state *WorldState) error {
	if state == nil {
		return ErrNoState
	}
	return v.do(ctx, func() error {
		v.replace(state)
		return nil
	})
}

// Toggle implements Controller.
func (v *Viewer) Toggle(ctx context.Context, item string) error {
	return v.do(ctx, func() error {
		_, err := v.renderer.Toggle(v.state, item)
		return err
	})
}

// Resize implements Controller.
func (v *Viewer) Resize(ctx context.Context, view Size) error {
	if !view.Valid() {
		return fmt.Errorf("resize to %gx%g: invalid size", view.W, view.H)
	}
	return v.do(ctx, func() error {
		v.view = view
		v.renderer.Viewport().Resized()
		return nil
	})
}

// SetTransform implements Controller.
func (v *Viewer) SetTransform(ctx context.Context, t Transform) error {
	return v.do(ctx, func() error {
		v.renderer.Viewport().SetTransform(t)
		return nil
	})
}

// Frame implements Controller. It returns the most recent frame.
func (v *Viewer) Frame() *Frame {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.last
}

// Stop stops processing and waits for the loop to exit.
func (v *Viewer) Stop() {
	v.mu.Lock()
	cancel := v.cancel
	v.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-v.done
}

// Close stops the viewer and closes all targets.
func (v *Viewer) Close() error {
	v.Stop()

	v.mu.Lock()
	targets := v.targets
	v.targets = nil
	v.mu.Unlock()

	var lastErr error
	for _, target := range targets {
		if err := target.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
