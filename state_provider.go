package worldviewer

// StateProvider provides a WorldState snapshot: the bootstrap state at
// start and, when the viewer polls, every later one.
type StateProvider interface {
	// GetWorldState returns the current world snapshot.
	GetWorldState() (*WorldState, error)
}

// StaticStateProvider wraps a fixed WorldState.
type StaticStateProvider struct {
	state *WorldState
}

// NewStaticStateProvider creates a StateProvider from a fixed WorldState.
func NewStaticStateProvider(state *WorldState) *StaticStateProvider {
	return &StaticStateProvider{state: state}
}

// GetWorldState implements StateProvider.
func (p *StaticStateProvider) GetWorldState() (*WorldState, error) {
	return p.state.Clone(), nil
}

// CallbackStateProvider calls a function to get state.
type CallbackStateProvider struct {
	fn func() (*WorldState, error)
}

// NewCallbackStateProvider creates a StateProvider from a callback function.
func NewCallbackStateProvider(fn func() (*WorldState, error)) *CallbackStateProvider {
	return &CallbackStateProvider{fn: fn}
}

// GetWorldState implements StateProvider.
func (p *CallbackStateProvider) GetWorldState() (*WorldState, error) {
	return p.fn()
}

// EmbeddedStateProvider decodes the quote-escaped snapshot a host page
// embeds in an attribute.
type EmbeddedStateProvider struct {
	payload string
}

// NewEmbeddedStateProvider creates a StateProvider from an escaped payload.
func NewEmbeddedStateProvider(payload string) *EmbeddedStateProvider {
	return &EmbeddedStateProvider{payload: payload}
}

// GetWorldState implements StateProvider.
func (p *EmbeddedStateProvider) GetWorldState() (*WorldState, error) {
	return DecodeEmbedded(p.payload)
}
