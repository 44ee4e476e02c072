package worldviewer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan *WorldState) (*WorldState, bool) {
	t.Helper()
	select {
	case s, ok := <-ch:
		return s, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil, false
	}
}

func TestSSESource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"command\":\"first\"}\n\n")
		fmt.Fprint(w, "data: not json\n\n")
		fmt.Fprint(w, "data: {\"command\":\"second\"}\n\n")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewSSESource(srv.URL).Subscribe(ctx)
	require.NoError(t, err)

	s, ok := receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, "first", s.Command)

	// The malformed event is dropped.
	s, ok = receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, "second", s.Command)

	_, ok = receive(t, ch)
	assert.False(t, ok)
}

func TestSSESourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewSSESource(srv.URL, WithHTTPClient(srv.Client())).Subscribe(context.Background())
	assert.Error(t, err)
}

func TestCoalesceKeepsLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan *WorldState)
	out := Coalesce(ctx, in)
	for _, cmd := range []string{"a", "b", "c"} {
		in <- &WorldState{Command: cmd}
	}
	close(in)

	s, ok := receive(t, out)
	require.True(t, ok)
	assert.Equal(t, "c", s.Command)

	_, ok = receive(t, out)
	assert.False(t, ok)
}

func TestCoalescePassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan *WorldState)
	ch, err := ChanSource(in).Subscribe(ctx)
	require.NoError(t, err)
	out := Coalesce(ctx, ch)
	for _, cmd := range []string{"a", "b"} {
		in <- &WorldState{Command: cmd}
		s, ok := receive(t, out)
		require.True(t, ok)
		assert.Equal(t, cmd, s.Command)
	}
}

func TestStateProviders(t *testing.T) {
	state := sampleState()
	p := NewStaticStateProvider(state)
	got, err := p.GetWorldState()
	require.NoError(t, err)
	assert.Equal(t, state, got)
	assert.NotSame(t, state, got)

	calls := 0
	cb := NewCallbackStateProvider(func() (*WorldState, error) {
		calls++
		return state, nil
	})
	_, err = cb.GetWorldState()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
