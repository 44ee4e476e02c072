package worldviewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Source delivers full WorldState snapshots to a single consumer, in the
// order they were received. The channel is closed when no further updates
// will come.
type Source interface {
	Subscribe(ctx context.Context) (<-chan *WorldState, error)
}

// ChanSource adapts an in-process channel to Source.
type ChanSource <-chan *WorldState

// Subscribe implements Source.
func (c ChanSource) Subscribe(ctx context.Context) (<-chan *WorldState, error) {
	return c, nil
}

// SSESource subscribes to a server-sent event stream whose messages are
// WorldState documents. It does not reconnect: when the stream ends the
// last snapshot stays on display.
type SSESource struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// SourceOption configures an SSESource.
type SourceOption func(*SSESource)

// WithHTTPClient sets the client used to open the stream.
func WithHTTPClient(c *http.Client) SourceOption {
	return func(s *SSESource) {
		s.client = c
	}
}

// WithSourceLogger sets the logger for stream diagnostics.
func WithSourceLogger(l *slog.Logger) SourceOption {
	return func(s *SSESource) {
		s.logger = l
	}
}

// NewSSESource creates a source reading from url.
func NewSSESource(url string, opts ...SourceOption) *SSESource {
	s := &SSESource{
		url:    url,
		client: http.DefaultClient,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe implements Source.
func (s *SSESource) Subscribe(ctx context.Context) (<-chan *WorldState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", s.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("subscribe %s: status %d", s.url, resp.StatusCode)
	}

	out := make(chan *WorldState)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		err := ReadEvents(resp.Body, func(ev Event) error {
			state, err := DecodeSnapshot([]byte(ev.Data))
			if err != nil {
				s.logger.Warn("dropping malformed snapshot", "id", ev.ID, "error", err)
				return nil
			}
			select {
			case out <- state:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		switch {
		case err == nil:
			s.logger.Info("snapshot stream closed", "url", s.url)
		case errors.Is(err, context.Canceled):
		default:
			s.logger.Warn("snapshot stream failed", "url", s.url, "error", err)
		}
	}()
	return out, nil
}

// Coalesce forwards snapshots from in, keeping only the newest one while
// the consumer is busy. Renders are projections of the current state, so
// superseded snapshots carry nothing worth drawing.
func Coalesce(ctx context.Context, in <-chan *WorldState) <-chan *WorldState {
	out := make(chan *WorldState)
	go func() {
		defer close(out)
		var pending *WorldState
		for {
			if pending == nil {
				select {
				case s, ok := <-in:
					if !ok {
						return
					}
					pending = s
				case <-ctx.Done():
					return
				}
				continue
			}
			select {
			case out <- pending:
				pending = nil
			case s, ok := <-in:
				if !ok {
					select {
					case out <- pending:
					case <-ctx.Done():
					}
					return
				}
				pending = s
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
