package worldviewer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

// WebTarget serves the visualization via HTTP for web browsers. Every frame
// is pushed to connected pages over server-sent events (/subscribe) or a
// websocket (/ws).
type WebTarget struct {
	addr     string
	server   *http.Server
	mu       sync.RWMutex
	frame    *Frame
	payload  []byte
	started  bool
	webDir   string // Optional directory with static web assets
	title    string
	icons    IconSet
	export   bool
	sheets   []Stylesheet
	logger   *slog.Logger
	control  Controller
	upgrader websocket.Upgrader

	subMu sync.Mutex
	subs  map[chan []byte]struct{}
	quit  chan struct{}
	once  sync.Once
}

// WebOption configures a WebTarget.
type WebOption func(*WebTarget)

// WithWebDir sets the directory containing static web assets, served under
// /static/.
func WithWebDir(dir string) WebOption {
	return func(t *WebTarget) {
		t.webDir = dir
	}
}

// WithTitle sets the page title.
func WithTitle(title string) WebOption {
	return func(t *WebTarget) {
		t.title = title
	}
}

// WithTemplatePath sets the base path icons and stylesheets are loaded
// from.
func WithTemplatePath(base string) WebOption {
	return func(t *WebTarget) {
		t.icons = IconSet{BasePath: base}
	}
}

// WithExport enables the standalone SVG download at /export, inlining the
// given stylesheets.
func WithExport(enable bool, sheets ...Stylesheet) WebOption {
	return func(t *WebTarget) {
		t.export = enable
		t.sheets = sheets
	}
}

// WithWebLogger sets the logger for request and stream diagnostics.
func WithWebLogger(l *slog.Logger) WebOption {
	return func(t *WebTarget) {
		t.logger = l
	}
}

// shutdownTimeout bounds how long Close waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// NewWebTarget creates a target that serves the visualization via HTTP.
func NewWebTarget(addr string, opts ...WebOption) (*WebTarget, error) {
	target := &WebTarget{
		addr:   addr,
		title:  "worldviewer",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs:   make(map[chan []byte]struct{}),
		quit:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(target)
	}

	return target, nil
}

// Name implements Target.
func (t *WebTarget) Name() string {
	return fmt.Sprintf("WebTarget(%s)", t.addr)
}

func (t *WebTarget) bind(c Controller) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.control = c
}

// Update implements Target.
func (t *WebTarget) Update(ctx context.Context, frame *Frame) error {
	payload, err := BuildPayload(frame, t.icons)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	t.mu.Lock()
	t.frame = frame
	t.payload = data
	wasStarted := t.started
	t.mu.Unlock()

	t.broadcast(data)

	// Auto-start server on first update
	if !wasStarted && t.addr != "" {
		return t.start()
	}
	return nil
}

// broadcast hands data to every subscriber. A subscriber that has not
// consumed its previous frame gets the new one in its place.
func (t *WebTarget) broadcast(data []byte) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		ch <- data
	}
}

func (t *WebTarget) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	t.mu.RLock()
	if t.payload != nil {
		ch <- t.payload
	}
	t.mu.RUnlock()

	t.subMu.Lock()
	t.subs[ch] = struct{}{}
	t.subMu.Unlock()
	return ch
}

func (t *WebTarget) unsubscribe(ch chan []byte) {
	t.subMu.Lock()
	delete(t.subs, ch)
	t.subMu.Unlock()
}

// Handler returns the HTTP handler for embedding in existing servers.
func (t *WebTarget) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/subscribe", t.handleSubscribe)
	mux.HandleFunc("/ws", t.handleWebsocket)

	mux.HandleFunc("/api/state", t.handleState)
	mux.HandleFunc("/api/scene", t.handleScene)
	mux.HandleFunc("/api/toggle", t.handleToggle)
	mux.HandleFunc("/api/viewport", t.handleViewport)
	mux.HandleFunc("/api/transform", t.handleTransform)
	mux.HandleFunc("/export", t.handleExport)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if t.webDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(t.webDir))))
	}
	mux.HandleFunc("/", t.handleIndex)

	return mux
}

func (t *WebTarget) current() (*Frame, []byte, Controller) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frame, t.payload, t.control
}

func (t *WebTarget) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	frame, _, _ := t.current()
	var state []byte
	payload := FramePayload{}
	if frame != nil {
		var err error
		if state, err = EncodeSnapshot(frame.State); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if payload, err = BuildPayload(frame, t.icons); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if state == nil {
		state = []byte(`{"rooms":[],"connections":[],"inventory":[],"history":"","objective":"","command":""}`)
	}

	w.Header().Set("Content-Type", "text/html;charset=utf-8")
	if err := WritePage(w, t.title, state, t.icons.BasePath, payload); err != nil {
		t.logger.Warn("write page", "error", err)
	}
}

func (t *WebTarget) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := t.subscribe()
	defer t.unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-t.quit:
			return
		case data := <-ch:
			if err := WriteEvent(w, Event{ID: ulid.Make().String(), Data: string(data)}); err != nil {
				t.logger.Debug("subscriber gone", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func (t *WebTarget) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.Debug("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	ch := t.subscribe()
	defer t.unsubscribe(ch)

	// Reads only detect the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-t.quit:
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case data := <-ch:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				t.logger.Debug("websocket write", "error", err)
				return
			}
		}
	}
}

func (t *WebTarget) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.logger.Warn("encode response", "error", err)
	}
}

func (t *WebTarget) handleState(w http.ResponseWriter, r *http.Request) {
	frame, _, _ := t.current()
	if frame == nil || frame.State == nil {
		t.writeJSON(w, WorldState{})
		return
	}
	t.writeJSON(w, frame.State)
}

func (t *WebTarget) handleScene(w http.ResponseWriter, r *http.Request) {
	frame, _, _ := t.current()
	if frame == nil {
		t.writeJSON(w, SceneJSON{})
		return
	}
	t.writeJSON(w, SceneToJSON(frame.Scene))
}

// decodeInput parses a POSTed JSON body and checks that a controller is
// bound. It writes the error response itself and reports success.
func (t *WebTarget) decodeInput(w http.ResponseWriter, r *http.Request, v any) (Controller, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	_, _, control := t.current()
	if control == nil {
		http.Error(w, "viewer not attached", http.StatusServiceUnavailable)
		return nil, false
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return nil, false
	}
	return control, true
}

func (t *WebTarget) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item string `json:"item"`
	}
	control, ok := t.decodeInput(w, r, &req)
	if !ok {
		return
	}
	if err := control.Toggle(r.Context(), req.Item); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (t *WebTarget) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req SizeJSON
	control, ok := t.decodeInput(w, r, &req)
	if !ok {
		return
	}
	if err := control.Resize(r.Context(), Size{W: req.W, H: req.H}); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (t *WebTarget) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req Transform
	control, ok := t.decodeInput(w, r, &req)
	if !ok {
		return
	}
	if err := control.SetTransform(r.Context(), req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (t *WebTarget) handleExport(w http.ResponseWriter, r *http.Request) {
	if !t.export {
		http.NotFound(w, r)
		return
	}
	frame, _, _ := t.current()
	if frame == nil || frame.Scene == nil {
		http.Error(w, ErrNoState.Error(), http.StatusServiceUnavailable)
		return
	}
	svg, err := RenderSVG(frame.Scene, t.icons)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := ExportSVG(&buf, svg, t.sheets, t.logger); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ExportFilename))
	w.Write(buf.Bytes())
}

func (t *WebTarget) start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	srv := &http.Server{
		Addr:    t.addr,
		Handler: t.Handler(),
	}
	t.server = srv

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.logger.Error("web target stopped", "addr", t.addr, "error", err)
		}
	}()

	t.started = true
	return nil
}

// Close implements Target.
func (t *WebTarget) Close() error {
	t.once.Do(func() { close(t.quit) })

	t.mu.Lock()
	srv := t.server
	t.mu.Unlock()

	if srv == nil {
		return nil
	}
	// Handlers take t.mu, so it must be released before waiting on them.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// URL returns the URL where the web target is serving.
func (t *WebTarget) URL() string {
	return "http://localhost" + t.addr
}
