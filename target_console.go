package worldviewer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/rodaine/table"
	"golang.org/x/term"
)

const defaultConsoleWidth = 80

var (
	consoleHeader     = color.Style{color.FgGreen, color.OpBold}
	consoleImpossible = color.Style{color.FgRed}
	consoleError      = color.Style{color.FgRed, color.OpBold}
)

// ConsoleTarget prints room and edge tables for every frame. It is useful
// for checking layout decisions from a terminal.
type ConsoleTarget struct {
	mu      sync.Mutex
	w       io.Writer
	colored bool
	width   int
	lastSeq uint64
}

// ConsoleOption configures a ConsoleTarget.
type ConsoleOption func(*ConsoleTarget)

// WithConsoleColor forces colored headers on or off.
func WithConsoleColor(enable bool) ConsoleOption {
	return func(t *ConsoleTarget) {
		t.colored = enable
	}
}

// WithConsoleWidth truncates long cells to fit the given width.
func WithConsoleWidth(width int) ConsoleOption {
	return func(t *ConsoleTarget) {
		t.width = width
	}
}

// NewConsoleTarget creates a target printing to w. Colors and width are
// detected when w is a terminal.
func NewConsoleTarget(w io.Writer, opts ...ConsoleOption) *ConsoleTarget {
	t := &ConsoleTarget{w: w, width: defaultConsoleWidth}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.colored = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			t.width = width
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements Target.
func (t *ConsoleTarget) Name() string {
	return "ConsoleTarget"
}

// Update implements Target.
func (t *ConsoleTarget) Update(ctx context.Context, frame *Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if frame.Seq != 0 && frame.Seq == t.lastSeq {
		return nil
	}
	t.lastSeq = frame.Seq

	fmt.Fprintf(t.w, "frame %d\n", frame.Seq)
	if frame.Err != nil {
		fmt.Fprintln(t.w, t.style(consoleError, "render failed: "+frame.Err.Error()))
	}
	scene := frame.Scene
	if scene == nil {
		return nil
	}

	rooms := table.New("Room", "Grid", "Box", "Rows", "Current").
		WithWriter(t.w).
		WithHeaderFormatter(t.headerFormatter())
	for _, rb := range scene.Rooms {
		current := ""
		if rb.Current {
			current = "*"
		}
		rooms.AddRow(
			t.fit(rb.Box.Title),
			fmt.Sprintf("%d,%d", rb.Room.Position.X(), rb.Room.Position.Y()),
			formatRect(rb.Rect),
			rb.Box.Items.Len(),
			current,
		)
	}
	rooms.Print()

	if len(scene.Edges) > 0 {
		fmt.Fprintln(t.w)
		edges := table.New("Src", "Dest", "Dir", "From", "To", "Door", "Impossible").
			WithWriter(t.w).
			WithHeaderFormatter(t.headerFormatter())
		for _, e := range scene.Edges {
			door := ""
			if e.Door != nil {
				door = t.fit(e.Door.Label)
			}
			impossible := ""
			if e.Impossible {
				impossible = t.style(consoleImpossible, "yes")
			}
			dir := string(e.Dir)
			if dir == "" {
				dir = "-"
			}
			edges.AddRow(e.Src, e.Dest, dir, formatPoint(e.From), formatPoint(e.To), door, impossible)
		}
		edges.Print()
	}

	if scene.Command != "" {
		fmt.Fprintf(t.w, "> %s\n", scene.Command)
	}
	fmt.Fprintln(t.w)
	return nil
}

// Close implements Target.
func (t *ConsoleTarget) Close() error {
	return nil
}

func (t *ConsoleTarget) headerFormatter() table.Formatter {
	return func(format string, vals ...interface{}) string {
		return t.style(consoleHeader, fmt.Sprintf(format, vals...))
	}
}

func (t *ConsoleTarget) style(s color.Style, text string) string {
	if !t.colored {
		return text
	}
	return s.Sprint(text)
}

// fit truncates a cell to a third of the console width.
func (t *ConsoleTarget) fit(s string) string {
	limit := t.width / 3
	if limit < 8 {
		limit = 8
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit-1])) + "…"
}

func formatPoint(p Point) string {
	return fmt.Sprintf("%.0f,%.0f", p.X, p.Y)
}

func formatRect(r Rect) string {
	return fmt.Sprintf("%.0f,%.0f %.0fx%.0f", r.Min.X, r.Min.Y, r.Size.W, r.Size.H)
}
