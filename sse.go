package worldviewer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxEventSize bounds a single server-sent event; snapshots of large worlds
// run to a few hundred kilobytes.
const maxEventSize = 16 << 20

// Event is one server-sent event.
type Event struct {
	ID   string
	Type string
	Data string
}

// WriteEvent writes ev in text/event-stream framing.
func WriteEvent(w io.Writer, ev Event) error {
	var b strings.Builder
	if ev.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", ev.ID)
	}
	if ev.Type != "" {
		fmt.Fprintf(&b, "event: %s\n", ev.Type)
	}
	for _, line := range strings.Split(ev.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ReadEvents parses a text/event-stream and calls fn for every event that
// carries data. It returns nil when the stream ends cleanly.
func ReadEvents(r io.Reader, fn func(Event) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxEventSize)

	var ev Event
	var data []string
	dispatch := func() error {
		defer func() {
			ev = Event{}
			data = data[:0]
		}()
		if len(data) == 0 {
			return nil
		}
		ev.Data = strings.Join(data, "\n")
		return fn(ev)
	}

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if err := dispatch(); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
		case "id":
			ev.ID = value
		case "event":
			ev.Type = value
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return dispatch()
}
