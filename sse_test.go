package worldviewer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEvents(t *testing.T, stream string) []Event {
	t.Helper()
	var events []Event
	err := ReadEvents(strings.NewReader(stream), func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	return events
}

func TestReadEvents(t *testing.T) {
	stream := ": keepalive\n\n" +
		"id: 1\nevent: state\ndata: {\"a\":1}\n\n" +
		"data: line one\r\ndata: line two\r\n\r\n" +
		"id: 3\n\n" +
		"data:tail"

	events := collectEvents(t, stream)
	require.Len(t, events, 3)
	assert.Equal(t, Event{ID: "1", Type: "state", Data: `{"a":1}`}, events[0])
	assert.Equal(t, "line one\nline two", events[1].Data)
	assert.Equal(t, "", events[1].ID)
	assert.Equal(t, "tail", events[2].Data)
}

func TestReadEventsStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := ReadEvents(strings.NewReader("data: a\n\ndata: b\n\n"), func(Event) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, Event{ID: "7", Type: "frame", Data: "x\ny"}))
	assert.Equal(t, "id: 7\nevent: frame\ndata: x\ndata: y\n\n", buf.String())

	events := collectEvents(t, buf.String())
	require.Len(t, events, 1)
	assert.Equal(t, Event{ID: "7", Type: "frame", Data: "x\ny"}, events[0])
}
