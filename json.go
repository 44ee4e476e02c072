package worldviewer

import (
	"fmt"
	"html"
	"strings"

	json "github.com/goccy/go-json"
)

// DecodeSnapshot parses a WorldState JSON document.
func DecodeSnapshot(data []byte) (*WorldState, error) {
	var s WorldState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// EncodeSnapshot serializes a WorldState.
func EncodeSnapshot(s *WorldState) ([]byte, error) {
	return json.Marshal(s)
}

var embedEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

// EscapeEmbedded escapes a JSON payload for use inside a double-quoted HTML
// attribute of the host page.
func EscapeEmbedded(data []byte) string {
	return embedEscaper.Replace(string(data))
}

// DecodeEmbedded parses a snapshot embedded by the host page, undoing the
// attribute escaping first.
func DecodeEmbedded(attr string) (*WorldState, error) {
	return DecodeSnapshot([]byte(html.UnescapeString(attr)))
}

// SceneJSON is the JSON projection of a Scene for API clients.
type SceneJSON struct {
	Rooms     []RoomJSON `json:"rooms"`
	Edges     []EdgeJSON `json:"edges"`
	Inventory RectJSON   `json:"inventory"`
	Bounds    RectJSON   `json:"bounds"`
	Transform Transform  `json:"transform"`
	View      SizeJSON   `json:"view"`
}

// RectJSON is a rectangle in pixels.
type RectJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// SizeJSON is a width and height in pixels.
type SizeJSON struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// RoomJSON is the placed box of a room.
type RoomJSON struct {
	Name    string   `json:"name"`
	Grid    GridPos  `json:"grid"`
	Rect    RectJSON `json:"rect"`
	Current bool     `json:"current"`
	Rows    int      `json:"rows"`
}

// EdgeJSON is a routed connection.
type EdgeJSON struct {
	Src        string    `json:"src"`
	Dest       string    `json:"dest"`
	Dir        string    `json:"dir"`
	X1         float64   `json:"x1"`
	Y1         float64   `json:"y1"`
	X2         float64   `json:"x2"`
	Y2         float64   `json:"y2"`
	Impossible bool      `json:"impossible,omitempty"`
	Door       *DoorJSON `json:"door,omitempty"`
}

// DoorJSON is a placed door label.
type DoorJSON struct {
	Name      string   `json:"name"`
	Rect      RectJSON `json:"rect"`
	Highlight bool     `json:"highlight,omitempty"`
}

func rectJSON(r Rect) RectJSON {
	return RectJSON{X: r.Min.X, Y: r.Min.Y, W: r.Size.W, H: r.Size.H}
}

// SceneToJSON converts a Scene to its API projection.
func SceneToJSON(scene *Scene) SceneJSON {
	if scene == nil {
		return SceneJSON{}
	}
	out := SceneJSON{
		Rooms:     make([]RoomJSON, len(scene.Rooms)),
		Edges:     make([]EdgeJSON, len(scene.Edges)),
		Bounds:    rectJSON(scene.Bounds),
		Transform: scene.Transform,
		View:      SizeJSON{W: scene.View.W, H: scene.View.H},
	}
	if scene.Inventory != nil {
		out.Inventory = rectJSON(scene.Inventory.Rect)
	}
	for i, room := range scene.Rooms {
		out.Rooms[i] = RoomJSON{
			Name:    room.Room.Name,
			Grid:    room.Room.Position,
			Rect:    rectJSON(room.Rect),
			Current: room.Current,
			Rows:    room.Box.Items.Len(),
		}
	}
	for i, e := range scene.Edges {
		ej := EdgeJSON{
			Src:        e.Src,
			Dest:       e.Dest,
			Dir:        string(e.Dir),
			X1:         e.From.X,
			Y1:         e.From.Y,
			X2:         e.To.X,
			Y2:         e.To.Y,
			Impossible: e.Impossible,
		}
		if e.Door != nil {
			ej.Door = &DoorJSON{Name: e.Door.Name, Rect: rectJSON(e.Door.Rect), Highlight: e.Door.Highlight}
		}
		out.Edges[i] = ej
	}
	return out
}

// SceneToJSONBytes converts a Scene to JSON bytes.
func SceneToJSONBytes(scene *Scene) ([]byte, error) {
	return json.Marshal(SceneToJSON(scene))
}
