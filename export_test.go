package worldviewer

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSS = `
/* page layout */
.room-table { border: 1px solid #333; }
.unused-class { color: red; }
@media print { .room-table { border: none; } }
svg#world g.node > foreignObject div { overflow: visible; }
tr.item:hover, .missing { background: #eee; }
#sidebar { width: 300px; }
`

func TestParseCSS(t *testing.T) {
	rules := ParseCSS(testCSS)
	require.Len(t, rules, 5)
	assert.Equal(t, ".room-table", rules[0].Selector)
	assert.Equal(t, ".room-table { border: 1px solid #333; }", rules[0].Text)
	assert.Equal(t, "svg#world g.node > foreignObject div", rules[2].Selector)
	assert.Equal(t, "#sidebar", rules[4].Selector)
}

func TestDocIndexMatches(t *testing.T) {
	idx := indexDocument(`<svg id="world"><g class="node big"><tr class="item"></tr></g></svg>`)
	assert.True(t, idx.matches(".node"))
	assert.True(t, idx.matches("g.node.big"))
	assert.True(t, idx.matches("svg#world"))
	assert.True(t, idx.matches("tr.item:hover"))
	assert.True(t, idx.matches(".missing, tr"))
	assert.True(t, idx.matches("div > *"))
	assert.False(t, idx.matches(".missing"))
	assert.False(t, idx.matches("g.other"))
	assert.False(t, idx.matches("#sidebar"))
}

func TestExportSVG(t *testing.T) {
	scene, err := NewRenderer().Render(sampleState(), DefaultViewSize)
	require.NoError(t, err)
	svg, err := RenderSVG(scene, IconSet{})
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	sheets := []Stylesheet{
		HTTPStylesheet{URL: srv.URL + "/theme.css", Client: srv.Client()},
		InlineStylesheet(testCSS),
		FileStylesheet("/does/not/exist.css"),
	}

	var out bytes.Buffer
	require.NoError(t, ExportSVG(&out, svg, sheets, logger))
	doc := out.String()

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, "<defs>\n<style>")
	assert.Equal(t, 1, strings.Count(doc, "<style>"))
	assert.Contains(t, doc, ".room-table { border: 1px solid #333; }")
	assert.Contains(t, doc, "tr.item:hover, .missing")
	assert.NotContains(t, doc, "unused-class")
	assert.NotContains(t, doc, "#sidebar")
	assert.NotContains(t, doc, "border: none")
	assert.Contains(t, doc, ">\n<g class=\"wrapper\"")

	// Both unreadable sheets were skipped with a warning.
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping stylesheet"))
}

func TestExportSVGWithoutStyles(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ExportSVG(&out, `<svg id="world"><g></g></svg>`, nil, nil))
	assert.Equal(t, svgPreamble+"<svg id=\"world\">\n<g>\n</g>\n</svg>", out.String())
}
