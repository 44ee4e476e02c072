package worldviewer

import (
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// ExportFilename is the name offered for downloaded graphs.
const ExportFilename = "graph.svg"

const svgPreamble = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
`

// CSSRule is a single style rule.
type CSSRule struct {
	Selector string
	Text     string
}

// Stylesheet is a source of style rules. Rules fails when the sheet cannot
// be read, for example a remote sheet on another origin.
type Stylesheet interface {
	Rules() ([]CSSRule, error)
}

// InlineStylesheet is CSS source held in memory.
type InlineStylesheet string

// Rules implements Stylesheet.
func (s InlineStylesheet) Rules() ([]CSSRule, error) {
	return ParseCSS(string(s)), nil
}

// FileStylesheet is a CSS file on disk.
type FileStylesheet string

// Rules implements Stylesheet.
func (s FileStylesheet) Rules() ([]CSSRule, error) {
	data, err := os.ReadFile(string(s))
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	return ParseCSS(string(data)), nil
}

// HTTPStylesheet is a CSS file fetched over HTTP.
type HTTPStylesheet struct {
	URL    string
	Client *http.Client
}

// Rules implements Stylesheet.
func (s HTTPStylesheet) Rules() ([]CSSRule, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(s.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch stylesheet: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch stylesheet %s: status %d", s.URL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	return ParseCSS(string(data)), nil
}

var cssComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// ParseCSS splits CSS source into plain rules. At-rules such as @media are
// skipped since they have no selector to match against.
func ParseCSS(src string) []CSSRule {
	src = cssComment.ReplaceAllString(src, "")
	var rules []CSSRule
	depth := 0
	start := 0
	skip := false
	for i, c := range src {
		switch c {
		case '{':
			if depth == 0 {
				skip = strings.HasPrefix(strings.TrimSpace(src[start:i]), "@")
			}
			depth++
		case '}':
			if depth == 0 {
				start = i + 1
				continue
			}
			depth--
			if depth == 0 {
				chunk := strings.TrimSpace(src[start : i+1])
				start = i + 1
				if skip || chunk == "" {
					continue
				}
				sel := strings.TrimSpace(chunk[:strings.Index(chunk, "{")])
				if sel == "" {
					continue
				}
				rules = append(rules, CSSRule{Selector: sel, Text: chunk})
			}
		}
	}
	return rules
}

var (
	classAttr = regexp.MustCompile(`class="([^"]*)"`)
	idAttr    = regexp.MustCompile(`id="([^"]*)"`)
	tagName   = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9:-]*)`)
)

// docIndex is the set of element names, classes and ids used in a
// document.
type docIndex struct {
	tags, classes, ids mapset.Set[string]
}

func indexDocument(doc string) docIndex {
	idx := docIndex{tags: mapset.New[string](), classes: mapset.New[string](), ids: mapset.New[string]()}
	for _, m := range tagName.FindAllStringSubmatch(doc, -1) {
		idx.tags.Put(strings.ToLower(m[1]))
	}
	for _, m := range classAttr.FindAllStringSubmatch(doc, -1) {
		for _, c := range strings.Fields(m[1]) {
			idx.classes.Put(c)
		}
	}
	for _, m := range idAttr.FindAllStringSubmatch(doc, -1) {
		idx.ids.Put(html.UnescapeString(m[1]))
	}
	return idx
}

var compoundToken = regexp.MustCompile(`([.#]?)([a-zA-Z0-9_-]+|\*)`)

// matches reports whether any selector in the list targets an element of
// the document. Only the subject compound of each selector is checked;
// pseudo-classes and attribute filters are ignored.
func (idx docIndex) matches(selectors string) bool {
	for _, sel := range strings.Split(selectors, ",") {
		parts := strings.FieldsFunc(sel, func(r rune) bool {
			return r == ' ' || r == '>' || r == '+' || r == '~' || r == '\n' || r == '\t'
		})
		if len(parts) == 0 {
			continue
		}
		subject := parts[len(parts)-1]
		if i := strings.IndexAny(subject, ":["); i >= 0 {
			subject = subject[:i]
		}
		if subject == "" {
			continue
		}
		ok := true
		for _, m := range compoundToken.FindAllStringSubmatch(subject, -1) {
			switch m[1] {
			case ".":
				ok = ok && idx.classes.Has(m[2])
			case "#":
				ok = ok && idx.ids.Has(m[2])
			default:
				ok = ok && (m[2] == "*" || idx.tags.Has(strings.ToLower(m[2])))
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// ExportSVG writes svg as a standalone document with every stylesheet rule
// that applies to it inlined into a style block. Sheets that cannot be read
// are skipped one by one.
func ExportSVG(w io.Writer, svg string, sheets []Stylesheet, logger *slog.Logger) error {
	idx := indexDocument(svg)
	var styles strings.Builder
	for n, sheet := range sheets {
		rules, err := sheet.Rules()
		if err != nil {
			if logger != nil {
				logger.Warn("skipping stylesheet", "index", n, "error", err)
			}
			continue
		}
		var block strings.Builder
		for _, r := range rules {
			if idx.matches(r.Selector) {
				block.WriteString(r.Text)
				block.WriteString("\n")
			}
		}
		if block.Len() > 0 {
			styles.WriteString("<style>")
			styles.WriteString(esc(block.String()))
			styles.WriteString("</style>")
		}
	}

	doc := svg
	if styles.Len() > 0 {
		end := strings.Index(doc, ">")
		if end < 0 {
			return fmt.Errorf("export: not an svg document")
		}
		doc = doc[:end+1] + "<defs>" + styles.String() + "</defs>" + doc[end+1:]
	}
	doc = strings.ReplaceAll(doc, "><", ">\n<")
	if _, err := io.WriteString(w, svgPreamble+doc); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
