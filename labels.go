package worldviewer

import (
	"fmt"
	"unicode/utf8"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Labeler produces the user-visible text of the graph: capitalized item
// labels and translated headings.
type Labeler struct {
	tag    language.Tag
	locale *gotext.Locale
}

// NewLabeler creates a labeler for lang. When dir is not empty, gettext
// catalogues are loaded from dir/<lang>/LC_MESSAGES/default.po.
func NewLabeler(dir, lang string) *Labeler {
	if lang == "" {
		lang = "en"
	}
	l := &Labeler{tag: language.Make(lang)}
	if dir != "" {
		l.locale = gotext.NewLocale(dir, lang)
		l.locale.AddDomain("default")
	}
	return l
}

// Get returns the translation of msg, formatted with vars when any are
// given.
func (l *Labeler) Get(msg string, vars ...any) string {
	if l == nil || l.locale == nil {
		if len(vars) == 0 {
			return msg
		}
		return fmt.Sprintf(msg, vars...)
	}
	return l.locale.Get(msg, vars...)
}

// Capitalize upper-cases the first letter of s using the labeler's language
// rules and leaves the rest untouched.
func (l *Labeler) Capitalize(s string) string {
	if s == "" {
		return s
	}
	tag := language.English
	if l != nil {
		tag = l.tag
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(tag).String(s[:size]) + s[size:]
}

// ItemLabel returns the capitalized row label of an item: its name, or its
// type code when unnamed, followed by the descriptor.
func (l *Labeler) ItemLabel(item *Item) string {
	base := item.Name
	if base == "" {
		base = item.Type
	}
	return l.Capitalize(base + item.Descriptor())
}
