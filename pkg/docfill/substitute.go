package docfill

import (
	"errors"
	"sort"
	"strings"

	"github.com/benjaminschreck/docfill/pkg/docfill/xml"
)

// Replacements is an immutable set of placeholder substitutions.
//
// Keys are applied longest first, ties broken lexicographically, in a single
// left-to-right pass: at each position of the text the first key in that
// order that matches is replaced, and the inserted value is never scanned
// again. Empty keys are ignored. A nil *Replacements is empty.
type Replacements struct {
	keys     []string
	values   map[string]string
	replacer *strings.Replacer
}

// NewReplacements builds the substitution set for m. m is copied.
func NewReplacements(m map[string]string) *Replacements {
	r := &Replacements{values: make(map[string]string, len(m))}
	for key, value := range m {
		if key == "" {
			continue
		}
		r.keys = append(r.keys, key)
		r.values[key] = value
	}

	sort.Slice(r.keys, func(i, j int) bool {
		if len(r.keys[i]) != len(r.keys[j]) {
			return len(r.keys[i]) > len(r.keys[j])
		}
		return r.keys[i] < r.keys[j]
	})

	oldnew := make([]string, 0, 2*len(r.keys))
	for _, key := range r.keys {
		oldnew = append(oldnew, key, r.values[key])
	}
	r.replacer = strings.NewReplacer(oldnew...)
	return r
}

// Keys returns the placeholders in application order
func (r *Replacements) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Len returns the number of placeholders
func (r *Replacements) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Value returns the value bound to key
func (r *Replacements) Value(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	value, ok := r.values[key]
	return value, ok
}

// Matches reports whether text contains at least one placeholder
func (r *Replacements) Matches(text string) bool {
	if r == nil {
		return false
	}
	for _, key := range r.keys {
		if strings.Contains(text, key) {
			return true
		}
	}
	return false
}

// Apply returns text with every placeholder occurrence replaced
func (r *Replacements) Apply(text string) string {
	if r.Len() == 0 {
		return text
	}
	return r.replacer.Replace(text)
}

var errNilParagraph = errors.New("nil paragraph")

// SubstituteParagraph replaces the placeholders found in the text of para.
//
// The text of a paragraph is the text of its direct runs. Hyperlinks,
// bookmarks and other preserved content are opaque: their text is never
// substituted.
//
// When the text contains no placeholder the paragraph is left untouched and
// changed is false. Otherwise every run is removed and a single run with
// default formatting holding the substituted text takes the place of the
// first run. Paragraph properties and preserved content are kept, so a
// bookmark that opened before the first run still encloses the text.
func SubstituteParagraph(para *xml.Paragraph, replacements *Replacements) (changed bool, err error) {
	if para == nil {
		return false, errNilParagraph
	}

	text := para.GetText()
	if !replacements.Matches(text) {
		return false, nil
	}

	at := para.FirstRunIndex()
	para.RemoveRuns()
	para.InsertRun(at, xml.NewRun(replacements.Apply(text)))
	return true, nil
}
