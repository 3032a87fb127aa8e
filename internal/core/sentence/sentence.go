// Package sentence splits document text into addressable sentence spans
package sentence

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"stylefix/internal/core/lexicon"
	"stylefix/internal/core/normalize"
)

// Span is a sentence over the original text; Start/End are byte offsets [Start,End)
// Text is the normalized single-line form
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Abbreviations reports words that never end a sentence
type Abbreviations interface {
	IsAbbreviation(word string) bool
}

// Index is an immutable sentence index over one document
type Index struct {
	text  string
	spans []Span
}

// New indexes text using the default lexicon abbreviations
func New(text string) *Index { return NewWith(text, lexicon.Default()) }

// NewWith indexes text with a caller-provided abbreviation list
func NewWith(text string, ab Abbreviations) *Index {
	ix := &Index{text: text}
	zones := normalize.DetectZones(text)

	start := 0
	emit := func(end int) {
		if sp, ok := makeSpan(text, start, end); ok {
			ix.spans = append(ix.spans, sp)
		}
		start = end
	}

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\n' && blankLineAt(text, i+1):
			emit(i)
			i++
			continue
		case c == '\n' && listItemAt(text, i+1) && !zones.Contains(i, normalize.ZoneCodeFence):
			emit(i)
			i++
			continue
		case (c == '.' || c == '!' || c == '?') && !zones.Contains(i, normalize.ZoneCodeFence, normalize.ZoneCodeInline):
			end := i + 1
			// fold runs like "?!" and "..." plus closing quotes/brackets into the sentence
			for end < len(text) && strings.IndexByte(".!?\"')]", text[end]) >= 0 {
				end++
			}
			if end < len(text) && text[end] >= utf8.RuneSelf {
				if r, n := utf8.DecodeRuneInString(text[end:]); r == '”' || r == '’' {
					end += n
				}
			}
			if c == '.' && (isDecimal(text, i) || listMarker(text, i) || (ab != nil && ab.IsAbbreviation(wordBefore(text, i)))) {
				i = end
				continue
			}
			if boundaryAfter(text, end) {
				emit(end)
			}
			i = end
			continue
		}
		i++
	}
	emit(len(text))
	return ix
}

// Text returns the indexed document
func (ix *Index) Text() string { return ix.text }

// Len returns the sentence count
func (ix *Index) Len() int { return len(ix.spans) }

// Sentences returns a copy of all spans in document order
func (ix *Index) Sentences() []Span { return append([]Span(nil), ix.spans...) }

// At returns the i-th sentence
func (ix *Index) At(i int) (Span, bool) {
	if i < 0 || i >= len(ix.spans) {
		return Span{}, false
	}
	return ix.spans[i], true
}

// Locate returns the sentence containing byte offset start
// end is only checked for sanity (end >= start, within text)
func (ix *Index) Locate(start, end int) (Span, bool) {
	if start < 0 || end < start || end > len(ix.text) || len(ix.spans) == 0 {
		return Span{}, false
	}
	i := sort.Search(len(ix.spans), func(i int) bool { return ix.spans[i].End > start })
	if i == len(ix.spans) {
		return Span{}, false
	}
	sp := ix.spans[i]
	if start < sp.Start && end <= sp.Start {
		// range sits entirely in the whitespace between sentences
		return Span{}, false
	}
	return sp, true
}

// First returns up to n leading sentences of text joined by a space
func First(text string, n int) string {
	ix := New(text)
	if ix.Len() <= n {
		return normalize.Text(text)
	}
	parts := make([]string, 0, n)
	for _, sp := range ix.spans[:n] {
		parts = append(parts, sp.Text)
	}
	return strings.Join(parts, " ")
}

func makeSpan(text string, start, end int) (Span, bool) {
	for start < end && isSpaceByte(text[start]) {
		start++
	}
	for end > start && isSpaceByte(text[end-1]) {
		end--
	}
	if start >= end {
		return Span{}, false
	}
	norm := normalize.Text(text[start:end])
	if norm == "" {
		return Span{}, false
	}
	return Span{Start: start, End: end, Text: norm}, true
}

// boundaryAfter reports whether the text after pos starts a new sentence
func boundaryAfter(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}
	if !isSpaceByte(text[pos]) {
		return false
	}
	for pos < len(text) && isSpaceByte(text[pos]) {
		pos++
	}
	if pos >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune("\"'“‘(`[*-#>", r)
}

func blankLineAt(text string, pos int) bool {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\r':
			pos++
		case '\n':
			return true
		default:
			return false
		}
	}
	return false
}

// listItemAt reports markdown list items and headings starting at pos
func listItemAt(text string, pos int) bool {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t') {
		pos++
	}
	if pos >= len(text) {
		return false
	}
	switch text[pos] {
	case '#':
		return true
	case '-', '*', '+':
		return pos+1 < len(text) && text[pos+1] == ' '
	}
	j := pos
	for j < len(text) && text[j] >= '0' && text[j] <= '9' {
		j++
	}
	return j > pos && j+1 < len(text) && (text[j] == '.' || text[j] == ')') && text[j+1] == ' '
}

func isDecimal(text string, i int) bool {
	return i > 0 && i+1 < len(text) && isDigit(text[i-1]) && isDigit(text[i+1])
}

// listMarker reports an ordered-list number ("2.") at the start of a line
func listMarker(text string, i int) bool {
	w := wordBefore(text, i)
	if w == "" {
		return false
	}
	for j := 0; j < len(w); j++ {
		if !isDigit(w[j]) {
			return false
		}
	}
	k := i - len(w)
	for k > 0 && (text[k-1] == ' ' || text[k-1] == '\t') {
		k--
	}
	return k == 0 || text[k-1] == '\n'
}

// wordBefore returns the token ending at i, including inner periods (e.g. "e.g")
func wordBefore(text string, i int) string {
	j := i
	for j > 0 {
		c := text[j-1]
		if isSpaceByte(c) || c == '(' || c == '"' {
			break
		}
		j--
	}
	return text[j:i]
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
