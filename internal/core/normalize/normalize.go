// Package normalize provides deterministic text normalization for sentences and suggestions
// Text pipeline (display form)
// 1 drop invalid UTF-8 and non-space control characters
// 2 Unicode NFKC normalization
// 3 remove zero-width format chars
// 4 width fold fullwidth to ASCII
// 5 collapse whitespace to single spaces and trim
// Key pipeline (comparison form) adds case folding, strips combining marks,
// and drops trailing terminal punctuation, so "Use it." and "use  it" share a key
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// controls are dropped except whitespace, which collapses later
var controls = runes.Predicate(func(r rune) bool { return unicode.IsControl(r) && !unicode.IsSpace(r) })

// pools of fresh transformer chains; order matters and mirrors the documented pipelines
var (
	textPool = sync.Pool{
		New: func() any {
			return transform.Chain(
				runes.Remove(controls),
				norm.NFKC,
				runes.Remove(runes.In(unicode.Cf)), // ZWJ ZWNJ FEFF etc
				width.Fold,
			)
		},
	}
	keyPool = sync.Pool{
		New: func() any {
			return transform.Chain(
				runes.Remove(controls),
				norm.NFKC,
				cases.Fold(),
				runes.Remove(runes.In(unicode.Mn)),
				runes.Remove(runes.In(unicode.Cf)),
				width.Fold,
			)
		},
	}
)

// Text returns the display-safe form of s on a single line
func Text(s string) string {
	if s == "" {
		return ""
	}
	return collapseSpaces(apply(&textPool, s))
}

// Key returns the comparison form of s used for dedupe
func Key(s string) string {
	if s == "" {
		return ""
	}
	k := collapseSpaces(apply(&keyPool, s))
	k = strings.Trim(k, "\"'")
	k = strings.TrimRight(k, ".!?:; ")
	return strings.Trim(k, "\"' ")
}

func apply(pool *sync.Pool, s string) string {
	s = strings.ToValidUTF8(s, "")

	tr := pool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	pool.Put(tr)
	if err != nil {
		// a partial result would split dedupe keys
		return s
	}
	return out
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims the ends
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WordCount counts whitespace-separated words
func WordCount(s string) int { return len(strings.Fields(s)) }
