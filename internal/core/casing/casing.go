// Package casing repairs title-case artifacts in rewritten sentences
package casing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Acronyms reports whether a word is a known acronym
type Acronyms interface {
	IsAcronym(word string) bool
}

// minTitleWords is how many mid-sentence capitalized words it takes to call a sentence title cased
const minTitleWords = 2

// Fix returns s in sentence case when it looks title cased
// Protected words keep their casing: all-upper words, known acronyms, and words that
// were already capitalized mid-sentence in the original text (proper nouns)
// The first letter is always upper case
func Fix(s, original string, ac Acronyms) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	proper := properNouns(original, ac)

	words := strings.Fields(s)
	candidates, capped := 0, 0
	for i, w := range words {
		if i == 0 {
			continue
		}
		core := trimPunct(w)
		if !isWordish(core) || protected(core, proper, ac) {
			continue
		}
		candidates++
		if startsUpper(core) {
			capped++
		}
	}

	if capped >= minTitleWords && capped*2 > candidates {
		for i, w := range words {
			if i == 0 {
				continue
			}
			words[i] = lowerWord(w, proper, ac)
		}
		s = strings.Join(words, " ")
	}
	return UpperFirst(s)
}

// UpperFirst upper-cases the first letter of s
func UpperFirst(s string) string {
	for i, r := range s {
		if unicode.IsLetter(r) {
			if unicode.IsUpper(r) {
				return s
			}
			return s[:i] + string(unicode.ToUpper(r)) + s[i+utf8.RuneLen(r):]
		}
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) {
			return s
		}
	}
	return s
}

// LowerFirst lower-cases the first word of s unless it is protected
func LowerFirst(s string, ac Acronyms) string {
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return s
	}
	end := strings.IndexByte(s, ' ')
	if end < 0 {
		end = len(s)
	}
	core := trimPunct(s[:end])
	if core == "" || core == "I" || (len(core) > 1 && allUpper(core)) || (ac != nil && ac.IsAcronym(core)) {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

func properNouns(original string, ac Acronyms) map[string]struct{} {
	out := map[string]struct{}{}
	words := strings.Fields(original)
	for i, w := range words {
		if i == 0 {
			continue
		}
		core := trimPunct(w)
		if core == "" || !startsUpper(core) {
			continue
		}
		// words after a sentence break are capitalized by position, not by name
		if prev := words[i-1]; strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "!") || strings.HasSuffix(prev, "?") {
			continue
		}
		if ac != nil && ac.IsAcronym(core) {
			continue
		}
		out[core] = struct{}{}
	}
	return out
}

func protected(core string, proper map[string]struct{}, ac Acronyms) bool {
	if core == "I" || (len(core) > 1 && allUpper(core)) {
		return true
	}
	if ac != nil && ac.IsAcronym(core) {
		return true
	}
	_, ok := proper[core]
	return ok
}

func lowerWord(w string, proper map[string]struct{}, ac Acronyms) string {
	core := trimPunct(w)
	if !isWordish(core) {
		return w
	}
	if ac != nil && ac.IsAcronym(core) {
		return strings.Replace(w, core, strings.ToUpper(core), 1)
	}
	if protected(core, proper, ac) {
		return w
	}
	return strings.Replace(w, core, strings.ToLower(core), 1)
}

func trimPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
}

func isWordish(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

func startsUpper(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}

func allUpper(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 0
}
