// Package lexicon loads the embedded English word lists used by the rewriters
// and owns verb conjugation. Every rewrite path derives base, third-person and
// past forms through this package so the rules never diverge
package lexicon

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var embedded []byte

type rawLexicon struct {
	Version            int               `yaml:"version"`
	Irregular          [][]string        `yaml:"irregular"`
	RegularExceptions  map[string]string `yaml:"regular_exceptions"`
	NotParticiples     []string          `yaml:"not_participles"`
	Acronyms           []string          `yaml:"acronyms"`
	Modals             []string          `yaml:"modals"`
	NavigationSynonyms []string          `yaml:"navigation_synonyms"`
	NavigationVerbs    []string          `yaml:"navigation_verbs"`
	Abbreviations      []string          `yaml:"abbreviations"`
}

// Verb is one irregular conjugation row
type Verb struct {
	Base       string
	Past       string
	Participle string
}

// Lexicon is immutable after Parse and safe for concurrent use
type Lexicon struct {
	Version int

	byParticiple map[string]Verb
	byBase       map[string]Verb
	exceptions   map[string]string
	notPart      map[string]struct{}
	acronyms     map[string]struct{}
	modals       map[string]struct{}
	abbrevs      map[string]struct{}
	navVerbs     map[string]struct{}

	navigation []string
	modalList  []string
}

var (
	defOnce sync.Once
	def     *Lexicon
	defErr  error
)

// Load returns the process-wide lexicon parsed from the embedded data
func Load() (*Lexicon, error) {
	defOnce.Do(func() { def, defErr = Parse(embedded) })
	return def, defErr
}

// Default is Load for callers that treat a broken embedded file as a programming error
func Default() *Lexicon {
	lx, err := Load()
	if err != nil {
		panic(err)
	}
	return lx
}

// Parse builds a lexicon from YAML bytes
func Parse(data []byte) (*Lexicon, error) {
	var raw rawLexicon
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("lexicon: parse: %w", err)
	}
	if raw.Version != 1 {
		return nil, fmt.Errorf("lexicon: unsupported version %d (want 1)", raw.Version)
	}

	lx := &Lexicon{
		Version:      raw.Version,
		byParticiple: make(map[string]Verb, len(raw.Irregular)),
		byBase:       make(map[string]Verb, len(raw.Irregular)),
		exceptions:   make(map[string]string, len(raw.RegularExceptions)),
		notPart:      toSet(raw.NotParticiples, strings.ToLower),
		acronyms:     toSet(raw.Acronyms, strings.ToUpper),
		modals:       toSet(raw.Modals, strings.ToLower),
		abbrevs:      toSet(raw.Abbreviations, strings.ToLower),
		navVerbs:     toSet(raw.NavigationVerbs, strings.ToLower),
	}
	for i, row := range raw.Irregular {
		if len(row) != 3 {
			return nil, fmt.Errorf("lexicon: irregular row %d has %d forms (want 3)", i, len(row))
		}
		v := Verb{
			Base:       strings.ToLower(row[0]),
			Past:       strings.ToLower(row[1]),
			Participle: strings.ToLower(row[2]),
		}
		lx.byBase[v.Base] = v
		// first row wins when two verbs share a participle
		if _, dup := lx.byParticiple[v.Participle]; !dup {
			lx.byParticiple[v.Participle] = v
		}
	}
	for k, v := range raw.RegularExceptions {
		lx.exceptions[strings.ToLower(k)] = strings.ToLower(v)
	}
	for _, m := range raw.Modals {
		lx.modalList = append(lx.modalList, strings.ToLower(m))
	}
	for _, s := range raw.NavigationSynonyms {
		lx.navigation = append(lx.navigation, strings.ToLower(s))
	}
	return lx, nil
}

func toSet(xs []string, fold func(string) string) map[string]struct{} {
	out := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x != "" {
			out[fold(x)] = struct{}{}
		}
	}
	return out
}

// BaseForm maps a past participle to its base verb
// ok is false when word does not read as a participle
func (l *Lexicon) BaseForm(word string) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return "", false
	}
	if _, skip := l.notPart[w]; skip {
		return "", false
	}
	if v, ok := l.byParticiple[w]; ok {
		return v.Base, true
	}
	if b, ok := l.exceptions[w]; ok {
		return b, true
	}
	if len(w) < 4 || !strings.HasSuffix(w, "ed") || !isLetters(w) {
		return "", false
	}

	stem := w[:len(w)-2]
	switch {
	case strings.HasSuffix(w, "ied") && len(w) > 4:
		return w[:len(w)-3] + "y", true
	case strings.HasSuffix(stem, "e"):
		// agreed, freed
		return stem + "e", true
	case doubledFinal(stem):
		return stem[:len(stem)-1], true
	case needsSilentE(stem):
		return stem + "e", true
	}
	return stem, true
}

// IsParticiple reports whether word reads as a past participle
func (l *Lexicon) IsParticiple(word string) bool {
	_, ok := l.BaseForm(word)
	return ok
}

// ThirdPerson conjugates a base verb for a singular third-person subject
// irregulars first, then: -e +s, consonant+y -> ies, sibilant or -o +es, else +s
func (l *Lexicon) ThirdPerson(base string) string {
	b := strings.ToLower(strings.TrimSpace(base))
	switch b {
	case "":
		return ""
	case "be":
		return "is"
	case "have":
		return "has"
	}
	switch {
	case strings.HasSuffix(b, "e"):
		return b + "s"
	case len(b) > 1 && b[len(b)-1] == 'y' && !isVowel(b[len(b)-2]):
		return b[:len(b)-1] + "ies"
	case hasAnySuffix(b, "s", "sh", "ch", "x", "z", "o"):
		return b + "es"
	}
	return b + "s"
}

// Past returns the simple past for a participle: the irregular past when known,
// otherwise the participle itself (regular verbs share the form)
func (l *Lexicon) Past(participle string) string {
	p := strings.ToLower(strings.TrimSpace(participle))
	if v, ok := l.byParticiple[p]; ok {
		return v.Past
	}
	return p
}

// Irregular returns the conjugation row for a base verb
func (l *Lexicon) Irregular(base string) (Verb, bool) {
	v, ok := l.byBase[strings.ToLower(base)]
	return v, ok
}

// IsAcronym reports whether word is a known acronym regardless of case
func (l *Lexicon) IsAcronym(word string) bool {
	_, ok := l.acronyms[strings.ToUpper(word)]
	return ok
}

// IsModal reports whether word is a modal auxiliary
func (l *Lexicon) IsModal(word string) bool {
	_, ok := l.modals[strings.ToLower(word)]
	return ok
}

// Modals returns the modal auxiliaries in file order
func (l *Lexicon) Modals() []string { return append([]string(nil), l.modalList...) }

// NavigationSynonyms returns the navigation verb pool in preference order
func (l *Lexicon) NavigationSynonyms() []string { return append([]string(nil), l.navigation...) }

// IsNavigationVerb reports whether base moves the reader somewhere (redirect, take, send)
func (l *Lexicon) IsNavigationVerb(base string) bool {
	_, ok := l.navVerbs[strings.ToLower(base)]
	return ok
}

// IsAbbreviation reports whether word (without its trailing period) never ends a sentence
func (l *Lexicon) IsAbbreviation(word string) bool {
	_, ok := l.abbrevs[strings.ToLower(strings.TrimSuffix(word, "."))]
	return ok
}

func doubledFinal(stem string) bool {
	n := len(stem)
	if n < 3 {
		return false
	}
	c := stem[n-1]
	if c != stem[n-2] || isVowel(c) {
		return false
	}
	switch c {
	case 'l', 's', 'f', 'z':
		return false
	}
	return true
}

// needsSilentE restores the e dropped before -ed (configured, provided, enabled)
func needsSilentE(stem string) bool {
	n := len(stem)
	if n < 2 {
		return false
	}
	last := stem[n-1]
	switch last {
	case 'v', 'c', 'g', 'z', 'u':
		return true
	case 's':
		return stem[n-2] != 's'
	case 'l':
		if strings.ContainsRune("bcdfgkptz", rune(stem[n-2])) {
			return true
		}
	}
	if hasAnySuffix(stem, "iat", "uat") {
		return true
	}
	if !strings.ContainsRune("tdmpkblnr", rune(last)) {
		return false
	}
	v := stem[n-2]
	if !isVowel(v) && v != 'y' {
		return false
	}
	if v == 'e' && strings.ContainsRune("lnr", rune(last)) {
		return false
	}
	// single vowel: the letter before it must be a consonant ("qu" counts as one)
	if n == 2 {
		return true
	}
	prev := stem[n-3]
	if isVowel(prev) {
		return prev == 'u' && n >= 4 && stem[n-4] == 'q'
	}
	return true
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
