// Package pattern rewrites known passive and modal constructions into active voice
// without any external call. Rules live in a fixed-priority strategy table; each
// row pairs a matcher with an extractor and a rewriter, and the first row that
// yields a rewrite wins
package pattern

import (
	"regexp"
	"strings"

	"stylefix/internal/core/casing"
	"stylefix/internal/core/lexicon"
	"stylefix/internal/core/normalize"
)

// Issue categories the table knows about
const (
	CategoryPassive  = "passive_voice"
	CategoryLong     = "long_sentence"
	CategoryModal    = "modal_verb"
	CategoryVerbForm = "verb_form"
	CategoryOther    = "other"
)

// MaxRewrites caps how many rewrites one Transform call returns
const MaxRewrites = 3

// Rewrite is one deterministic rewrite and the rule that produced it
type Rewrite struct {
	Text string
	Rule string
}

// clause is the sentence body handed to extractors
type clause struct {
	original string // full normalized sentence
	body     string // sentence without terminal punctuation
	term     string // terminal punctuation, possibly empty
}

// parts is what an extractor pulls out of a match
type parts struct {
	lead     string
	subject  string
	aux      string
	negated  bool
	adverb   string
	part     string
	base     string
	agent    string
	rest     string
	relative string
	dest     string
}

type rule struct {
	name       string
	categories []string
	match      func(lx *lexicon.Lexicon, body string) map[string]string
	extract    func(lx *lexicon.Lexicon, m map[string]string) (parts, bool)
	rewrite    func(lx *lexicon.Lexicon, p parts) []string
}

// Transformer is pure and safe for concurrent use
type Transformer struct {
	lx    *lexicon.Lexicon
	rules []rule
}

// New builds a Transformer over the given lexicon (nil means the embedded default)
func New(lx *lexicon.Lexicon) *Transformer {
	if lx == nil {
		lx = lexicon.Default()
	}
	return &Transformer{lx: lx, rules: table(lx)}
}

// Rules returns the rule names in priority order
func (t *Transformer) Rules() []string {
	out := make([]string, 0, len(t.rules))
	for _, r := range t.rules {
		out = append(out, r.name)
	}
	return out
}

// Handles reports whether any rule covers category
func (t *Transformer) Handles(category string) bool {
	for _, r := range t.rules {
		if r.covers(category) {
			return true
		}
	}
	return false
}

// Transform returns up to MaxRewrites active-voice rewrites for sentence
// It returns nil when no rule matches or when the sentence cannot be split safely
func (t *Transformer) Transform(sentence, category string) []Rewrite {
	c, ok := prepare(sentence)
	if !ok {
		return nil
	}
	// more than one passive means nested clauses we cannot split safely
	if countPassives(c.body, t.lx) > 1 {
		return nil
	}

	for _, r := range t.rules {
		if !r.covers(category) {
			continue
		}
		m := r.match(t.lx, c.body)
		if m == nil {
			continue
		}
		p, ok := r.extract(t.lx, m)
		if !ok {
			continue
		}
		out := t.finish(c, r.name, r.rewrite(t.lx, p))
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// finish attaches punctuation, repairs casing and drops rewrites that still read passive
func (t *Transformer) finish(c clause, rule string, texts []string) []Rewrite {
	seen := map[string]bool{normalize.Key(c.original): true}
	var out []Rewrite
	for _, s := range texts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		s = casing.Fix(s+c.term, c.original, t.lx)
		if MatchesDetector(s) || countPassives(s, t.lx) > 0 {
			continue
		}
		k := normalize.Key(s)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Rewrite{Text: s, Rule: rule})
		if len(out) == MaxRewrites {
			break
		}
	}
	return out
}

func (r rule) covers(category string) bool {
	if category == "" {
		category = CategoryOther
	}
	for _, c := range r.categories {
		if c == category {
			return true
		}
	}
	return false
}

func prepare(sentence string) (clause, bool) {
	s := normalize.Text(sentence)
	if s == "" || strings.ContainsRune(s, ';') || !balanced(s) {
		return clause{}, false
	}
	body := strings.TrimRight(s, ".!?:")
	term := s[len(body):]
	body = strings.TrimSpace(body)
	if body == "" {
		return clause{}, false
	}
	return clause{original: s, body: body, term: term}, true
}

// byRegexp adapts a named-group regexp into a rule matcher
func byRegexp(re *regexp.Regexp) func(*lexicon.Lexicon, string) map[string]string {
	return func(_ *lexicon.Lexicon, s string) map[string]string { return submatches(re, s) }
}

func submatches(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			out[name] = m[i]
		}
	}
	return out
}
