package pattern

import (
	"regexp"
	"strings"

	"stylefix/internal/core/lexicon"
)

// passiveRe is the detector-side passive check: auxiliary followed by a regular -ed participle
var passiveRe = regexp.MustCompile(`(?i)\b(am|is|are|was|were|be|been|being)\b\s+\w+ed\b`)

// adverbPattern is one adverb that may sit between an auxiliary and its participle
const adverbPattern = `(?:[a-z]+ly|never|always|also|often|still|already|usually|sometimes|then|now|only)`

// auxWordRe finds every auxiliary + following word (optionally through "not" and one adverb)
var auxWordRe = regexp.MustCompile(`(?i)\b(?:am|is|are|was|were|be|been|being)\s+(?:not\s+)?(?:being\s+)?(?:` + adverbPattern + `\s+)?([a-z]+)\b`)

// LooksPassive reports whether s reads as passive voice
// It matches the detector regex and also catches irregular participles ("is written")
func LooksPassive(s string) bool {
	if passiveRe.MatchString(s) {
		return true
	}
	return countPassives(s, lexicon.Default()) > 0
}

// MatchesDetector reports whether s would re-trigger the passive-voice detector regex
func MatchesDetector(s string) bool { return passiveRe.MatchString(s) }

// countPassives counts auxiliary + participle pairs using the lexicon
func countPassives(s string, lx *lexicon.Lexicon) int {
	n := 0
	for _, m := range auxWordRe.FindAllStringSubmatch(s, -1) {
		w := strings.ToLower(m[1])
		if strings.HasSuffix(w, "ing") {
			continue
		}
		if lx.IsParticiple(w) {
			n++
		}
	}
	return n
}
