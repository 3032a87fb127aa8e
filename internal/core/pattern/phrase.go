package pattern

import (
	"regexp"
	"strings"

	"stylefix/internal/core/casing"
)

// introWords open a leading adverbial that is kept verbatim in front of the rewrite
var introWords = map[string]bool{
	"after": true, "before": true, "when": true, "whenever": true, "if": true, "once": true,
	"in": true, "on": true, "for": true, "by": true, "during": true, "while": true, "to": true,
	"as": true, "since": true, "until": true, "then": true, "next": true, "first": true,
	"finally": true, "however": true, "also": true, "here": true, "now": true, "note": true,
	"optionally": true, "otherwise": true, "therefore": true, "thus": true, "from": true, "at": true,
}

var objectPronoun = map[string]string{
	"i": "me", "we": "us", "they": "them", "he": "him", "she": "her", "it": "it", "you": "you",
}

var subjectPronoun = map[string]string{
	"me": "I", "us": "we", "them": "they", "him": "he", "her": "she", "it": "it", "you": "you",
}

var relativePronouns = map[string]bool{"that": true, "which": true, "who": true}

// agentRe splits "by <agent> [tail]" where tail starts at a preposition, conjunction or comma
var agentRe = regexp.MustCompile(`(?i)^\s+by\s+(.+?)(\s+(?:before|after|when|whenever|if|once|during|while|within|until|to|in|on|at|for|from|with|using|via|every|each|and|but|so)\b.*|,.*)?$`)

// splitLead separates a leading adverbial ("After login, ") from the clause subject
func splitLead(s string) (lead, rest string) {
	i := strings.LastIndex(s, ", ")
	if i < 0 {
		return "", s
	}
	head := strings.TrimSpace(s[:i])
	tail := strings.TrimSpace(s[i+2:])
	if head == "" || tail == "" {
		return "", s
	}
	first := strings.ToLower(strings.Fields(head)[0])
	single := len(strings.Fields(head)) == 1 && strings.HasSuffix(first, "ly")
	if !introWords[first] && !single {
		return "", s
	}
	return s[:i+2], tail
}

// objectForm turns a subject phrase into an object phrase
func objectForm(subj string, ac casing.Acronyms) string {
	subj = strings.TrimSpace(subj)
	fields := strings.Fields(subj)
	if len(fields) == 0 {
		return ""
	}
	low := strings.ToLower(fields[0])
	if len(fields) == 1 {
		if p, ok := objectPronoun[low]; ok {
			return p
		}
	}
	return casing.LowerFirst(subj, ac)
}

// dummySubject reports "It is recommended that ..." and "There are ..." style subjects,
// which have nothing to move into object position
func dummySubject(subj string) bool {
	switch strings.ToLower(strings.TrimSpace(subj)) {
	case "it", "there", "this", "that":
		return true
	}
	return false
}

// agentForm turns the object of "by" into a subject phrase
func agentForm(agent string) string {
	agent = strings.TrimSpace(agent)
	if p, ok := subjectPronoun[strings.ToLower(agent)]; ok {
		return p
	}
	return agent
}

// pluralAgent reports whether an agent phrase takes a plural verb
func pluralAgent(agent string) bool {
	low := strings.ToLower(strings.TrimSpace(agent))
	switch low {
	case "they", "we", "you", "i":
		return true
	}
	fields := strings.Fields(low)
	if len(fields) < 2 {
		return false
	}
	switch fields[0] {
	case "the", "these", "those", "all", "some", "many", "our", "your", "their", "both", "several":
	default:
		return false
	}
	last := fields[len(fields)-1]
	return strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "ss") &&
		!strings.HasSuffix(last, "us") && !strings.HasSuffix(last, "is")
}

// splitAgent extracts an explicit agent from text following the participle
// ok is false when there is no usable "by" phrase
func splitAgent(after string) (agent, rest string, ok bool) {
	m := agentRe.FindStringSubmatch(after)
	if m == nil {
		return "", after, false
	}
	agent = strings.TrimSpace(m[1])
	first := strings.ToLower(strings.Fields(agent)[0])
	if first == "default" || strings.HasSuffix(first, "ing") {
		return "", after, false
	}
	return agent, m[2], true
}

func isPronounYou(s string) bool { return strings.EqualFold(strings.TrimSpace(s), "you") }

func lastWord(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(f[len(f)-1], ",;:"))
}

// balanced reports whether brackets and double quotes pair up
func balanced(s string) bool {
	depth := 0
	quotes := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return false
			}
		case '"':
			quotes++
		}
	}
	return depth == 0 && quotes%2 == 0
}

// join glues fragments with single spaces and no space before punctuation
func join(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 && !strings.ContainsAny(p[:1], ",.;:!?)") {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}
