package pattern

import (
	"regexp"
	"strings"

	"stylefix/internal/core/lexicon"
)

// defaultAgent stands in when a passive sentence names no actor
const defaultAgent = "the system"

var (
	navigationRe = regexp.MustCompile(`(?i)^(?P<lead>.*?)\byou(?:\s+will|'ll)\s+be\s+(?P<part>[a-z]+)\s+(?P<prep>back\s+to|to|into|onto)\s+(?P<dest>.+)$`)
	itWhenRe     = regexp.MustCompile(`(?i)^(?P<lead>.*?)\bit\s+is\s+(?P<adv>` + adverbPattern + `\s+)?(?P<part>[a-z]+)\s+(?P<when>when|whenever)\s+(?P<clause>.+)$`)
	needsToBeRe  = regexp.MustCompile(`(?i)^(?P<subj>.+?)\s+(?P<need>needs|need)\s+to\s+be\s+(?P<adv>` + adverbPattern + `\s+)?(?P<part>[a-z]+)\b(?P<rest>.*)$`)
	genericRe    = regexp.MustCompile(`(?i)\b(is|are|was|were)\s+(not\s+)?(` + adverbPattern + `\s+)?([a-z]+)\b`)
)

// table is the strategy table in priority order
// The generic passive rule is the catch-all and must stay last
func table(lx *lexicon.Lexicon) []rule {
	modalRe := regexp.MustCompile(`(?i)^(?P<subj>.+?)\s+(?P<aux>` + strings.Join(lx.Modals(), "|") +
		`)\s+(?P<neg>not\s+)?be\s+(?P<adv>` + adverbPattern + `\s+)?(?P<part>[a-z]+)\b(?P<rest>.*)$`)

	return []rule{
		{
			name:       "modal_passive",
			categories: []string{CategoryPassive, CategoryModal, CategoryOther},
			match:      byRegexp(modalRe),
			extract:    extractModal,
			rewrite:    rewriteModal,
		},
		{
			name:       "navigation",
			categories: []string{CategoryPassive, CategoryOther},
			match:      byRegexp(navigationRe),
			extract:    extractNavigation,
			rewrite:    rewriteNavigation,
		},
		{
			name:       "it_is_when",
			categories: []string{CategoryPassive, CategoryVerbForm, CategoryOther},
			match:      byRegexp(itWhenRe),
			extract:    extractItWhen,
			rewrite:    rewriteItWhen,
		},
		{
			name:       "needs_to_be",
			categories: []string{CategoryPassive, CategoryVerbForm, CategoryModal, CategoryOther},
			match:      byRegexp(needsToBeRe),
			extract:    extractNeedsToBe,
			rewrite:    rewriteNeedsToBe,
		},
		{
			name:       "generic_passive",
			categories: []string{CategoryPassive, CategoryOther},
			match:      matchGeneric,
			extract:    extractGeneric,
			rewrite:    rewriteGeneric,
		},
	}
}

// "The following requirements must be met" -> "You must meet the following requirements"

func extractModal(lx *lexicon.Lexicon, m map[string]string) (parts, bool) {
	base, ok := lx.BaseForm(m["part"])
	if !ok {
		return parts{}, false
	}
	lead, subj := splitLead(strings.TrimSpace(m["subj"]))
	if subj == "" || isPronounYou(subj) || dummySubject(subj) {
		return parts{}, false
	}
	p := parts{
		lead:    lead,
		subject: subj,
		aux:     strings.ToLower(m["aux"]),
		negated: m["neg"] != "",
		adverb:  strings.TrimSpace(m["adv"]),
		base:    base,
		rest:    m["rest"],
	}
	if agent, rest, ok := splitAgent(p.rest); ok {
		p.agent, p.rest = agentForm(agent), rest
	}
	return p, true
}

func rewriteModal(lx *lexicon.Lexicon, p parts) []string {
	subject := "you"
	if p.agent != "" {
		subject = p.agent
	}
	verb := p.aux
	if p.negated {
		verb += " not"
	}
	return []string{join(p.lead, subject, verb, p.adverb, p.base, objectForm(p.subject, lx), p.rest)}
}

// "You will be redirected to the home page" -> "The system redirects you to the home page"

func extractNavigation(lx *lexicon.Lexicon, m map[string]string) (parts, bool) {
	base, ok := lx.BaseForm(m["part"])
	if !ok || strings.TrimSpace(m["dest"]) == "" {
		return parts{}, false
	}
	lead := m["lead"]
	if strings.TrimSpace(lead) != "" && !strings.HasSuffix(strings.TrimSpace(lead), ",") {
		return parts{}, false
	}
	return parts{
		lead: lead,
		base: base,
		aux:  strings.ToLower(strings.Join(strings.Fields(m["prep"]), " ")),
		dest: strings.TrimSpace(m["dest"]),
	}, true
}

func rewriteNavigation(lx *lexicon.Lexicon, p parts) []string {
	verbs := []string{lx.ThirdPerson(p.base)}
	if lx.IsNavigationVerb(p.base) {
		verbs = append(verbs, lx.NavigationSynonyms()...)
	}
	seen := map[string]bool{}
	var out []string
	for _, v := range verbs {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, join(p.lead, defaultAgent, v, "you", p.aux, p.dest))
		if len(out) == MaxRewrites {
			break
		}
	}
	return out
}

// "It is used when you export data" -> "Use it when you export data"

func extractItWhen(lx *lexicon.Lexicon, m map[string]string) (parts, bool) {
	base, ok := lx.BaseForm(m["part"])
	if !ok || strings.TrimSpace(m["clause"]) == "" {
		return parts{}, false
	}
	lead := m["lead"]
	if strings.TrimSpace(lead) != "" && !strings.HasSuffix(strings.TrimSpace(lead), ",") {
		return parts{}, false
	}
	return parts{
		lead:   lead,
		base:   base,
		adverb: strings.TrimSpace(m["adv"]),
		aux:    strings.ToLower(m["when"]),
		rest:   strings.TrimSpace(m["clause"]),
	}, true
}

func rewriteItWhen(_ *lexicon.Lexicon, p parts) []string {
	return []string{join(p.lead, p.adverb, p.base, "it", p.aux, p.rest)}
}

// "The certificate needs to be renewed every year" -> "You need to renew the certificate every year"

func extractNeedsToBe(lx *lexicon.Lexicon, m map[string]string) (parts, bool) {
	base, ok := lx.BaseForm(m["part"])
	if !ok {
		return parts{}, false
	}
	lead, subj := splitLead(strings.TrimSpace(m["subj"]))
	if subj == "" || isPronounYou(subj) || dummySubject(subj) {
		return parts{}, false
	}
	p := parts{
		lead:    lead,
		subject: subj,
		adverb:  strings.TrimSpace(m["adv"]),
		base:    base,
		rest:    m["rest"],
	}
	if agent, rest, ok := splitAgent(p.rest); ok {
		p.agent, p.rest = agentForm(agent), rest
	}
	return p, true
}

func rewriteNeedsToBe(lx *lexicon.Lexicon, p parts) []string {
	head := "you need to"
	if p.agent != "" {
		need := "needs"
		if pluralAgent(p.agent) {
			need = "need"
		}
		head = join(p.agent, need, "to")
	}
	return []string{join(p.lead, head, p.adverb, p.base, objectForm(p.subject, lx), p.rest)}
}

// "The report is generated every night" -> "The system generates the report every night"
// "data sources that are configured to X" -> "data sources that the system configures to X"

// matchGeneric picks the first auxiliary whose following word is a participle
func matchGeneric(lx *lexicon.Lexicon, body string) map[string]string {
	for _, loc := range genericRe.FindAllStringSubmatchIndex(body, -1) {
		part := body[loc[8]:loc[9]]
		if strings.HasSuffix(strings.ToLower(part), "ing") || !lx.IsParticiple(part) {
			continue
		}
		m := map[string]string{
			"before": body[:loc[0]],
			"aux":    body[loc[2]:loc[3]],
			"part":   part,
			"after":  body[loc[1]:],
		}
		if loc[4] >= 0 {
			m["neg"] = body[loc[4]:loc[5]]
		}
		if loc[6] >= 0 {
			m["adv"] = body[loc[6]:loc[7]]
		}
		return m
	}
	return nil
}

func extractGeneric(lx *lexicon.Lexicon, m map[string]string) (parts, bool) {
	base, ok := lx.BaseForm(m["part"])
	if !ok {
		return parts{}, false
	}
	before := strings.TrimSpace(m["before"])
	if before == "" {
		return parts{}, false
	}
	p := parts{
		aux:     strings.ToLower(m["aux"]),
		negated: m["neg"] != "",
		adverb:  strings.TrimSpace(m["adv"]),
		part:    strings.ToLower(m["part"]),
		base:    base,
		rest:    m["after"],
	}
	if agent, rest, ok := splitAgent(p.rest); ok {
		p.agent, p.rest = agentForm(agent), rest
	}

	if relativePronouns[lastWord(before)] {
		p.relative = before
		return p, true
	}

	p.lead, p.subject = splitLead(before)
	if p.subject == "" || dummySubject(p.subject) {
		return parts{}, false
	}
	return p, true
}

func rewriteGeneric(lx *lexicon.Lexicon, p parts) []string {
	agent, plural := defaultAgent, false
	if p.agent != "" {
		agent, plural = p.agent, pluralAgent(p.agent)
	}
	verb := activeVerb(lx, p, plural)
	if p.relative != "" {
		return []string{join(p.relative, agent, verb, p.rest)}
	}
	return []string{join(p.lead, agent, verb, objectForm(p.subject, lx), p.rest)}
}

// activeVerb conjugates the main verb for the agent, keeping tense and negation
func activeVerb(lx *lexicon.Lexicon, p parts, plural bool) string {
	past := p.aux == "was" || p.aux == "were"
	if p.negated {
		do := "does not"
		switch {
		case past:
			do = "did not"
		case plural:
			do = "do not"
		}
		return join(do, p.adverb, p.base)
	}
	verb := lx.ThirdPerson(p.base)
	switch {
	case past:
		verb = lx.Past(p.part)
	case plural:
		verb = p.base
	}
	return join(p.adverb, verb)
}
