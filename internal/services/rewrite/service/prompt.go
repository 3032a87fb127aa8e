package service

import (
	"fmt"
	"strings"

	"stylefix/internal/core/normalize"
	"stylefix/internal/core/sentence"
	gdom "stylefix/internal/services/guidance/domain"
)

// Prompt bounds
const (
	MaxGuidance       = 3
	guidanceSentences = 2
	minWordLimit      = 20
	wordLimitMargin   = 5
	maxGuidanceRunes  = 400
)

// systemPrompt frames the backend as a rewriter and fixes the output contract
const systemPrompt = `You are a technical-writing rewriter. You fix one sentence at a time so it follows technical documentation style.
Respond only with labeled lines in this exact shape:
OPTION 1: <rewritten sentence>
OPTION 2: <rewritten sentence>
OPTION 3: <rewritten sentence>
WHY: <one short reason>
Do not add any other commentary, headings or quotes.`

// WordLimit is the per-option word cap given to the backend
func WordLimit(original string) int {
	return max(minWordLimit, normalize.WordCount(original)+wordLimitMargin)
}

// BuildPrompt renders the user prompt for one rewrite
func BuildPrompt(original, issue string, guidance []gdom.Hit) string {
	var sb strings.Builder
	sb.WriteString("Issue: ")
	sb.WriteString(oneLine(issue, "style issue"))
	sb.WriteString("\nSentence: ")
	sb.WriteString(oneLine(original, ""))
	sb.WriteString("\n")

	if bullets := guidanceBullets(guidance); len(bullets) > 0 {
		sb.WriteString("\nGuidance from the style guide:\n")
		for _, b := range bullets {
			sb.WriteString("- ")
			sb.WriteString(b)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nRules:\n")
	sb.WriteString("- Give up to three different options labeled OPTION 1, OPTION 2 and OPTION 3, then one WHY line.\n")
	sb.WriteString("- Preserve the meaning, product names, numbers, code and acronyms.\n")
	sb.WriteString("- Prefer active voice and the imperative mood. Do not use passive constructions such as \"is configured\".\n")
	fmt.Fprintf(&sb, "- Keep each option to %d words or fewer.\n", WordLimit(original))
	sb.WriteString("- Do not repeat the original sentence unchanged.\n")
	return sb.String()
}

// guidanceBullets keeps at most MaxGuidance hits, each cut to its first two sentences
func guidanceBullets(hits []gdom.Hit) []string {
	out := make([]string, 0, MaxGuidance)
	seen := map[string]bool{}
	for _, h := range hits {
		if len(out) == MaxGuidance {
			break
		}
		b := oneLine(sentence.First(h.SolutionText, guidanceSentences), "")
		if b == "" || seen[normalize.Key(b)] {
			continue
		}
		seen[normalize.Key(b)] = true
		if r := []rune(b); len(r) > maxGuidanceRunes {
			b = strings.TrimSpace(string(r[:maxGuidanceRunes])) + "..."
		}
		out = append(out, b)
	}
	return out
}

func oneLine(s, def string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return def
	}
	return s
}
