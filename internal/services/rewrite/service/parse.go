package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	optionRe = regexp.MustCompile(`(?i)^[\s>*#_-]*option\s*([1-9])\s*[*_]*\s*[:.)\-]\s*(.*)$`)
	whyRe    = regexp.MustCompile(`(?i)^[\s>*#_-]*(?:why|rationale)\s*[*_]*\s*:\s*(.*)$`)
)

// parsed is the raw structure of a labeled response
type parsed struct {
	options []string
	why     string
}

// parseLabeled extracts OPTION n and WHY blocks; unlabeled lines continue the current block
// Options come back in label order; a repeated label keeps its first occurrence
func parseLabeled(raw string) parsed {
	type block struct {
		n    int
		text []string
	}
	var (
		blocks []block
		why    []string
		cur    *[]string
	)
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if m := optionRe.FindStringSubmatch(trimmed); m != nil {
			n, _ := strconv.Atoi(m[1])
			blocks = append(blocks, block{n: n, text: []string{m[2]}})
			cur = &blocks[len(blocks)-1].text
			continue
		}
		if m := whyRe.FindStringSubmatch(trimmed); m != nil {
			why = []string{m[1]}
			cur = &why
			continue
		}
		if trimmed == "" {
			cur = nil
			continue
		}
		if cur != nil {
			*cur = append(*cur, trimmed)
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].n < blocks[j].n })
	var p parsed
	seen := map[int]bool{}
	for _, b := range blocks {
		if seen[b.n] {
			continue
		}
		seen[b.n] = true
		if t := cleanOption(strings.Join(b.text, " ")); t != "" {
			p.options = append(p.options, t)
		}
	}
	p.why = cleanOption(strings.Join(why, " "))
	return p
}

// cleanOption strips markdown emphasis and wrapping quotes
func cleanOption(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, "*_` ")
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(s) >= 2 && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	return s
}
