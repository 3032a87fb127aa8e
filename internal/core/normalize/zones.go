package normalize

// ZoneType identifies markup zones that sentence splitting must not cut through
type ZoneType string

const (
	// ZoneCodeFence is fenced code block
	ZoneCodeFence ZoneType = "code_fence"
	// ZoneCodeInline is inline code
	ZoneCodeInline ZoneType = "code_inline"
	// ZoneQuote is a quoted line
	ZoneQuote ZoneType = "quote"
)

// ZoneSpan is a byte-range [Start,End) over the scanned text
type ZoneSpan struct {
	Type       ZoneType
	Start, End int
}

// Zones is the result of DetectZones
type Zones []ZoneSpan

// Contains reports whether pos falls inside any zone of the given types (all types when none given)
func (zs Zones) Contains(pos int, types ...ZoneType) bool {
	for _, z := range zs {
		if pos < z.Start || pos >= z.End {
			continue
		}
		if len(types) == 0 {
			return true
		}
		for _, t := range types {
			if z.Type == t {
				return true
			}
		}
	}
	return false
}

// DetectZones scans raw document text and returns spans for
// - fenced code between ``` ... ``` (excluding the backticks)
// - inline code between ` ... ` (excluding backticks; not inside fences)
// - quoted lines that start with '>' (after any leading spaces) up to newline
// Offsets are bytes into text so callers can map back to the original document
func DetectZones(text string) Zones {
	if text == "" {
		return nil
	}
	var out Zones

	for i := 0; i+2 < len(text); {
		if text[i] == '`' && text[i+1] == '`' && text[i+2] == '`' {
			j := i + 3
			end := indexTripleBacktick(text, j)
			if end < 0 {
				// unterminated fence runs to the end of the text
				out = append(out, ZoneSpan{Type: ZoneCodeFence, Start: j, End: len(text)})
				break
			}
			if j < end {
				out = append(out, ZoneSpan{Type: ZoneCodeFence, Start: j, End: end})
			}
			i = end + 3
			continue
		}
		i++
	}

	inFence := func(pos int) bool {
		for _, z := range out {
			if z.Type == ZoneCodeFence && pos >= z.Start-3 && pos < z.End+3 {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '`' || inFence(i) {
			continue
		}
		j := i + 1
		for j < len(text) && text[j] != '`' && text[j] != '\n' {
			j++
		}
		if j < len(text) && text[j] == '`' && !inFence(j) {
			if i+1 < j {
				out = append(out, ZoneSpan{Type: ZoneCodeInline, Start: i + 1, End: j})
			}
			i = j
		}
	}

	lineStart := 0
	for lineStart <= len(text) {
		lineEnd := lineStart
		for lineEnd < len(text) && text[lineEnd] != '\n' {
			lineEnd++
		}
		i := lineStart
		for i < lineEnd && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		if i < lineEnd && text[i] == '>' && !inFence(i) {
			qs := i + 1
			for qs < lineEnd && text[qs] == ' ' {
				qs++
			}
			if qs < lineEnd {
				out = append(out, ZoneSpan{Type: ZoneQuote, Start: qs, End: lineEnd})
			}
		}
		if lineEnd == len(text) {
			break
		}
		lineStart = lineEnd + 1
	}

	return out
}

func indexTripleBacktick(s string, from int) int {
	for i := from; i+2 < len(s); i++ {
		if s[i] == '`' && s[i+1] == '`' && s[i+2] == '`' {
			return i
		}
	}
	return -1
}
