package recovery

import (
	"regexp"
	"strings"
)

var (
	reFenceOpen  = regexp.MustCompile("```(?:json)?\\s*")
	reTrailComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// Strip removes markdown fencing and surrounding prose, leaving the widest
// candidate JSON span. Valid input comes back byte-identical apart from the
// fencing and whitespace around it.
func Strip(raw string) string {
	s := reFenceOpen.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}
	// models sometimes lead with prose before the object
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// RemoveTrailingCommas deletes commas that sit immediately before a closing
// brace or bracket.
func RemoveTrailingCommas(s string) string {
	return reTrailComma.ReplaceAllString(s, "$1")
}

// Rebalance appends whatever closers the text is missing, in correct nesting
// order. The scan is string-aware so delimiters inside string literals do
// not count; text cut off inside a string literal gets its quote closed
// first.
func Rebalance(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// repairStructural fixes trailing commas and missing closers, then re-parses.
func repairStructural(s string) (Envelope, bool) {
	fixed := Rebalance(RemoveTrailingCommas(s))
	env, err := ParseEnvelope([]byte(fixed))
	return env, err == nil
}

// repairTruncated cuts the text at its last top-level closing delimiter,
// provided a matching opener exists, then rebalances and re-parses. This
// recovers responses chopped mid-element by an output limit.
func repairTruncated(s string) (Envelope, bool) {
	cut, ok := cutAtLastClosed(s)
	if !ok {
		return Envelope{}, false
	}
	return repairStructural(cut)
}

// cutAtLastClosed finds the last closing brace or bracket with a matching
// opener (by backward depth count) and returns the prefix up to and
// including it.
func cutAtLastClosed(s string) (string, bool) {
	lastBrace := strings.LastIndexByte(s, '}')
	lastBracket := strings.LastIndexByte(s, ']')

	pos := lastBrace
	open, closer := byte('{'), byte('}')
	if lastBracket > lastBrace {
		pos = lastBracket
		open, closer = '[', ']'
	}
	if pos < 0 {
		return "", false
	}

	depth := 0
	for i := pos; i >= 0; i-- {
		switch s[i] {
		case closer:
			depth++
		case open:
			depth--
			if depth == 0 {
				return s[:pos+1], true
			}
		}
	}
	// no matching opener; still cut at the closer and let rebalancing try
	return s[:pos+1], true
}

// prefixPercentages are the progressively shorter prefixes tried when
// truncation repair fails.
var prefixPercentages = []int{95, 90, 85, 80, 75, 70, 65, 60, 55, 50}

// searchPrefixes tries decreasing prefixes of the text, rebalancing each,
// and returns the first that parses.
func searchPrefixes(s string) (Envelope, bool) {
	for _, pct := range prefixPercentages {
		n := len(s) * pct / 100
		if n == 0 {
			break
		}
		fixed := Rebalance(s[:n])
		if env, err := ParseEnvelope([]byte(fixed)); err == nil {
			return env, true
		}
	}
	return Envelope{}, false
}
