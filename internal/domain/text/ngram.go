package text

import (
	"sort"
	"strings"
	"unicode"
)

// Default n-gram bounds used by the index and the query analyzer.
const (
	DefaultMinN = 2
	DefaultMaxN = 3
)

// NGrams returns every contiguous rune substring of length minN..maxN of the
// normalized text with spaces removed, deduplicated and sorted in ordinal
// order. Text shorter than minN yields nil.
func NGrams(normalized string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		return nil
	}
	runes := []rune(Compact(normalized))
	if len(runes) < minN {
		return nil
	}

	seen := make(map[string]struct{}, len(runes)*(maxN-minN+1))
	out := make([]string, 0, len(runes)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			tok := string(runes[i : i+n])
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

// NGramTokens is NGrams joined with single spaces. The output is stable for a
// given input and therefore usable as a cache key.
func NGramTokens(normalized string, minN, maxN int) string {
	return strings.Join(NGrams(normalized, minN, maxN), " ")
}

// Compact removes all whitespace.
func Compact(s string) string {
	if !strings.ContainsFunc(s, unicode.IsSpace) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
