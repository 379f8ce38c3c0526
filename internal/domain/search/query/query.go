// Package query analyzes raw search text into its normalized forms and the
// heuristic flags that steer field selection and ranking.
package query

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/policysearch/internal/domain/text"
)

// Length thresholds for the script classifiers.
const (
	shortMaxLen        = 2
	asciiTokenMinLen   = 3
	asciiLongTokenLen  = 8
	cjkTokenMinLen     = 3
	idMinLen           = 12
	idMinCaseTransfers = 2
)

var registryRoots = []string{"HKCU", "HKLM", "HKEYCURRENTUSER", "HKEYLOCALMACHINE"}

var registryFragments = []string{`policies\`, `software\`, `system\`, `microsoft\`}

// Query is an analyzed search string. All derived forms are computed once
// from Raw.
type Query struct {
	raw         string
	strict      string
	loose       string
	ngramStrict string
	ngramLoose  string
	andMode     bool
}

// New analyzes raw with the default n-gram bounds.
func New(raw string, andMode bool) Query {
	return NewWithBounds(raw, andMode, text.DefaultMinN, text.DefaultMaxN)
}

// NewWithBounds analyzes raw with explicit n-gram bounds.
func NewWithBounds(raw string, andMode bool, minN, maxN int) Query {
	strict := text.Strict(raw)
	loose := text.LooseFromStrict(strict)
	return Query{
		raw:         raw,
		strict:      strict,
		loose:       loose,
		ngramStrict: text.NGramTokens(strict, minN, maxN),
		ngramLoose:  text.NGramTokens(loose, minN, maxN),
		andMode:     andMode,
	}
}

// Raw returns the text as typed.
func (q Query) Raw() string { return q.raw }

// Strict returns the strict normalized form.
func (q Query) Strict() string { return q.strict }

// Loose returns the loose normalized form.
func (q Query) Loose() string { return q.loose }

// NGramStrict returns the space-joined n-gram tokens of the strict form.
func (q Query) NGramStrict() string { return q.ngramStrict }

// NGramLoose returns the space-joined n-gram tokens of the loose form.
func (q Query) NGramLoose() string { return q.ngramLoose }

// AndMode reports whether every word must match.
func (q Query) AndMode() bool { return q.andMode }

// IsEmpty reports whether nothing searchable survived normalization.
func (q Query) IsEmpty() bool { return q.strict == "" }

// IsShort reports whether the strict form is too short to index reliably.
func (q Query) IsShort() bool { return text.Len(q.strict) <= shortMaxLen }

// IsSingleToken reports whether the strict form has no space.
func (q Query) IsSingleToken() bool { return !strings.Contains(q.strict, " ") }

// IsPhraseMode reports an OR-mode multi-word query, matched as one phrase
// regardless of word boundaries.
func (q Query) IsPhraseMode() bool { return !q.andMode && strings.Contains(q.strict, " ") }

// TokenCount returns the number of words in the strict form.
func (q Query) TokenCount() int { return len(strings.Fields(q.strict)) }

// Terms returns what must match: every word in AND mode, otherwise the whole
// strict phrase.
func (q Query) Terms() []string {
	if q.strict == "" {
		return nil
	}
	if q.andMode {
		return strings.Fields(q.strict)
	}
	return []string{q.strict}
}

// IsWildcard reports whether the raw text uses '*' or '?'.
func (q Query) IsWildcard() bool { return strings.ContainsAny(q.raw, "*?") }

// LooksLikeRegistry reports whether the raw text resembles a registry path.
func (q Query) LooksLikeRegistry() bool { return LooksLikeRegistry(q.raw) }

// LooksLikeID reports whether the raw text resembles a policy unique id.
func (q Query) LooksLikeID() bool { return LooksLikeID(q.raw) }

// IsShortASCIIToken reports a single ASCII alphanumeric token of length >= 3.
func (q Query) IsShortASCIIToken() bool { return q.isASCIIToken(asciiTokenMinLen) }

// IsLongASCIIToken reports a single ASCII alphanumeric token of length >= 8.
func (q Query) IsLongASCIIToken() bool { return q.isASCIIToken(asciiLongTokenLen) }

// IsCJKToken reports a single token of length >= 3 with at least one CJK rune.
func (q Query) IsCJKToken() bool {
	return q.IsSingleToken() && text.Len(q.strict) >= cjkTokenMinLen && text.HasCJK(q.strict)
}

func (q Query) isASCIIToken(minLen int) bool {
	return q.IsSingleToken() && len(q.strict) >= minLen && text.IsASCIIAlnum(q.strict)
}

// LooksLikeRegistry reports whether s contains a backslash, starts with a
// hive abbreviation or name, or contains a well-known key fragment.
func LooksLikeRegistry(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, `\`) {
		return true
	}
	compact := strings.ToUpper(strings.NewReplacer("_", "", " ", "").Replace(s))
	for _, root := range registryRoots {
		if strings.HasPrefix(compact, root) {
			return true
		}
	}
	lower := strings.ToLower(s)
	for _, frag := range registryFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// LooksLikeID reports whether s contains a colon, or is one space-free token
// of at least 12 runes with two or more lower-to-upper case transitions.
func LooksLikeID(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, ":") {
		return true
	}
	if strings.ContainsFunc(s, unicode.IsSpace) || text.Len(s) < idMinLen {
		return false
	}
	transitions := 0
	prevLower := false
	for _, r := range s {
		if prevLower && unicode.IsUpper(r) {
			transitions++
		}
		prevLower = unicode.IsLower(r)
	}
	return transitions >= idMinCaseTransfers
}
