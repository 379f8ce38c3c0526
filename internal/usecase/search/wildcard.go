package search

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/kailas-cloud/policysearch/internal/domain/text"
)

// wildcardMatcher matches field text against a '*'/'?' pattern. Both sides
// go through the same culture-specific normalizer; the pattern floats
// anywhere inside the text.
type wildcardMatcher struct {
	pattern string
	glob    glob.Glob
	norm    text.Normalizer
}

func newWildcardMatcher(raw, cultureName string, stripProlonged bool) (*wildcardMatcher, error) {
	norm := text.ForCulture(cultureName, stripProlonged)
	pattern := "*" + quoteLiterals(norm.Normalize(raw)) + "*"
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile wildcard %q: %w", raw, err)
	}
	return &wildcardMatcher{pattern: pattern, glob: g, norm: norm}, nil
}

// Match reports whether the raw field text matches.
func (m *wildcardMatcher) Match(raw string) bool {
	if raw == "" {
		return false
	}
	return m.glob.Match(m.norm.Normalize(raw))
}

// quoteLiterals escapes glob metacharacters other than '*' and '?'.
func quoteLiterals(s string) string {
	var b strings.Builder
	start := 0
	for i, r := range s {
		if r != '*' && r != '?' {
			continue
		}
		b.WriteString(glob.QuoteMeta(s[start:i]))
		b.WriteRune(r)
		start = i + 1
	}
	b.WriteString(glob.QuoteMeta(s[start:]))
	return b.String()
}
