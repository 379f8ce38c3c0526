package search

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/policysearch/internal/domain/search/result"
)

// Priority tiers.
const (
	TierOther    = 1
	TierRegistry = 2
	TierDirect   = 3
)

// Priority returns the tier of a hit for term. Tier 3: term found in the id,
// the display name or the registry value name (last path segment). Tier 2:
// term found elsewhere in the registry path. Tier 1: otherwise.
func Priority(h result.Hit, term string) int {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return TierOther
	}
	if containsFold(h.UniqueID(), term) || containsFold(h.DisplayName(), term) {
		return TierDirect
	}
	path := h.RegistryPath()
	if valueName := lastSegment(path); valueName != "" && containsFold(valueName, term) {
		return TierDirect
	}
	if containsFold(path, term) {
		return TierRegistry
	}
	return TierOther
}

// Rank orders hits by descending tier, descending score and ascending id
// (case-insensitive, then ordinal), and drops everything past limit.
// A non-positive limit keeps every hit. hits is not modified.
func Rank(hits []result.Hit, term string, limit int) []result.Hit {
	type ranked struct {
		hit   result.Hit
		tier  int
		lower string
	}
	rs := make([]ranked, len(hits))
	for i, h := range hits {
		rs[i] = ranked{hit: h, tier: Priority(h, term), lower: strings.ToLower(h.UniqueID())}
	}

	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.tier != b.tier {
			return a.tier > b.tier
		}
		if a.hit.Score() != b.hit.Score() {
			return a.hit.Score() > b.hit.Score()
		}
		if a.lower != b.lower {
			return a.lower < b.lower
		}
		return a.hit.UniqueID() < b.hit.UniqueID()
	})

	if limit > 0 && len(rs) > limit {
		rs = rs[:limit]
	}
	out := make([]result.Hit, len(rs))
	for i, r := range rs {
		out[i] = r.hit
	}
	return out
}

// scoreboard keeps the best score seen per policy id.
type scoreboard map[string]float64

func (sb scoreboard) add(id string, score float64) {
	if cur, ok := sb[id]; !ok || score > cur {
		sb[id] = score
	}
}

// merge folds other into sb, keeping the maximum per id.
func (sb scoreboard) merge(other scoreboard) {
	for id, score := range other {
		sb.add(id, score)
	}
}

// intersect keeps ids present in both boards and sums their scores.
func (sb scoreboard) intersect(other scoreboard) scoreboard {
	out := make(scoreboard, min(len(sb), len(other)))
	for id, score := range sb {
		if o, ok := other[id]; ok {
			out[id] = score + o
		}
	}
	return out
}

// lastSegment returns the registry value name: the text after the last
// separator once trailing separators are trimmed.
func lastSegment(path string) string {
	trimmed := strings.TrimRight(path, `\/`)
	if trimmed == "" {
		return ""
	}
	if i := strings.LastIndexAny(trimmed, `\/`); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func containsFold(s, lowerTerm string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerTerm)
}
