package corpus

import (
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/policysearch/internal/domain/policy"
	"github.com/kailas-cloud/policysearch/internal/domain/search/field"
	"github.com/kailas-cloud/policysearch/internal/domain/text"
	"github.com/kailas-cloud/policysearch/internal/index/ngram"
)

// Key addresses one searchable text column: a field in a culture.
// Culture is empty for culture-neutral fields (id, registry).
type Key struct {
	Field   field.Kind
	Culture string
}

// KeyFor builds the Key for a field, dropping the culture for neutral fields.
func KeyFor(kind field.Kind, cultureName string) Key {
	if !kind.Localized() {
		return Key{Field: kind}
	}
	return Key{Field: kind, Culture: strings.ToLower(cultureName)}
}

// Term is a search term in both normalized strengths.
type Term struct {
	Strict string
	Loose  string
}

// NewTerm derives the loose form from an already-strict term.
func NewTerm(strict string) Term {
	return Term{Strict: strict, Loose: text.LooseFromStrict(strict)}
}

type stored struct {
	strict string // compacted strict text
	loose  string // compacted loose text
}

// Snapshot is one immutable, consistent version of the searchable corpus.
type Snapshot struct {
	version  uint64
	builtAt  time.Time
	opts     ngram.Options
	order    []string
	policies map[string]policy.Policy
	texts    map[Key]map[string]stored
	strict   map[Key]*ngram.Index
	loose    map[Key]*ngram.Index
	cultures []string
}

// Version returns the monotonically increasing snapshot version.
func (s *Snapshot) Version() uint64 { return s.version }

// BuiltAt returns when the snapshot was built.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len returns the number of policies.
func (s *Snapshot) Len() int { return len(s.order) }

// IDs returns every policy id in sorted order.
func (s *Snapshot) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Cultures returns the lower-cased cultures present in the corpus, sorted.
func (s *Snapshot) Cultures() []string {
	out := make([]string, len(s.cultures))
	copy(out, s.cultures)
	return out
}

// Policy returns the policy with the given id.
func (s *Snapshot) Policy(id string) (policy.Policy, bool) {
	p, ok := s.policies[id]
	return p, ok
}

// Terms returns the number of distinct strict and loose n-grams across all columns.
func (s *Snapshot) Terms() int {
	n := 0
	for _, ix := range s.strict {
		n += ix.Terms()
	}
	for _, ix := range s.loose {
		n += ix.Terms()
	}
	return n
}

// Lookup answers term from the n-gram indexes of one column. Candidates are
// verified by substring containment on the stored text, so the result holds
// no n-gram false positives. ok is false when neither index can answer.
func (s *Snapshot) Lookup(key Key, term Term) (ids []string, ok bool) {
	if !s.answerable(term) {
		return nil, false
	}
	// A column absent from the corpus has nil indexes, which answer nothing.
	strictIDs, _ := s.strict[key].Query(term.Strict)
	looseIDs, _ := s.loose[key].Query(term.Loose)

	seen := make(map[string]struct{}, len(strictIDs)+len(looseIDs))
	ids = make([]string, 0, len(strictIDs)+len(looseIDs))
	for _, list := range [][]string{strictIDs, looseIDs} {
		for _, id := range list {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if s.Match(key, id, term) {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, true
}

// Match reports whether the stored text of id in the column contains term in
// either strength. Whitespace is ignored on both sides.
func (s *Snapshot) Match(key Key, id string, term Term) bool {
	st, ok := s.texts[key][id]
	if !ok {
		return false
	}
	if t := text.Compact(term.Strict); t != "" && strings.Contains(st.strict, t) {
		return true
	}
	if t := text.Compact(term.Loose); t != "" && strings.Contains(st.loose, t) {
		return true
	}
	return false
}

// Scan linearly checks every policy of the column, in id order.
func (s *Snapshot) Scan(key Key, term Term) []string {
	col := s.texts[key]
	out := make([]string, 0)
	for _, id := range s.order {
		if _, ok := col[id]; ok && s.Match(key, id, term) {
			out = append(out, id)
		}
	}
	return out
}

// FieldText returns the raw, un-normalized text of a policy field.
func (s *Snapshot) FieldText(id string, kind field.Kind, cultureName string) (string, bool) {
	p, ok := s.policies[id]
	if !ok {
		return "", false
	}
	return fieldText(p, kind, cultureName)
}

func fieldText(p policy.Policy, kind field.Kind, cultureName string) (string, bool) {
	switch kind {
	case field.ID:
		return p.ID(), true
	case field.Registry:
		return p.RegistryPath(), p.RegistryPath() != ""
	case field.Name:
		t, ok := p.Text(cultureName)
		return t.DisplayName, ok && t.DisplayName != ""
	case field.Description:
		t, ok := p.Text(cultureName)
		return t.Description, ok && t.Description != ""
	}
	return "", false
}

// answerable reports whether either form of term yields an n-gram of the
// minimum length.
func (s *Snapshot) answerable(term Term) bool {
	return text.Len(text.Compact(term.Strict)) >= s.opts.MinN ||
		text.Len(text.Compact(term.Loose)) >= s.opts.MinN
}
