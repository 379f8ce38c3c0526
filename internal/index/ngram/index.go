// Package ngram implements an immutable n-gram inverted index over
// already-normalized document text.
package ngram

import (
	"sort"

	"github.com/kailas-cloud/policysearch/internal/domain/text"
)

// Document is one indexable (id, normalized text) pair.
type Document struct {
	ID   string
	Text string
}

// Options configures the n-gram lengths.
type Options struct {
	MinN int
	MaxN int
}

// DefaultOptions returns the 2..3 gram configuration.
func DefaultOptions() Options {
	return Options{MinN: text.DefaultMinN, MaxN: text.DefaultMaxN}
}

func (o Options) withDefaults() Options {
	if o.MinN <= 0 {
		o.MinN = text.DefaultMinN
	}
	if o.MaxN < o.MinN {
		o.MaxN = o.MinN
	}
	return o
}

// Index is a read-only inverted map from n-gram token to sorted document ids.
// It is never mutated after Build returns and is safe for concurrent readers.
type Index struct {
	opts     Options
	postings map[string][]string
	docs     int
}

// Build tokenizes every document and returns a new index. Documents with
// duplicate ids are merged; empty texts contribute no postings.
func Build(docs []Document, opts Options) *Index {
	opts = opts.withDefaults()
	sets := make(map[string]map[string]struct{})
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		seen[d.ID] = struct{}{}
		for _, tok := range text.NGrams(d.Text, opts.MinN, opts.MaxN) {
			ids, ok := sets[tok]
			if !ok {
				ids = make(map[string]struct{})
				sets[tok] = ids
			}
			ids[d.ID] = struct{}{}
		}
	}

	postings := make(map[string][]string, len(sets))
	for tok, ids := range sets {
		list := make([]string, 0, len(ids))
		for id := range ids {
			list = append(list, id)
		}
		sort.Strings(list)
		postings[tok] = list
	}
	return &Index{opts: opts, postings: postings, docs: len(seen)}
}

// Query returns the ids whose text contains every n-gram of term. The second
// return value is false when term is too short to yield an n-gram of MinN
// runes: the index cannot answer and the caller should consider a scan. An
// answered query with no matches returns an empty, non-nil slice and true.
func (ix *Index) Query(term string) ([]string, bool) {
	if ix == nil {
		return nil, false
	}
	grams := text.NGrams(term, ix.opts.MinN, ix.opts.MaxN)
	if len(grams) == 0 {
		return nil, false
	}

	lists := make([][]string, 0, len(grams))
	for _, g := range grams {
		list, ok := ix.postings[g]
		if !ok {
			return []string{}, true
		}
		lists = append(lists, list)
	}
	// Shortest list first keeps the intersection small.
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	out := append([]string(nil), lists[0]...)
	for _, list := range lists[1:] {
		out = intersect(out, list)
		if len(out) == 0 {
			break
		}
	}
	if out == nil {
		out = []string{}
	}
	return out, true
}

// Len returns the number of distinct documents indexed.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.docs
}

// Terms returns the number of distinct n-gram tokens.
func (ix *Index) Terms() int {
	if ix == nil {
		return 0
	}
	return len(ix.postings)
}

// Options returns the n-gram configuration the index was built with.
func (ix *Index) Options() Options { return ix.opts }

// intersect merges two sorted id lists.
func intersect(a, b []string) []string {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
