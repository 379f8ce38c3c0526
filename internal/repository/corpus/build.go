package corpus

import (
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policysearch/internal/domain"
	"github.com/kailas-cloud/policysearch/internal/domain/policy"
	"github.com/kailas-cloud/policysearch/internal/domain/search/field"
	"github.com/kailas-cloud/policysearch/internal/domain/text"
	"github.com/kailas-cloud/policysearch/internal/index/ngram"
)

// BuildStats summarizes one snapshot build.
type BuildStats struct {
	Version  uint64        `json:"version"`
	Indexed  int           `json:"indexed"`
	Skipped  int           `json:"skipped"`
	Columns  int           `json:"columns"`
	Terms    int           `json:"terms"`
	Cultures []string      `json:"cultures"`
	Duration time.Duration `json:"duration_ns"`
}

// Build validates records and builds a new snapshot. A malformed record is
// logged and skipped; it never aborts the build.
func Build(records []Record, version uint64, opts ngram.Options, logger *zap.Logger) (*Snapshot, BuildStats) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	opts = normalizeOptions(opts)

	snap := &Snapshot{
		version:  version,
		opts:     opts,
		policies: make(map[string]policy.Policy, len(records)),
		texts:    make(map[Key]map[string]stored),
		strict:   make(map[Key]*ngram.Index),
		loose:    make(map[Key]*ngram.Index),
	}

	skipped := 0
	for i, rec := range records {
		p, err := rec.toPolicy()
		if err == nil {
			if _, dup := snap.policies[p.ID()]; dup {
				err = errors.New("duplicate policy id")
			}
		}
		if err != nil {
			skipped++
			invalid := &domain.InvalidPolicyError{Position: i, ID: rec.ID, Reason: err.Error()}
			logger.Warn("skip policy", zap.Error(invalid))
			continue
		}
		snap.policies[p.ID()] = p
		snap.order = append(snap.order, p.ID())
		snap.addTexts(p)
	}
	sort.Strings(snap.order)
	snap.buildIndexes()
	snap.builtAt = time.Now()

	stats := BuildStats{
		Version:  version,
		Indexed:  len(snap.order),
		Skipped:  skipped,
		Columns:  len(snap.texts),
		Terms:    snap.Terms(),
		Cultures: snap.Cultures(),
		Duration: time.Since(start),
	}
	logger.Info("corpus snapshot built",
		zap.Uint64("version", stats.Version),
		zap.Int("indexed", stats.Indexed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("columns", stats.Columns),
		zap.Duration("duration", stats.Duration),
	)
	return snap, stats
}

func normalizeOptions(opts ngram.Options) ngram.Options {
	if opts.MinN <= 0 {
		opts.MinN = text.DefaultMinN
	}
	if opts.MaxN < opts.MinN {
		opts.MaxN = opts.MinN
	}
	return opts
}

// addTexts stores the normalized text of every non-empty field of p.
func (s *Snapshot) addTexts(p policy.Policy) {
	put := func(key Key, raw string) {
		strict := text.Strict(raw)
		if strict == "" {
			return
		}
		col, ok := s.texts[key]
		if !ok {
			col = make(map[string]stored)
			s.texts[key] = col
		}
		col[p.ID()] = stored{
			strict: text.Compact(strict),
			loose:  text.Compact(text.LooseFromStrict(strict)),
		}
	}

	put(KeyFor(field.ID, ""), p.ID())
	put(KeyFor(field.Registry, ""), p.RegistryPath())
	for _, c := range p.Cultures() {
		t, _ := p.Text(c)
		put(KeyFor(field.Name, c), t.DisplayName)
		put(KeyFor(field.Description, c), t.Description)
	}
}

func (s *Snapshot) buildIndexes() {
	cultures := make(map[string]struct{})
	for key, col := range s.texts {
		if key.Culture != "" {
			cultures[key.Culture] = struct{}{}
		}
		strictDocs := make([]ngram.Document, 0, len(col))
		looseDocs := make([]ngram.Document, 0, len(col))
		for id, st := range col {
			strictDocs = append(strictDocs, ngram.Document{ID: id, Text: st.strict})
			looseDocs = append(looseDocs, ngram.Document{ID: id, Text: st.loose})
		}
		s.strict[key] = ngram.Build(strictDocs, s.opts)
		s.loose[key] = ngram.Build(looseDocs, s.opts)
	}
	s.cultures = make([]string, 0, len(cultures))
	for c := range cultures {
		s.cultures = append(s.cultures, c)
	}
	sort.Strings(s.cultures)
}
