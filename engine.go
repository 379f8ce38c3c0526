// Package policysearch is an in-process, culture-aware fuzzy search engine
// over policy definitions.
package policysearch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/policysearch/internal/domain/culture"
	"github.com/kailas-cloud/policysearch/internal/domain/search/field"
	"github.com/kailas-cloud/policysearch/internal/domain/search/mode"
	"github.com/kailas-cloud/policysearch/internal/domain/search/request"
	"github.com/kailas-cloud/policysearch/internal/index/ngram"
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
	"github.com/kailas-cloud/policysearch/internal/repository/searchcache"
	searchuc "github.com/kailas-cloud/policysearch/internal/usecase/search"
)

type searcher interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

// Engine indexes policies and answers searches. It is safe for concurrent use:
// searches read an immutable snapshot while Rebuild prepares the next one.
type Engine struct {
	store    *corpus.Store
	search   searcher
	cultures culture.Options
}

// New creates an Engine with an empty index. Call Rebuild before searching.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.minN <= 0 || cfg.maxN < cfg.minN {
		return nil, fmt.Errorf("policysearch: invalid n-gram range %d..%d", cfg.minN, cfg.maxN)
	}

	store := corpus.NewStore(ngram.Options{MinN: cfg.minN, MaxN: cfg.maxN}, corpus.Metrics{}, cfg.logger)
	svc := searchuc.New(store, searchuc.Config{
		MinHitsBeforeFallback:  cfg.minHitsBeforeFallback,
		WildcardStripProlonged: cfg.wildcardStripProlonged,
		Weights:                cfg.weights,
	}, searchuc.Metrics{}, cfg.logger)

	e := &Engine{store: store, search: svc, cultures: cfg.cultures}
	if cfg.cacheSize > 0 {
		cached, err := searchcache.New(svc, store, cfg.cacheSize, nil, cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("policysearch: %w", err)
		}
		e.search = cached
	}
	return e, nil
}

// Rebuild replaces the index with policies. Invalid policies are skipped and
// counted in the returned stats. Searches running concurrently keep the old index.
func (e *Engine) Rebuild(ctx context.Context, policies []Policy) (IndexStats, error) {
	records := make([]corpus.Record, len(policies))
	for i, p := range policies {
		records[i] = corpus.Record{ID: p.ID, RegistryPath: p.RegistryPath, Texts: p.Texts}
	}
	stats, err := e.store.Rebuild(ctx, records)
	if err != nil {
		return IndexStats{}, fmt.Errorf("rebuild: %w", err)
	}
	return IndexStats{
		Version:  stats.Version,
		Indexed:  stats.Indexed,
		Skipped:  stats.Skipped,
		Terms:    stats.Terms,
		Cultures: stats.Cultures,
		Duration: stats.Duration,
	}, nil
}

// Search runs a ranked search against the current index.
func (e *Engine) Search(ctx context.Context, opts SearchOptions) (Result, error) {
	prefs := e.cultures
	if opts.Primary != "" {
		prefs.Primary = opts.Primary
	}
	if opts.Second != "" {
		prefs.Second = opts.Second
		prefs.SecondEnabled = true
	}
	if opts.SecondEnabled {
		prefs.SecondEnabled = true
	}

	flags := field.Flags(opts.Fields)
	if flags == field.FlagNone {
		flags = field.FlagAll
	}

	req, err := request.New(opts.Query, mode.Mode(opts.Mode), culture.Build(prefs), flags, opts.Limit)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	resp, err := e.search.Search(ctx, &req)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	return fromResponse(resp, req.Cultures()), nil
}

// Policy returns an indexed policy by id.
func (e *Engine) Policy(id string) (Policy, error) {
	snap := e.store.Current()
	if snap == nil {
		return Policy{}, ErrIndexNotReady
	}
	p, ok := snap.Policy(id)
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrPolicyNotFound, id)
	}
	rec := corpus.RecordFromPolicy(p)
	return Policy{ID: rec.ID, RegistryPath: rec.RegistryPath, Texts: rec.Texts}, nil
}

// Len returns the number of indexed policies.
func (e *Engine) Len() int {
	if snap := e.store.Current(); snap != nil {
		return snap.Len()
	}
	return 0
}

func fromResponse(resp searchuc.Response, prefs culture.Preference) Result {
	hits := make([]Hit, len(resp.Hits))
	for i, h := range resp.Hits {
		hits[i] = Hit{
			ID:           h.UniqueID(),
			DisplayName:  h.DisplayName(),
			RegistryPath: h.RegistryPath(),
			Score:        h.Score(),
		}
	}
	slots := make([]Slot, len(resp.Slots))
	for i, sl := range resp.Slots {
		slots[i] = Slot{Name: sl.Name, Role: Role(sl.Role.String()), Placeholder: sl.Placeholder}
	}
	return Result{
		Hits:     hits,
		Slots:    slots,
		Cultures: prefs.FlattenNames(),
		Fields: FieldSelection{
			Requested:   Field(resp.Fields.Requested),
			Name:        resp.Fields.UseName,
			ID:          resp.Fields.UseID,
			Registry:    resp.Fields.UseRegistry,
			Description: resp.Fields.UseDescription,
		},
		Unanswerable:    resp.Unanswerable,
		Wildcard:        resp.Wildcard,
		FallbackUsed:    resp.FallbackUsed,
		FallbackSkipped: resp.FallbackSkipped,
		SnapshotVersion: resp.SnapshotVersion,
	}
}
