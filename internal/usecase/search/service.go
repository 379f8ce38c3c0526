package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policysearch/internal/domain"
	"github.com/kailas-cloud/policysearch/internal/domain/culture"
	"github.com/kailas-cloud/policysearch/internal/domain/search/field"
	"github.com/kailas-cloud/policysearch/internal/domain/search/request"
	"github.com/kailas-cloud/policysearch/internal/domain/search/result"
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
)

// Weights scale a match by the field and the culture slot it came from.
type Weights struct {
	Name        float64 `json:"name"`
	ID          float64 `json:"id"`
	Registry    float64 `json:"registry"`
	Description float64 `json:"description"`
	Primary     float64 `json:"primary"`
	Second      float64 `json:"second"`
	Fallback    float64 `json:"fallback"`
}

// DefaultWeights favor names over ids, registry paths and descriptions, and
// the cultures the user chose over fallback cultures.
func DefaultWeights() Weights {
	return Weights{
		Name:        1.0,
		ID:          0.9,
		Registry:    0.8,
		Description: 0.5,
		Primary:     1.0,
		Second:      0.9,
		Fallback:    0.5,
	}
}

func (w Weights) field(k field.Kind) float64 {
	switch k {
	case field.Name:
		return w.Name
	case field.ID:
		return w.ID
	case field.Registry:
		return w.Registry
	case field.Description:
		return w.Description
	}
	return 0
}

// Config tunes the search service.
type Config struct {
	// MinHitsBeforeFallback triggers the fallback scan when the index
	// produced fewer hits. An unanswerable index always triggers it.
	MinHitsBeforeFallback int
	// WildcardStripProlonged drops U+30FC from both sides of a wildcard match.
	WildcardStripProlonged bool
	Weights                Weights
}

// Metrics are the instruments the service updates. Nil fields are skipped.
type Metrics struct {
	Requests *prometheus.CounterVec   // label "outcome"
	Duration *prometheus.HistogramVec // label "path"
	Fallback *prometheus.CounterVec   // label "decision"
}

// Response is the ranked hit list plus what the search actually used.
type Response struct {
	Hits            []result.Hit
	Slots           []culture.Slot
	Fields          field.Set
	Wildcard        bool
	Unanswerable    bool
	FallbackUsed    bool
	FallbackSkipped bool
	SnapshotVersion uint64
}

// Service runs policy searches against the published corpus snapshot.
type Service struct {
	corpus  Corpus
	cfg     Config
	metrics Metrics
	logger  *zap.Logger
}

// New creates a search service.
func New(c Corpus, cfg Config, m Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	return &Service{corpus: c, cfg: cfg, metrics: m, logger: logger}
}

// Search executes req against one consistent snapshot.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	start := time.Now()
	snap := s.corpus.Current()
	if snap == nil {
		s.incRequests("not_ready")
		return Response{}, domain.ErrIndexNotReady
	}
	if err := ctx.Err(); err != nil {
		s.incRequests("canceled")
		return Response{}, fmt.Errorf("search: %w", err)
	}

	resp := Response{
		Slots:           req.Cultures().Slots(),
		Fields:          req.Fields(),
		SnapshotVersion: snap.Version(),
	}

	var board scoreboard
	path := "index"
	if req.Query().IsWildcard() {
		path = "wildcard"
		var err error
		board, err = s.searchWildcard(snap, req, &resp)
		if err != nil {
			s.incRequests("invalid")
			return Response{}, err
		}
	} else {
		board = s.searchIndex(snap, req, &resp)
		if resp.FallbackUsed {
			path = "fallback"
		}
	}

	names := req.Cultures().FlattenNames()
	hits := make([]result.Hit, 0, len(board))
	for id, score := range board {
		p, ok := snap.Policy(id)
		if !ok {
			continue
		}
		hits = append(hits, result.New(id, p.DisplayName(names), p.RegistryPath(), score))
	}
	resp.Hits = Rank(hits, req.Query().Strict(), req.Limit())

	s.incRequests("ok")
	s.observe(path, time.Since(start))
	s.logger.Debug("search",
		zap.String("query", req.Query().Raw()),
		zap.String("fields", resp.Fields.Requested.String()),
		zap.String("path", path),
		zap.Int("candidates", len(board)),
		zap.Int("hits", len(resp.Hits)),
		zap.Bool("fallback_used", resp.FallbackUsed),
		zap.Bool("fallback_skipped", resp.FallbackSkipped),
		zap.Uint64("snapshot", snap.Version()),
	)
	return resp, nil
}

// searchIndex answers every term from the n-gram indexes of the preferred
// cultures, then decides on the linear fallback scan.
func (s *Service) searchIndex(snap *corpus.Snapshot, req *request.Request, resp *Response) scoreboard {
	q := req.Query()
	prefs := req.Cultures()
	terms := q.Terms()

	board := s.collect(terms, func(key corpus.Key, term corpus.Term) ([]string, bool) {
		return snap.Lookup(key, term)
	}, req.Fields(), prefs, prefs.Preferred())
	if board.unanswerable {
		resp.Unanswerable = true
	}

	if !resp.Unanswerable && len(board.scores) >= s.cfg.MinHitsBeforeFallback {
		s.incFallback("not_needed")
		return board.scores
	}
	scan := func(key corpus.Key, term corpus.Term) ([]string, bool) {
		return snap.Scan(key, term), true
	}
	if ShouldSkipFallback(prefs.Slots(), q.TokenCount()) {
		resp.FallbackSkipped = true
		s.incFallback("skipped")
		// Fallback cultures stay out, but columns the index could not
		// answer are still scanned in the preferred cultures.
		if resp.Unanswerable {
			scanned := s.collect(terms, scan, req.Fields(), prefs, prefs.Preferred())
			board.scores.merge(scanned.scores)
		}
		return board.scores
	}

	resp.FallbackUsed = true
	s.incFallback("used")
	scanned := s.collect(terms, scan, req.Fields(), prefs, prefs.FlattenNames())
	board.scores.merge(scanned.scores)
	return board.scores
}

// searchWildcard matches the raw pattern linearly. Fallback cultures are
// included unless the fallback policy skips them.
func (s *Service) searchWildcard(snap *corpus.Snapshot, req *request.Request, resp *Response) (scoreboard, error) {
	prefs := req.Cultures()
	resp.Wildcard = true

	m, err := newWildcardMatcher(req.Query().Raw(), prefs.Primary(), s.cfg.WildcardStripProlonged)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPattern, err)
	}

	cultures := prefs.Preferred()
	if ShouldSkipFallback(prefs.Slots(), req.Query().TokenCount()) {
		resp.FallbackSkipped = true
		s.incFallback("skipped")
	} else if len(prefs.FlattenNames()) > len(cultures) {
		cultures = prefs.FlattenNames()
		resp.FallbackUsed = true
		s.incFallback("used")
	}

	board := make(scoreboard)
	for _, id := range snap.IDs() {
		for _, kind := range req.Fields().Kinds() {
			for _, c := range columnCultures(kind, cultures) {
				raw, ok := snap.FieldText(id, kind, c)
				if !ok || !m.Match(raw) {
					continue
				}
				board.add(id, s.score(kind, c, prefs))
			}
		}
	}
	return board, nil
}

// collected is the outcome of running every term against every column.
type collected struct {
	scores       scoreboard
	unanswerable bool
}

type columnFunc func(key corpus.Key, term corpus.Term) ([]string, bool)

// collect runs each term over the selected fields and cultures. In AND mode
// (several terms) a policy must match every term.
func (s *Service) collect(
	terms []string, run columnFunc, fields field.Set, prefs culture.Preference, cultures []string,
) collected {
	var out collected
	for i, raw := range terms {
		term := corpus.NewTerm(raw)
		perTerm := make(scoreboard)
		for _, kind := range fields.Kinds() {
			for _, c := range columnCultures(kind, cultures) {
				ids, ok := run(corpus.KeyFor(kind, c), term)
				if !ok {
					out.unanswerable = true
					continue
				}
				score := s.score(kind, c, prefs)
				for _, id := range ids {
					perTerm.add(id, score)
				}
			}
		}
		if i == 0 {
			out.scores = perTerm
		} else {
			out.scores = out.scores.intersect(perTerm)
		}
	}
	if out.scores == nil {
		out.scores = make(scoreboard)
	}
	return out
}

// score is the field weight times the weight of the culture's slot role.
func (s *Service) score(kind field.Kind, cultureName string, prefs culture.Preference) float64 {
	w := s.cfg.Weights
	if !kind.Localized() {
		return w.field(kind) * w.Primary
	}
	return w.field(kind) * cultureWeight(w, cultureName, prefs)
}

func cultureWeight(w Weights, cultureName string, prefs culture.Preference) float64 {
	for _, slot := range prefs.Slots() {
		if slot.Placeholder || !strings.EqualFold(slot.Name, cultureName) {
			continue
		}
		switch slot.Role {
		case culture.Primary:
			return w.Primary
		case culture.Second:
			return w.Second
		default:
			return w.Fallback
		}
	}
	return w.Fallback
}

// columnCultures lists the cultures a field is looked up in: every given
// culture for localized fields, a single neutral column otherwise.
func columnCultures(kind field.Kind, cultures []string) []string {
	if !kind.Localized() {
		return []string{""}
	}
	return cultures
}

func (s *Service) incRequests(outcome string) {
	if s.metrics.Requests != nil {
		s.metrics.Requests.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) incFallback(decision string) {
	if s.metrics.Fallback != nil {
		s.metrics.Fallback.WithLabelValues(decision).Inc()
	}
}

func (s *Service) observe(path string, d time.Duration) {
	if s.metrics.Duration != nil {
		s.metrics.Duration.WithLabelValues(path).Observe(d.Seconds())
	}
}
