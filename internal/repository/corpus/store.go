package corpus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/policysearch/internal/index/ngram"
)

// Source supplies corpus records (the policy-definition collaborator).
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Record, error)
}

// Metrics are the instruments a Store updates. Nil fields are skipped.
type Metrics struct {
	Rebuilds  *prometheus.CounterVec // label "status"
	Documents prometheus.Gauge
	Skipped   prometheus.Counter
}

// Store publishes corpus snapshots. Readers load the current snapshot with
// one atomic read; a rebuild builds a new snapshot off to the side and
// publishes it with one atomic store.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	buildMu sync.Mutex
	group   singleflight.Group
	opts    ngram.Options
	metrics Metrics
	logger  *zap.Logger
}

// NewStore creates an empty store. Current returns nil until the first rebuild.
func NewStore(opts ngram.Options, m Metrics, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{opts: normalizeOptions(opts), metrics: m, logger: logger}
}

// Current returns the published snapshot, or nil before the first rebuild.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Rebuild builds a snapshot from records and publishes it. Rebuilds are
// serialized; readers keep using the previous snapshot until the swap.
func (s *Store) Rebuild(ctx context.Context, records []Record) (BuildStats, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if err := ctx.Err(); err != nil {
		s.incRebuild("canceled")
		return BuildStats{}, fmt.Errorf("rebuild corpus: %w", err)
	}

	snap, stats := Build(records, s.version.Add(1), s.opts, s.logger)

	// A build canceled mid-way is discarded rather than published.
	if err := ctx.Err(); err != nil {
		s.incRebuild("canceled")
		return BuildStats{}, fmt.Errorf("rebuild corpus: %w", err)
	}

	s.current.Store(snap)
	s.incRebuild("ok")
	if s.metrics.Documents != nil {
		s.metrics.Documents.Set(float64(stats.Indexed))
	}
	if s.metrics.Skipped != nil && stats.Skipped > 0 {
		s.metrics.Skipped.Add(float64(stats.Skipped))
	}
	return stats, nil
}

// Reload loads records from src and rebuilds. Concurrent reloads of the same
// source share one load and one build.
func (s *Store) Reload(ctx context.Context, src Source) (BuildStats, error) {
	v, err, shared := s.group.Do(src.Name(), func() (any, error) {
		records, err := src.Load(ctx)
		if err != nil {
			s.incRebuild("load_error")
			return BuildStats{}, fmt.Errorf("load %s: %w", src.Name(), err)
		}
		return s.Rebuild(ctx, records)
	})
	if shared {
		s.logger.Debug("corpus reload shared", zap.String("source", src.Name()))
	}
	if err != nil {
		return BuildStats{}, err //nolint:wrapcheck // wrapped inside the flight
	}
	return v.(BuildStats), nil
}

func (s *Store) incRebuild(status string) {
	if s.metrics.Rebuilds != nil {
		s.metrics.Rebuilds.WithLabelValues(status).Inc()
	}
}
