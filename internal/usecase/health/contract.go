package health

import (
	"context"

	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
)

// IndexReader exposes the published corpus snapshot.
type IndexReader interface {
	Current() *corpus.Snapshot
}

// SourceChecker checks that the corpus source can be reloaded.
type SourceChecker interface {
	HealthCheck(ctx context.Context) error
}
