package search

import (
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
)

// Corpus exposes the currently published corpus snapshot.
type Corpus interface {
	// Current returns nil until the first snapshot is published.
	Current() *corpus.Snapshot
}
