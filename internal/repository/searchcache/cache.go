// Package searchcache memoizes search responses per corpus snapshot.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policysearch/internal/domain/search/request"
	"github.com/kailas-cloud/policysearch/internal/domain/search/result"
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
	"github.com/kailas-cloud/policysearch/internal/usecase/search"
)

// searcher is the consumer interface for the wrapped service (ISP).
type searcher interface {
	Search(ctx context.Context, req *request.Request) (search.Response, error)
}

// snapshots exposes the published snapshot version.
type snapshots interface {
	Current() *corpus.Snapshot
}

// CachedSearcher caches responses in a process-local LRU. Keys embed the
// snapshot version, so a rebuild makes every older entry unreachable.
type CachedSearcher struct {
	inner      searcher
	corpus     snapshots
	cache      *lru.Cache[string, search.Response]
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator holding up to size responses.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner searcher,
	c snapshots,
	size int,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedSearcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cs := &CachedSearcher{
		inner:      inner,
		corpus:     c,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
	cache, err := lru.NewWithEvict[string, search.Response](size, cs.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}
	cs.cache = cache
	return cs, nil
}

// Search returns a cached response or calls the inner service.
func (c *CachedSearcher) Search(ctx context.Context, req *request.Request) (search.Response, error) {
	snap := c.corpus.Current()
	if snap == nil {
		return c.inner.Search(ctx, req) //nolint:wrapcheck // pass-through decorator
	}

	key := cacheKey(snap.Version(), req)
	if resp, ok := c.cache.Get(key); ok {
		c.incCache("hit")
		return cloneResponse(resp), nil
	}
	c.incCache("miss")

	resp, err := c.inner.Search(ctx, req)
	if err != nil {
		return search.Response{}, err //nolint:wrapcheck // pass-through decorator
	}
	// A rebuild may have published while the inner search ran.
	if resp.SnapshotVersion == snap.Version() {
		c.cache.Add(key, cloneResponse(resp))
	}
	return resp, nil
}

// Len returns the number of cached responses.
func (c *CachedSearcher) Len() int { return c.cache.Len() }

// Purge drops every cached response.
func (c *CachedSearcher) Purge() { c.cache.Purge() }

func (c *CachedSearcher) onEvict(key string, _ search.Response) {
	c.logger.Debug("search cache evicted", zap.String("key", key))
}

func (c *CachedSearcher) incCache(res string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(res).Inc()
	}
}

// cacheKey hashes everything that shapes a response.
func cacheKey(version uint64, req *request.Request) string {
	q := req.Query()
	var b strings.Builder
	b.WriteString(strconv.FormatUint(version, 10))
	b.WriteByte('|')
	if q.IsWildcard() {
		b.WriteString("w:")
		b.WriteString(q.Raw())
	} else {
		b.WriteString("q:")
		b.WriteString(q.Strict())
	}
	b.WriteByte('|')
	b.WriteString(string(req.Mode()))
	b.WriteByte('|')
	// The resolved selection, not the requested flags: field heuristics read
	// the raw query, so two raw forms with one strict form can differ here.
	f := req.Fields()
	for _, use := range []bool{f.UseName, f.UseID, f.UseRegistry, f.UseDescription} {
		if use {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(req.Limit()))
	for _, s := range req.Cultures().Slots() {
		b.WriteByte('|')
		b.WriteString(strings.ToLower(s.Name))
		b.WriteByte(':')
		b.WriteString(s.Role.String())
		if s.Placeholder {
			b.WriteString(":p")
		}
	}
	h := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(h[:])
}

func cloneResponse(r search.Response) search.Response {
	r.Hits = append([]result.Hit(nil), r.Hits...)
	r.Slots = append(r.Slots[:0:0], r.Slots...)
	return r
}
