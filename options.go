package policysearch

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/policysearch/internal/domain/culture"
	searchuc "github.com/kailas-cloud/policysearch/internal/usecase/search"
)

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	minN, maxN int

	cultures culture.Options

	minHitsBeforeFallback  int
	wildcardStripProlonged bool
	weights                searchuc.Weights

	cacheSize int
	logger    *zap.Logger
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		minN:                   2,
		maxN:                   3,
		cultures:               culture.Options{Primary: culture.EnUS, AppendEnUS: true},
		minHitsBeforeFallback:  1,
		wildcardStripProlonged: true,
		weights:                searchuc.DefaultWeights(),
		logger:                 zap.NewNop(),
	}
}

// WithNGramRange sets the gram lengths indexed. Defaults: 2..3.
func WithNGramRange(minN, maxN int) Option {
	return optionFunc(func(c *engineConfig) {
		c.minN = minN
		c.maxN = maxN
	})
}

// WithCultures sets the default culture preference. Per-search options override it.
// Defaults: primary en-US with en-US appended as the last resort.
func WithCultures(primary, second string, secondEnabled bool) Option {
	return optionFunc(func(c *engineConfig) {
		c.cultures.Primary = primary
		c.cultures.Second = second
		c.cultures.SecondEnabled = secondEnabled
	})
}

// WithOSUICulture adds the operating system UI culture as a fallback.
func WithOSUICulture(name string) Option {
	return optionFunc(func(c *engineConfig) {
		c.cultures.OSUICulture = name
	})
}

// WithoutEnUSFallback stops appending en-US to every culture chain.
func WithoutEnUSFallback() Option {
	return optionFunc(func(c *engineConfig) {
		c.cultures.AppendEnUS = false
	})
}

// WithMinHitsBeforeFallback sets how many index hits suppress the fallback-culture scan.
// Default: 1.
func WithMinHitsBeforeFallback(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.minHitsBeforeFallback = n
	})
}

// WithWildcardStripProlonged controls whether U+30FC is dropped before wildcard matching.
// Default: true.
func WithWildcardStripProlonged(strip bool) Option {
	return optionFunc(func(c *engineConfig) {
		c.wildcardStripProlonged = strip
	})
}

// WithWeights overrides the field and culture score weights.
func WithWeights(w Weights) Option {
	return optionFunc(func(c *engineConfig) {
		c.weights = searchuc.Weights(w)
	})
}

// WithResultCache caches up to size search responses per snapshot. 0 disables (default).
func WithResultCache(size int) Option {
	return optionFunc(func(c *engineConfig) {
		c.cacheSize = size
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	})
}
