package request

import (
	"fmt"

	"github.com/kailas-cloud/policysearch/internal/domain"
	"github.com/kailas-cloud/policysearch/internal/domain/culture"
	"github.com/kailas-cloud/policysearch/internal/domain/search/field"
	"github.com/kailas-cloud/policysearch/internal/domain/search/mode"
	"github.com/kailas-cloud/policysearch/internal/domain/search/query"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed raw query length in bytes.
	MaxQueryLength = 1024
	DefaultLimit   = 50
	MaxLimit       = 1000
)

// Request is a validated search request.
type Request struct {
	query  query.Query
	prefs  culture.Preference
	fields field.Set
	mode   mode.Mode
	limit  int
}

// New validates and normalizes search parameters.
// Defaults: mode=or, limit=50, cultures=en-US. Fails with domain.ErrEmptyQuery
// when nothing searchable is left after normalization and with
// domain.ErrNoSearchableFields when no requested field applies to the query.
func New(
	raw string,
	m mode.Mode,
	prefs culture.Preference,
	requested field.Flags,
	limit int,
) (Request, error) {
	if len(raw) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w (max %d bytes)", domain.ErrQueryTooLong, MaxQueryLength)
	}
	if m == "" {
		m = mode.Or
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, m)
	}

	q := query.New(raw, m.IsAnd())
	if q.IsEmpty() {
		return Request{}, domain.ErrEmptyQuery
	}

	if requested == field.FlagNone {
		return Request{}, fmt.Errorf("%w: no fields requested", domain.ErrNoSearchableFields)
	}
	fields := field.Select(requested, q)
	if !fields.HasAny() {
		return Request{}, fmt.Errorf("%w: requested %s", domain.ErrNoSearchableFields, requested)
	}

	if prefs.Len() == 0 {
		prefs = culture.Build(culture.Options{})
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		query:  q,
		prefs:  prefs,
		fields: fields,
		mode:   m,
		limit:  limit,
	}, nil
}

// TryNew is New reduced to a success flag.
func TryNew(
	raw string,
	m mode.Mode,
	prefs culture.Preference,
	requested field.Flags,
	limit int,
) (Request, bool) {
	r, err := New(raw, m, prefs, requested, limit)
	return r, err == nil
}

// Query returns the analyzed query.
func (r *Request) Query() query.Query { return r.query }

// Cultures returns the culture chain.
func (r *Request) Cultures() culture.Preference { return r.prefs }

// Fields returns the field selection.
func (r *Request) Fields() field.Set { return r.fields }

// Mode returns the match mode.
func (r *Request) Mode() mode.Mode { return r.mode }

// AndMode reports whether every word must match.
func (r *Request) AndMode() bool { return r.mode.IsAnd() }

// Limit returns the maximum number of hits.
func (r *Request) Limit() int { return r.limit }
