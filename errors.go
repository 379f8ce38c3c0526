package policysearch

import "github.com/kailas-cloud/policysearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery         = domain.ErrEmptyQuery
	ErrQueryTooLong       = domain.ErrQueryTooLong
	ErrNoSearchableFields = domain.ErrNoSearchableFields
	ErrInvalidMode        = domain.ErrInvalidMode
	ErrInvalidPattern     = domain.ErrInvalidPattern
	ErrInvalidPolicy      = domain.ErrInvalidPolicy
	ErrIndexNotReady      = domain.ErrIndexNotReady
	ErrPolicyNotFound     = domain.ErrPolicyNotFound
)
