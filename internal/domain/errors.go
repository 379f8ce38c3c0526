package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a query with nothing searchable after normalization.
	ErrEmptyQuery = errors.New("empty query")
	// ErrQueryTooLong signals a raw query over the length limit.
	ErrQueryTooLong = errors.New("query too long")
	// ErrNoSearchableFields signals that no field is searchable for the query.
	ErrNoSearchableFields = errors.New("no searchable fields for this query")
	// ErrInvalidPattern signals a wildcard pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid wildcard pattern")
	// ErrInvalidMode signals an unknown match mode.
	ErrInvalidMode = errors.New("invalid match mode")
	// ErrInvalidParameter signals a malformed request parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidPolicy signals a malformed corpus record.
	ErrInvalidPolicy = errors.New("invalid policy")
	// ErrPolicyNotFound signals an unknown policy id.
	ErrPolicyNotFound = errors.New("policy not found")
	// ErrNoCorpusSource signals a reload without a configured corpus source.
	ErrNoCorpusSource = errors.New("no corpus source configured")
	// ErrIndexNotReady signals a search before the first index build.
	ErrIndexNotReady = errors.New("index not ready")
)

// InvalidPolicyError wraps ErrInvalidPolicy with the offending record position.
type InvalidPolicyError struct {
	Position int
	ID       string
	Reason   string
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("%s at position %d (id %q): %s", ErrInvalidPolicy.Error(), e.Position, e.ID, e.Reason)
}

func (e *InvalidPolicyError) Unwrap() error { return ErrInvalidPolicy }
