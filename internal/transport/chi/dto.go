package chi

import (
	"time"

	"github.com/kailas-cloud/policysearch/internal/domain/culture"
	"github.com/kailas-cloud/policysearch/internal/domain/search/field"
	"github.com/kailas-cloud/policysearch/internal/domain/search/result"
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
	searchuc "github.com/kailas-cloud/policysearch/internal/usecase/search"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeEmptyQuery         ErrorCode = "empty_query"
	ErrorCodeNoSearchableFields ErrorCode = "no_searchable_fields"
	ErrorCodeIndexNotReady      ErrorCode = "index_not_ready"
	ErrorCodePolicyNotFound     ErrorCode = "policy_not_found"
	ErrorCodeNoCorpusSource     ErrorCode = "no_corpus_source"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HitItem is one search hit.
type HitItem struct {
	UniqueID     string  `json:"unique_id"`
	DisplayName  string  `json:"display_name"`
	RegistryPath string  `json:"registry_path,omitempty"`
	Score        float64 `json:"score"`
}

// SlotItem is one resolved culture slot.
type SlotItem struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// FieldsItem reports which fields the search used.
type FieldsItem struct {
	Requested   string `json:"requested"`
	Name        bool   `json:"name"`
	ID          bool   `json:"id"`
	Registry    bool   `json:"registry"`
	Description bool   `json:"description"`
}

// Diagnostics explains how a search ran.
type Diagnostics struct {
	Cultures        []SlotItem `json:"cultures"`
	Fields          FieldsItem `json:"fields"`
	Wildcard        bool       `json:"wildcard"`
	Unanswerable    bool       `json:"unanswerable"`
	FallbackUsed    bool       `json:"fallback_used"`
	FallbackSkipped bool       `json:"fallback_skipped"`
	SnapshotVersion uint64     `json:"snapshot_version"`
}

// SearchResponse is the reply of GET /v1/search.
type SearchResponse struct {
	Items       []HitItem   `json:"items"`
	Total       int         `json:"total"`
	Limit       int         `json:"limit"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// RebuildRequest is the body of POST /v1/index.
type RebuildRequest struct {
	Policies []corpus.Record `json:"policies"`
}

// RebuildResponse reports a published snapshot.
type RebuildResponse struct {
	Version    uint64   `json:"version"`
	Indexed    int      `json:"indexed"`
	Skipped    int      `json:"skipped"`
	Columns    int      `json:"columns"`
	Terms      int      `json:"terms"`
	Cultures   []string `json:"cultures"`
	DurationMs float64  `json:"duration_ms"`
}

// IndexResponse describes the current snapshot.
type IndexResponse struct {
	Version  uint64    `json:"version"`
	Policies int       `json:"policies"`
	Terms    int       `json:"terms"`
	Cultures []string  `json:"cultures"`
	BuiltAt  time.Time `json:"built_at"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status          string            `json:"status"`
	Checks          map[string]string `json:"checks"`
	SnapshotVersion uint64            `json:"snapshot_version,omitempty"`
	Policies        int               `json:"policies"`
	Version         string            `json:"version"`
}

func hitsToDTO(hits []result.Hit) []HitItem {
	items := make([]HitItem, len(hits))
	for i, h := range hits {
		items[i] = HitItem{
			UniqueID:     h.UniqueID(),
			DisplayName:  h.DisplayName(),
			RegistryPath: h.RegistryPath(),
			Score:        h.Score(),
		}
	}
	return items
}

func slotsToDTO(slots []culture.Slot) []SlotItem {
	items := make([]SlotItem, len(slots))
	for i, s := range slots {
		items[i] = SlotItem{Name: s.Name, Role: s.Role.String(), Placeholder: s.Placeholder}
	}
	return items
}

func fieldsToDTO(f field.Set) FieldsItem {
	return FieldsItem{
		Requested:   f.Requested.String(),
		Name:        f.UseName,
		ID:          f.UseID,
		Registry:    f.UseRegistry,
		Description: f.UseDescription,
	}
}

func searchResponseToDTO(resp searchuc.Response, limit int) SearchResponse {
	return SearchResponse{
		Items: hitsToDTO(resp.Hits),
		Total: len(resp.Hits),
		Limit: limit,
		Diagnostics: Diagnostics{
			Cultures:        slotsToDTO(resp.Slots),
			Fields:          fieldsToDTO(resp.Fields),
			Wildcard:        resp.Wildcard,
			Unanswerable:    resp.Unanswerable,
			FallbackUsed:    resp.FallbackUsed,
			FallbackSkipped: resp.FallbackSkipped,
			SnapshotVersion: resp.SnapshotVersion,
		},
	}
}

func buildStatsToDTO(stats corpus.BuildStats) RebuildResponse {
	return RebuildResponse{
		Version:    stats.Version,
		Indexed:    stats.Indexed,
		Skipped:    stats.Skipped,
		Columns:    stats.Columns,
		Terms:      stats.Terms,
		Cultures:   stats.Cultures,
		DurationMs: float64(stats.Duration.Microseconds()) / 1000,
	}
}
