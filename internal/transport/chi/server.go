package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policysearch/internal/domain"
	"github.com/kailas-cloud/policysearch/internal/domain/culture"
	"github.com/kailas-cloud/policysearch/internal/domain/search/field"
	"github.com/kailas-cloud/policysearch/internal/domain/search/mode"
	"github.com/kailas-cloud/policysearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/policysearch/internal/logger"
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
	healthuc "github.com/kailas-cloud/policysearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/policysearch/internal/usecase/search"
	"github.com/kailas-cloud/policysearch/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Searcher runs a validated search.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

// IndexManager publishes and describes corpus snapshots.
type IndexManager interface {
	Current() *corpus.Snapshot
	Rebuild(ctx context.Context, records []corpus.Record) (corpus.BuildStats, error)
	Reload(ctx context.Context, src corpus.Source) (corpus.BuildStats, error)
}

// Defaults are applied to search parameters the client leaves out.
type Defaults struct {
	Culture      culture.Options
	DefaultLimit int
	MaxLimit     int
	MaxBodyBytes int64
}

// Server serves the policy search HTTP API.
type Server struct {
	search        Searcher
	index         IndexManager
	source        corpus.Source
	health        *healthuc.Service
	defaults      Defaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. source can be nil, which disables reloads.
func NewServer(
	search Searcher,
	index IndexManager,
	source corpus.Source,
	health *healthuc.Service,
	defaults Defaults,
	logger *zap.Logger,
) *Server {
	if defaults.DefaultLimit <= 0 {
		defaults.DefaultLimit = request.DefaultLimit
	}
	if defaults.MaxLimit <= 0 || defaults.MaxLimit > request.MaxLimit {
		defaults.MaxLimit = request.MaxLimit
	}
	if defaults.MaxBodyBytes <= 0 {
		defaults.MaxBodyBytes = 32 << 20
	}
	s := &Server{
		search:   search,
		index:    index,
		source:   source,
		health:   health,
		defaults: defaults,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeEmptyQuery),
		sentinelHandler(domain.ErrQueryTooLong, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidMode, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidPattern, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidParameter, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNoSearchableFields,
			http.StatusUnprocessableEntity, ErrorCodeNoSearchableFields),
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, ErrorCodeIndexNotReady),
		sentinelHandler(domain.ErrPolicyNotFound, http.StatusNotFound, ErrorCodePolicyNotFound),
		sentinelHandler(domain.ErrNoCorpusSource, http.StatusConflict, ErrorCodeNoCorpusSource),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/index", s.GetIndex)
		r.Post("/index", s.RebuildIndex)
		r.Post("/index/reload", s.ReloadIndex)
		r.Get("/policies/{id}", s.GetPolicy)
	})
}

// Search handles GET /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, err := s.searchRequestFromQuery(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseToDTO(resp, req.Limit()))
}

// GetIndex handles GET /v1/index.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.index.Current()
	if snap == nil {
		s.handleDomainError(w, r, domain.ErrIndexNotReady)
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{
		Version:  snap.Version(),
		Policies: snap.Len(),
		Terms:    snap.Terms(),
		Cultures: snap.Cultures(),
		BuiltAt:  snap.BuiltAt(),
	})
}

// RebuildIndex handles POST /v1/index.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	var req RebuildRequest
	body := http.MaxBytesReader(w, r.Body, s.defaults.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	stats, err := s.index.Rebuild(r.Context(), req.Policies)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildStatsToDTO(stats))
}

// ReloadIndex handles POST /v1/index/reload.
func (s *Server) ReloadIndex(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		s.handleDomainError(w, r, domain.ErrNoCorpusSource)
		return
	}
	stats, err := s.index.Reload(r.Context(), s.source)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildStatsToDTO(stats))
}

// GetPolicy handles GET /v1/policies/{id}.
func (s *Server) GetPolicy(w http.ResponseWriter, r *http.Request) {
	snap := s.index.Current()
	if snap == nil {
		s.handleDomainError(w, r, domain.ErrIndexNotReady)
		return
	}
	p, ok := snap.Policy(chi.URLParam(r, "id"))
	if !ok {
		s.handleDomainError(w, r, domain.ErrPolicyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, corpus.RecordFromPolicy(p))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:          string(report.Status),
		Checks:          checks,
		SnapshotVersion: report.SnapshotVersion,
		Policies:        report.Policies,
		Version:         version.String(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchRequestFromQuery builds a validated request from URL parameters.
// Culture parameters override the configured defaults one by one.
func (s *Server) searchRequestFromQuery(r *http.Request) (request.Request, error) {
	params := r.URL.Query()

	flags := field.FlagAll
	if v := params.Get("fields"); v != "" {
		parsed, err := field.ParseFlags(v)
		if err != nil {
			return request.Request{}, fmt.Errorf("%w: fields: %w", domain.ErrInvalidParameter, err)
		}
		flags = parsed
	}

	limit := s.defaults.DefaultLimit
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return request.Request{}, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidParameter)
		}
		limit = n
	}
	limit = min(limit, s.defaults.MaxLimit)

	opts := s.defaults.Culture
	if v := params.Get("primary"); v != "" {
		opts.Primary = v
	}
	if v := params.Get("second"); v != "" {
		opts.Second = v
		opts.SecondEnabled = true
	}
	if v := params.Get("second_enabled"); v != "" {
		opts.SecondEnabled = parseBool(v, opts.SecondEnabled)
	}
	if v := params.Get("os_ui_culture"); v != "" {
		opts.OSUICulture = v
	}
	if v := params.Get("append_en_us"); v != "" {
		opts.AppendEnUS = parseBool(v, opts.AppendEnUS)
	}

	req, err := request.New(
		params.Get("q"),
		mode.Mode(strings.ToLower(params.Get("mode"))),
		culture.Build(opts),
		flags,
		limit,
	)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrQueryTooLong,
		domain.ErrInvalidMode,
		domain.ErrInvalidPattern,
		domain.ErrInvalidParameter,
		domain.ErrNoSearchableFields,
		domain.ErrIndexNotReady,
		domain.ErrPolicyNotFound,
		domain.ErrNoCorpusSource,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
