package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policysearch/internal/config"
	"github.com/kailas-cloud/policysearch/internal/domain/culture"
	"github.com/kailas-cloud/policysearch/internal/index/ngram"
	logpkg "github.com/kailas-cloud/policysearch/internal/logger"
	"github.com/kailas-cloud/policysearch/internal/metrics"
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
	"github.com/kailas-cloud/policysearch/internal/repository/searchcache"
	chiTransport "github.com/kailas-cloud/policysearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/policysearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/policysearch/internal/usecase/search"
	"github.com/kailas-cloud/policysearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting policysearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus_path", cfg.Corpus.Path),
		zap.String("primary_culture", cfg.Culture.Primary),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	store := corpus.NewStore(
		ngram.Options{MinN: cfg.Search.NGramMin, MaxN: cfg.Search.NGramMax},
		corpus.Metrics{
			Rebuilds:  metrics.IndexRebuildsTotal,
			Documents: metrics.IndexDocuments,
			Skipped:   metrics.IndexSkippedDocumentsTotal,
		},
		logger,
	)

	// Pass nil interface (not typed nil) when no corpus file is configured.
	var source corpus.Source
	var sourceChecker healthuc.SourceChecker
	if cfg.Corpus.Path != "" {
		fileSource := corpus.FileSource{Path: cfg.Corpus.Path}
		source = fileSource
		sourceChecker = fileSource

		stats, err := store.Reload(context.Background(), source)
		if err != nil {
			logger.Fatal("Failed to load policy corpus", zap.Error(err))
		}
		logger.Info("Policy corpus indexed",
			zap.Uint64("version", stats.Version),
			zap.Int("indexed", stats.Indexed),
			zap.Int("skipped", stats.Skipped),
			zap.Duration("duration", stats.Duration),
		)
	} else {
		logger.Warn("No corpus path configured, waiting for POST /v1/index")
	}

	searcher := buildSearcher(cfg, store, logger)
	healthSvc := healthuc.New(store, sourceChecker)

	server := chiTransport.NewServer(searcher, store, source, healthSvc, chiTransport.Defaults{
		Culture: culture.Options{
			Primary:       cfg.Culture.Primary,
			Second:        cfg.Culture.Second,
			SecondEnabled: cfg.Culture.SecondEnabled,
			OSUICulture:   cfg.Culture.OSUICulture,
			AppendEnUS:    cfg.Culture.AppendEnUS,
		},
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		MaxBodyBytes: int64(cfg.HTTP.MaxBodyBytes),
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildSearcher assembles the search chain: Service -> Cached (when enabled).
func buildSearcher(cfg config.Config, store *corpus.Store, logger *zap.Logger) chiTransport.Searcher {
	w := cfg.Search.Weights
	svc := searchuc.New(store, searchuc.Config{
		MinHitsBeforeFallback:  cfg.Search.MinHitsBeforeFallback,
		WildcardStripProlonged: *cfg.Search.WildcardStripProlonged,
		Weights: searchuc.Weights{
			Name:        w.Name,
			ID:          w.ID,
			Registry:    w.Registry,
			Description: w.Description,
			Primary:     w.Primary,
			Second:      w.Second,
			Fallback:    w.Fallback,
		},
	}, searchuc.Metrics{
		Requests: metrics.SearchRequestsTotal,
		Duration: metrics.SearchDuration,
		Fallback: metrics.FallbackDecisionsTotal,
	}, logger)

	if cfg.Search.ResultCacheSize <= 0 {
		return svc
	}
	cached, err := searchcache.New(svc, store, cfg.Search.ResultCacheSize, metrics.SearchCacheTotal, logger)
	if err != nil {
		logger.Fatal("Failed to create search cache", zap.Error(err))
	}
	logger.Info("Search result cache enabled", zap.Int("size", cfg.Search.ResultCacheSize))
	return cached
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request. The query string carries the search term.
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
