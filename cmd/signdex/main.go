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

	"github.com/signlearner/signdex/internal/config"
	"github.com/signlearner/signdex/internal/db"
	dbRedis "github.com/signlearner/signdex/internal/db/redis"
	"github.com/signlearner/signdex/internal/domain"
	logpkg "github.com/signlearner/signdex/internal/logger"
	"github.com/signlearner/signdex/internal/metrics"
	"github.com/signlearner/signdex/internal/repository/embcache"
	videorepo "github.com/signlearner/signdex/internal/repository/video"
	chiTransport "github.com/signlearner/signdex/internal/transport/chi"
	openaiProv "github.com/signlearner/signdex/internal/transport/openai"
	healthuc "github.com/signlearner/signdex/internal/usecase/health"
	lessonuc "github.com/signlearner/signdex/internal/usecase/lesson"
	retrieveuc "github.com/signlearner/signdex/internal/usecase/retrieve"
	transformuc "github.com/signlearner/signdex/internal/usecase/transform"
	translateuc "github.com/signlearner/signdex/internal/usecase/translate"
	"github.com/signlearner/signdex/internal/version"
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

	logger.Info("Starting signdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Database.IndexName),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the video index database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterQueryMetrics()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.EmbeddingCacheEnabled()),
	)

	// Optional generation model: rewrite variations and lesson content.
	var generator *openaiProv.Generator
	if cfg.Model.Enabled() {
		generator = openaiProv.NewGenerator(&openaiProv.GeneratorConfig{
			APIKey:  cfg.Model.APIKey,
			BaseURL: cfg.Model.BaseURL,
			Model:   cfg.Model.Model,
			Logger:  logger,
		})
		logger.Info("Generation model enabled", zap.String("model", cfg.Model.Model))
	} else {
		logger.Info("Generation model disabled, rule-based transformation only")
	}

	videoRepo := videorepo.New(store, cfg.Database.IndexName, cfg.Database.KeyPrefix)

	// Use case services
	var transformGen transformuc.Generator
	var lessonGen lessonuc.Generator
	if generator != nil {
		transformGen = generator
		lessonGen = generator
	}

	transformSvc := transformuc.New(
		transformGen, cfg.Transform,
		time.Duration(cfg.Model.RewriteTimeoutSec)*time.Second, logger,
	)
	retrieveSvc := retrieveuc.New(embedder, videoRepo, cfg.Search, logger)
	translateSvc := translateuc.New(transformSvc, retrieveSvc, cfg.Translate, cfg.Search, logger)
	lessonSvc := lessonuc.New(
		lessonGen, retrieveSvc, cfg.Search,
		time.Duration(cfg.Model.LessonTimeoutSec)*time.Second, logger,
	)

	var modelChecker healthuc.ModelChecker
	if generator != nil {
		modelChecker = generator
	}
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder), modelChecker)

	server := chiTransport.NewServer(
		transformSvc, retrieveSvc, translateSvc, lessonSvc, healthSvc, cfg.Search, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Suffix.
// The suffix goes outermost so the cache key includes it: the cached vector
// is the vector of the exact text sent to the provider.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiProv.NewEmbedder(&openaiProv.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cfg.EmbeddingCacheEnabled() {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	if cfg.Embedding.QuerySuffix != "" {
		embedder = domain.NewSuffixEmbedder(embedder, cfg.Embedding.QuerySuffix)
	}

	return embedder
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
