// Package chi exposes the HTTP API: candidate search, sentence translation,
// lesson generation, health, and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/signlearner/signdex/internal/config"
	"github.com/signlearner/signdex/internal/domain"
	"github.com/signlearner/signdex/internal/domain/candidate"
	logpkg "github.com/signlearner/signdex/internal/logger"
	healthuc "github.com/signlearner/signdex/internal/usecase/health"
	lessonuc "github.com/signlearner/signdex/internal/usecase/lesson"
	translateuc "github.com/signlearner/signdex/internal/usecase/translate"
)

// Transformer produces ASL candidates for a query.
type Transformer interface {
	Transform(ctx context.Context, query string) (candidate.TransformationResult, error)
}

// Retriever ranks candidates against the video index.
type Retriever interface {
	Retrieve(ctx context.Context, candidates []candidate.Candidate, limit int) ([]domain.ScoredMatch, error)
}

// Translator selects the phrase or word-sequence strategy for a sentence.
type Translator interface {
	TranslateSentence(ctx context.Context, sentence string) (translateuc.Translation, error)
}

// LessonGenerator builds lesson plans.
type LessonGenerator interface {
	GenerateLesson(ctx context.Context, req lessonuc.Request) (lessonuc.Plan, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	transformer   Transformer
	retriever     Retriever
	translator    Translator
	lessons       LessonGenerator
	health        HealthChecker
	search        config.SearchConfig
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	transformer Transformer,
	retriever Retriever,
	translator Translator,
	lessons LessonGenerator,
	health HealthChecker,
	search config.SearchConfig,
	logger *zap.Logger,
) *Server {
	s := &Server{
		transformer: transformer,
		retriever:   retriever,
		translator:  translator,
		lessons:     lessons,
		health:      health,
		search:      search,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrModelProviderError, http.StatusBadGateway, codeModelProviderError),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusBadGateway, codeRetrievalFailed),
	}
	return s
}

// Routes mounts the API endpoints on a chi router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/v1/search", s.Search)
	r.Post("/v1/translate", s.Translate)
	r.Post("/v1/lessons", s.GenerateLesson)
	r.Get("/healthz", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Search handles POST /v1/search: transform the query, retrieve every
// candidate, answer with the merged ranking plus the transformation trace.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.search.DefaultLimit
	}
	if limit > s.search.MaxLimit {
		limit = s.search.MaxLimit
	}

	res, err := s.transformer.Transform(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	matches, err := s.retriever.Retrieve(r.Context(), res.Candidates, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := searchResponse{
		Query:         res.Original,
		Candidates:    candidatesToDTO(res.Candidates),
		RulesApplied:  res.RulesApplied,
		Phrases:       phrasesToDTO(res.Phrases),
		Confidence:    res.Confidence,
		ModelDegraded: res.ModelDegraded,
		Results:       make([]matchDTO, len(matches)),
	}
	for i, m := range matches {
		resp.Results[i] = matchToDTO(m)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Translate handles POST /v1/translate.
func (s *Server) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tr, err := s.translator.TranslateSentence(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, translationToDTO(tr))
}

// GenerateLesson handles POST /v1/lessons.
func (s *Server) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	var req lessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	plan, err := s.lessons.GenerateLesson(r.Context(), lessonuc.Request{
		Topic:      req.Topic,
		Age:        req.Age,
		Experience: req.Experience,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lessonToDTO(plan))
}

// Health handles GET /healthz. Degraded still answers 200: search may work
// without the model, and readiness probes should not flap on it.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
		s.logger.Warn("health check unhealthy", zap.Any("checks", report.Checks))
	}

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrModelProviderError,
		domain.ErrRetrievalFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	reqLogger := logpkg.FromContext(r.Context())
	reqLogger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	reqLogger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
