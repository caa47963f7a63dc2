// Package chi exposes the rank pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/request"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
	"github.com/kailas-cloud/talentrank/internal/logger"
	healthuc "github.com/kailas-cloud/talentrank/internal/usecase/health"
	"github.com/kailas-cloud/talentrank/internal/usecase/rank"
)

const maxBodyBytes = 1 << 20

// Ranker runs one rank request to a terminal stage.
type Ranker interface {
	Rank(ctx context.Context, req request.Request) (result.Outcome, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, body ErrorResponse) bool

// Server serves the rank API.
type Server struct {
	ranker        Ranker
	health        *healthuc.Service
	logger        *zap.Logger
	validate      *validator.Validate
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(ranker Ranker, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ranker:   ranker,
		health:   health,
		logger:   logger,
		validate: validator.New(),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrEmptyAggregationInput, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProvider),
		sentinelHandler(domain.ErrStorage, http.StatusServiceUnavailable, ErrorCodeStorage),
		sentinelHandler(domain.ErrVectorIndexUnavailable, http.StatusServiceUnavailable, ErrorCodeVectorIndex),
	}
	return s
}

// Rank handles POST /v1/rank.
func (s *Server) Rank(w http.ResponseWriter, r *http.Request) {
	var body RankRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Code:    ErrorCodeBadRequest,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := s.validate.Struct(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Code:    ErrorCodeValidationFailed,
			Message: extractValidationErrors(err),
		})
		return
	}

	req, err := body.toDomain()
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	out, err := s.ranker.Rank(r.Context(), req)
	if out.RunID != "" {
		w.Header().Set("X-Run-ID", out.RunID)
	}
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, rankResponse(&out))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	writeJSON(w, status, body)
}

// extractValidationErrors reports the first failing field.
func extractValidationErrors(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Sprintf("validation error: %s - %s", ve[0].Field(), ve[0].Tag())
	}
	return "validation error: invalid request"
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyAggregationInput,
		domain.ErrEmbeddingProviderError,
		domain.ErrStorage,
		domain.ErrVectorIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return "search failed: " + s.Error()
		}
	}
	// Request validation messages carry only the caller's own input.
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	return "search failed"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, body ErrorResponse) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		body.Code = code
		writeError(w, status, body)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)
	log.Warn("domain error", zap.Error(err))

	body := ErrorResponse{Message: safeDomainMessage(err)}
	var se *rank.StageError
	if errors.As(err, &se) {
		body.Stage = string(se.Stage)
	}
	if runID := w.Header().Get("X-Run-ID"); runID != "" {
		body.RunID = runID
	}

	for _, h := range s.errorHandlers {
		if h(w, err, body) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	body.Code = ErrorCodeSearchFailed
	writeError(w, http.StatusInternalServerError, body)
}
