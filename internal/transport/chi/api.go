package chi

import (
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/request"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
)

// ErrorCode is a machine-readable error class in API responses.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	ErrorCodeStorage           ErrorCode = "storage_unavailable"
	ErrorCodeVectorIndex       ErrorCode = "vector_index_unavailable"
	ErrorCodeSearchFailed      ErrorCode = "search_failed"
	ErrorCodeInternal          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	RunID   string    `json:"runId,omitempty"`
	Stage   string    `json:"stage,omitempty"`
}

// RankRequest is the body of POST /v1/rank.
type RankRequest struct {
	Kind             string   `json:"kind" validate:"required,oneof=profileUrls companyUrls structuredFilter"`
	URLs             []string `json:"urls" validate:"required_unless=Kind structuredFilter,max=500,dive,required,url"`
	Skills           []string `json:"skills" validate:"max=100,dive,required"`
	JobTitle         string   `json:"jobTitle" validate:"max=256"`
	CompanyIDs       []string `json:"companyIds" validate:"dive,required"`
	NearTargetRegion bool     `json:"nearTargetRegion"`
	WeightSet        string   `json:"weightSet" validate:"omitempty,oneof=search company"`
}

// toDomain builds the validated domain request.
func (r *RankRequest) toDomain() (request.Request, error) {
	switch request.Kind(r.Kind) {
	case request.ProfileURLs:
		return request.NewProfileURLs(r.URLs)
	case request.CompanyURLs:
		return request.NewCompanyURLs(r.URLs)
	default:
		return request.NewStructuredFilter(request.Filter{
			Skills:           r.Skills,
			JobTitle:         r.JobTitle,
			CompanyIDs:       r.CompanyIDs,
			NearTargetRegion: r.NearTargetRegion,
			WeightSet:        r.WeightSet,
		})
	}
}

// RankResponse is the body of a successful POST /v1/rank.
type RankResponse struct {
	RunID              string          `json:"runId"`
	Results            []result.Ranked `json:"results"`
	InputNotFound      bool            `json:"inputNotFound"`
	InputSize          int             `json:"inputSize"`
	PoolSize           int             `json:"poolSize"`
	DegradedNamespaces []string        `json:"degradedNamespaces,omitempty"`
}

func rankResponse(out *result.Outcome) RankResponse {
	results := out.Results
	if results == nil {
		results = []result.Ranked{}
	}
	return RankResponse{
		RunID:              out.RunID,
		Results:            results,
		InputNotFound:      out.InputNotFound,
		InputSize:          out.InputSize,
		PoolSize:           out.PoolSize,
		DegradedNamespaces: out.DegradedIndex,
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
