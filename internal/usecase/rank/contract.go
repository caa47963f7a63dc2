package rank

import (
	"context"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
)

// Storage reads the input set and the candidate pool.
type Storage interface {
	FindByURLs(ctx context.Context, kind candidate.Kind, urls []string) ([]candidate.Candidate, error)
	FindByIDs(ctx context.Context, kind candidate.Kind, ids []string) ([]candidate.Candidate, error)
	FindPage(ctx context.Context, kind candidate.Kind, after candidate.Cursor, limit int) (candidate.Page, error)
}

// TagEmbedder turns a tag list into one averaged embedding.
type TagEmbedder interface {
	AverageOf(ctx context.Context, tags []string) ([]float32, error)
}

// VectorIndex answers nearest-neighbor queries. An empty result means "no signal".
type VectorIndex interface {
	Query(ctx context.Context, kind candidate.Kind, namespace string, vector []float32, topK int) []domain.Match
}
