// Package aggregate averages embeddings into one representative vector per tag list.
package aggregate

import (
	"fmt"

	"github.com/kailas-cloud/talentrank/internal/domain"
)

// Average returns the element-wise mean of equally sized vectors.
func Average(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, domain.ErrEmptyAggregationInput
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("zero-length vector: %w", domain.ErrEmptyAggregationInput)
	}

	sums := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has %d dims, want %d: %w", i, len(v), dim, domain.ErrDimensionMismatch)
		}
		for j, x := range v {
			sums[j] += float64(x)
		}
	}

	out := make([]float32, dim)
	n := float64(len(vectors))
	for j, s := range sums {
		out[j] = float32(s / n)
	}
	return out, nil
}
