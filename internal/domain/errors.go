package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals a malformed rank request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorIndexUnavailable signals that the vector index did not answer after all retries.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
	// ErrStorage signals a candidate storage failure.
	ErrStorage = errors.New("storage error")
	// ErrEmptyAggregationInput signals an averaging step that received zero embeddings.
	ErrEmptyAggregationInput = errors.New("empty aggregation input")
	// ErrDimensionMismatch signals vectors of different length in one aggregation.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// StorageError wraps a storage collaborator failure with the operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// NewStorageError creates a storage error for op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
