// Package vectorindex queries the per-namespace nearest-neighbor indexes.
//
// Each (entity kind, namespace) pair is one FT index over hashes keyed
// talentrank:<kind>:<namespace>:<entity id>. The index is treated as unreliable:
// transport errors and empty or malformed replies are retried, and once retries
// are exhausted Query degrades to an empty match list so ranking can go on
// with the remaining signals.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/db"
	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
	"github.com/kailas-cloud/talentrank/internal/logger"
	"github.com/kailas-cloud/talentrank/internal/metrics"
	"github.com/kailas-cloud/talentrank/internal/retry"
)

// EntityIDField holds the candidate or company ID inside every indexed hash.
const EntityIDField = "entity_id"

var (
	errEmptyReply     = errors.New("empty reply")
	errMalformedReply = errors.New("malformed reply")
)

type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// BreakerConfig configures the circuit breaker shared by all namespaces.
type BreakerConfig struct {
	Enabled     bool
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	TripRatio   float64
	MinRequests uint32
}

// Config holds vector index client settings.
type Config struct {
	Dimensions     int
	HNSWM          int
	EFConstruction int
	Retry          retry.Policy
	Breaker        BreakerConfig
}

// Client queries namespace indexes with retry and an optional circuit breaker.
type Client struct {
	store   store
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// New creates a client. A nil logger falls back to a no-op.
func New(s store, cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{store: s, cfg: cfg, logger: log}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, log)
	}
	return c
}

func newBreaker(cfg BreakerConfig, log *zap.Logger) *gobreaker.CircuitBreaker {
	minReq := cfg.MinRequests
	if minReq == 0 {
		minReq = 3
	}
	const name = "vector_index"
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minReq && ratio >= cfg.TripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn("vector index breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// IndexName returns the FT index of a namespace for the given entity kind.
func IndexName(kind candidate.Kind, namespace string) string {
	return KeyPrefix(kind, namespace) + "idx"
}

// KeyPrefix returns the hash key prefix covered by a namespace index.
func KeyPrefix(kind candidate.Kind, namespace string) string {
	return domain.KeyPrefix + string(kind) + ":" + namespace + ":"
}

// Query returns the topK nearest entities. After the retry budget is spent it
// logs the failure and returns an empty list instead of an error.
func (c *Client) Query(
	ctx context.Context, kind candidate.Kind, namespace string, vector []float32, topK int,
) []domain.Match {
	matches, err := c.QueryStrict(ctx, kind, namespace, vector, topK)
	if err != nil {
		logger.FromContext(ctx).Warn("vector index query degraded to empty result",
			zap.String("kind", string(kind)),
			zap.String("namespace", namespace),
			zap.Error(err),
		)
		return nil
	}
	return matches
}

// QueryStrict is Query without degradation. Exhausted retries yield
// domain.ErrVectorIndexUnavailable.
func (c *Client) QueryStrict(
	ctx context.Context, kind candidate.Kind, namespace string, vector []float32, topK int,
) ([]domain.Match, error) {
	if len(vector) == 0 || topK <= 0 {
		return nil, fmt.Errorf("query %s: empty vector or non-positive topK: %w", namespace, domain.ErrInvalidRequest)
	}
	if c.cfg.Dimensions > 0 && len(vector) != c.cfg.Dimensions {
		return nil, fmt.Errorf("query %s: vector has %d dims, index has %d: %w",
			namespace, len(vector), c.cfg.Dimensions, domain.ErrDimensionMismatch)
	}

	q := &db.KNNQuery{
		IndexName:    IndexName(kind, namespace),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{EntityIDField},
	}

	log := logger.FromContext(ctx)
	policy := c.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		metrics.VectorQueryRetriesTotal.WithLabelValues(namespace).Inc()
		log.Info("retrying vector index query",
			zap.String("namespace", namespace),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	start := time.Now()
	var matches []domain.Match
	err := policy.Do(ctx, func(ctx context.Context, _ int) error {
		var err error
		matches, err = c.attempt(ctx, q)
		return err
	})
	metrics.VectorQueryDuration.WithLabelValues(namespace).Observe(time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			metrics.VectorQueriesTotal.WithLabelValues(namespace, "cancelled").Inc()
			return nil, fmt.Errorf("query %s: %w", namespace, ctx.Err())
		}
		metrics.VectorQueriesTotal.WithLabelValues(namespace, "error").Inc()
		return nil, fmt.Errorf("query %s: %w", namespace, errors.Join(domain.ErrVectorIndexUnavailable, err))
	}
	metrics.VectorQueriesTotal.WithLabelValues(namespace, "ok").Inc()
	return matches, nil
}

func (c *Client) attempt(ctx context.Context, q *db.KNNQuery) ([]domain.Match, error) {
	if c.breaker == nil {
		return c.search(ctx, q)
	}
	out, err := c.breaker.Execute(func() (any, error) {
		return c.search(ctx, q)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, retry.Permanent(err)
	}
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by search
	}
	return out.([]domain.Match), nil //nolint:forcetypeassert // search returns []domain.Match
}

func (c *Client) search(ctx context.Context, q *db.KNNQuery) ([]domain.Match, error) {
	res, err := c.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, retry.Permanent(err)
		}
		return nil, fmt.Errorf("knn %s: %w", q.IndexName, err)
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, fmt.Errorf("knn %s: %w", q.IndexName, errEmptyReply)
	}

	matches := make([]domain.Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		id := e.Fields[EntityIDField]
		if id == "" {
			id = idFromKey(e.Key, q.IndexName)
		}
		if id == "" {
			return nil, fmt.Errorf("knn %s: entry %q without entity id: %w", q.IndexName, e.Key, errMalformedReply)
		}
		matches = append(matches, domain.Match{ID: id, Score: e.Score})
	}
	return matches, nil
}

// idFromKey recovers the entity ID from talentrank:<kind>:<namespace>:<id>.
func idFromKey(key, indexName string) string {
	prefix := strings.TrimSuffix(indexName, "idx")
	id, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return ""
	}
	return id
}
