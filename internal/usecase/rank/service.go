// Package rank runs the relevance pipeline: fetch exemplars, derive weighting
// tables, embed and query the vector index, then score the paged candidate pool.
package rank

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/request"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
	"github.com/kailas-cloud/talentrank/internal/logger"
	"github.com/kailas-cloud/talentrank/internal/metrics"
	"github.com/kailas-cloud/talentrank/internal/usecase/affinity"
	"github.com/kailas-cloud/talentrank/internal/usecase/combine"
	"github.com/kailas-cloud/talentrank/internal/usecase/experience"
)

// Defaults.
const (
	DefaultPageSize = 500
	DefaultTopK     = 1000
)

// EmptySignalPolicy decides what happens when an exemplar set has no tags for a namespace.
type EmptySignalPolicy string

// Empty signal policies.
const (
	// EmptySignalSkip drops the namespace; it contributes nothing to any score.
	EmptySignalSkip EmptySignalPolicy = "skip"
	// EmptySignalFail fails the run with domain.ErrEmptyAggregationInput.
	EmptySignalFail EmptySignalPolicy = "fail"
)

// Config tunes the pipeline.
type Config struct {
	PageSize    int
	TopK        int
	EmptySignal EmptySignalPolicy
}

// Service is the relevance pipeline. It keeps no per-run state and serves concurrent runs.
type Service struct {
	storage  Storage
	embed    TagEmbedder
	index    VectorIndex
	combiner *combine.Combiner
	affinity *affinity.Analyzer
	exp      *experience.Analyzer
	cfg      Config
	now      func() time.Time
}

// New creates the pipeline.
func New(
	storage Storage, embed TagEmbedder, index VectorIndex,
	combiner *combine.Combiner, aff *affinity.Analyzer, exp *experience.Analyzer,
	cfg Config,
) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.EmptySignal == "" {
		cfg.EmptySignal = EmptySignalSkip
	}
	return &Service{
		storage:  storage,
		embed:    embed,
		index:    index,
		combiner: combiner,
		affinity: aff,
		exp:      exp,
		cfg:      cfg,
		now:      time.Now,
	}
}

// run is the state of one invocation.
type run struct {
	id       string
	req      request.Request
	kind     candidate.Kind
	track    *tracker
	log      *zap.Logger
	usage    *domain.EmbeddingUsage
	degraded []string
}

// Rank executes one request to a terminal stage. A DONE run returns its outcome; a FAILED
// run returns a *StageError wrapping the originating error and no partial results.
func (s *Service) Rank(ctx context.Context, req request.Request) (result.Outcome, error) {
	r := &run{
		id:    uuid.NewString(),
		req:   req,
		kind:  req.EntityKind(),
		track: newTracker(s.now),
	}
	ctx, r.usage = domain.NewContextWithUsage(ctx)
	ctx, r.log = logger.With(ctx, zap.String("run_id", r.id), zap.String("request_kind", string(req.Kind())))
	r.track.log = r.log
	start := s.now()

	var (
		out result.Outcome
		err error
	)
	if req.UsesExemplars() {
		out, err = s.rankExemplars(ctx, r)
	} else {
		out, err = s.rankFilter(ctx, r)
	}
	if err != nil {
		err = r.track.fail(err)
	} else {
		r.track.enter(StageDone)
	}
	out.RunID = r.id
	out.DegradedIndex = r.degraded

	r.track.observe()
	metrics.RankRunsTotal.WithLabelValues(string(req.Kind()), string(r.track.stage)).Inc()
	if err == nil {
		metrics.RankPoolSize.Observe(float64(out.PoolSize))
	}
	s.logRun(r, out, err, s.now().Sub(start))

	if err != nil {
		return result.Outcome{RunID: r.id}, err
	}
	return out, nil
}

func (s *Service) logRun(r *run, out result.Outcome, err error, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("stage", string(r.track.stage)),
		zap.Int("input_size", out.InputSize),
		zap.Bool("input_not_found", out.InputNotFound),
		zap.Int("pool_size", out.PoolSize),
		zap.Int("results", len(out.Results)),
		zap.Strings("degraded_namespaces", r.degraded),
		zap.Int("embedding_calls", r.usage.Calls()),
		zap.Int("embedding_tokens", r.usage.TotalTokens()),
		zap.Duration("duration", elapsed),
	}
	if err != nil {
		r.log.Error("rank_run", append(fields, zap.Error(err))...)
		return
	}
	r.log.Info("rank_run", fields...)
}

// signal is one namespace's query vector.
type signal struct {
	namespace string
	tags      []string
	vector    []float32
}

// embedSignals averages each namespace's tags concurrently. Namespaces without tags
// follow the empty signal policy.
func (s *Service) embedSignals(ctx context.Context, r *run, signals []signal) ([]signal, error) {
	r.track.enter(StageEmbed)

	for _, sig := range signals {
		if len(sig.tags) > 0 {
			continue
		}
		if s.cfg.EmptySignal == EmptySignalFail {
			return nil, fmt.Errorf("namespace %s: %w", sig.namespace, domain.ErrEmptyAggregationInput)
		}
		r.log.Debug("namespace skipped: no tags", zap.String("namespace", sig.namespace))
	}

	g, gCtx := errgroup.WithContext(ctx)
	for i := range signals {
		sig := &signals[i]
		if len(sig.tags) == 0 {
			continue
		}
		g.Go(func() error {
			vec, err := s.embed.AverageOf(gCtx, sig.tags)
			if err != nil {
				return fmt.Errorf("namespace %s: %w", sig.namespace, err)
			}
			sig.vector = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped per namespace
	}

	out := signals[:0]
	for _, sig := range signals {
		if sig.vector != nil {
			out = append(out, sig)
		}
	}
	return out, nil
}

// queryIndex runs one query per signal concurrently. Failed namespaces degrade to an
// empty match set and are recorded on the run.
func (s *Service) queryIndex(ctx context.Context, r *run, signals []signal) ([]domain.MatchSet, error) {
	r.track.enter(StageQueryVectorIndex)

	sets := make([]domain.MatchSet, len(signals))
	g, gCtx := errgroup.WithContext(ctx)
	for i, sig := range signals {
		g.Go(func() error {
			matches := s.index.Query(gCtx, r.kind, sig.namespace, sig.vector, s.cfg.TopK)
			sets[i] = domain.NewMatchSet(sig.namespace, matches)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	for _, set := range sets {
		if set.Empty() {
			r.degraded = append(r.degraded, set.Namespace)
		}
	}
	return sets, nil
}

// scorePool walks the pool page by page, scoring each page and keeping the running top-k.
func (s *Service) scorePool(
	ctx context.Context, r *run,
	score func(ctx context.Context, page []candidate.Candidate) ([]result.Scored, error),
) (*combine.TopK, int, error) {
	top := combine.NewTopK(s.combiner.MaxResults())
	var (
		cursor candidate.Cursor
		pool   int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, pool, fmt.Errorf("score pool: %w", err)
		}

		r.track.enter(StageFetchPool)
		page, err := s.storage.FindPage(ctx, r.kind, cursor, s.cfg.PageSize)
		if err != nil {
			return nil, pool, fmt.Errorf("fetch pool page after %q: %w", cursor.ID, err)
		}
		pool += len(page.Items)

		r.track.enter(StageCombine)
		scored, err := score(ctx, page.Items)
		if err != nil {
			return nil, pool, err
		}
		top.Push(scored)

		if page.Done || len(page.Items) == 0 {
			return top, pool, nil
		}
		cursor = page.Next
	}
}

func (s *Service) finish(r *run, top *combine.TopK) []result.Ranked {
	r.track.enter(StageSortTruncate)
	return result.ToRanked(top.Results())
}
