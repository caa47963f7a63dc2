package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/config"
	"github.com/kailas-cloud/talentrank/internal/db"
	dbRedis "github.com/kailas-cloud/talentrank/internal/db/redis"
	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/weights"
	"github.com/kailas-cloud/talentrank/internal/metrics"
	candidaterepo "github.com/kailas-cloud/talentrank/internal/repository/candidate"
	"github.com/kailas-cloud/talentrank/internal/repository/embcache"
	"github.com/kailas-cloud/talentrank/internal/repository/vectorindex"
	"github.com/kailas-cloud/talentrank/internal/retry"
	openaiEmb "github.com/kailas-cloud/talentrank/internal/transport/openai"
	"github.com/kailas-cloud/talentrank/internal/usecase/affinity"
	"github.com/kailas-cloud/talentrank/internal/usecase/aggregate"
	"github.com/kailas-cloud/talentrank/internal/usecase/combine"
	embeddinguc "github.com/kailas-cloud/talentrank/internal/usecase/embedding"
	"github.com/kailas-cloud/talentrank/internal/usecase/experience"
	healthuc "github.com/kailas-cloud/talentrank/internal/usecase/health"
	"github.com/kailas-cloud/talentrank/internal/usecase/rank"
)

// app is the composition root shared by serve and rank.
type app struct {
	store      db.Store
	candidates *candidaterepo.Repo
	index      *vectorindex.Client
	provider   *openaiEmb.Embedder
	ranker     *rank.Service
	health     *healthuc.Service
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.VectorStore.Addrs,
		Username: cfg.VectorStore.Username,
		Password: cfg.VectorStore.Password,
		DB:       cfg.VectorStore.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create vector store: %w", err)
	}
	if err := store.WaitForReady(ctx, cfg.VectorStore.Timeout()); err != nil {
		store.Close()
		return nil, fmt.Errorf("vector store not ready: %w", err)
	}
	logger.Info("Connected to vector store", zap.Strings("addrs", cfg.VectorStore.Addrs))

	candidates, err := candidaterepo.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("Connected to postgres", zap.Int32("max_conns", cfg.Postgres.MaxConns))

	a := &app{store: store, candidates: candidates}
	a.index = vectorindex.New(store, vectorIndexConfig(cfg), logger.Named("vectorindex"))

	a.provider = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	tags := aggregate.NewTagEmbedder(buildEmbedder(cfg, a.provider, store, logger), cfg.Embedding.Concurrency)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.CacheEnabled),
	)

	exp := experience.NewForNow()
	rc := cfg.Ranking
	combiner := combine.New(exp, weights.Exemplar{
		ExperienceWeight: rc.ExperienceWeight,
		RegionBoost:      rc.RegionBoost,
		MaxResults:       rc.MaxResults,
	}, rc.Workers)

	a.ranker = rank.New(candidates, tags, a.index, combiner,
		affinity.New(rc.SchoolThreshold, rc.RegionMajority), exp,
		rank.Config{
			PageSize:    rc.PageSize,
			TopK:        cfg.VectorIndex.TopK,
			EmptySignal: rank.EmptySignalPolicy(rc.EmptySignalPolicy),
		})
	a.health = healthuc.New(candidates, store, a.provider)
	return a, nil
}

// bootstrap runs the optional --ensure-schema and --ensure-indexes steps.
func (a *app) bootstrap(ctx context.Context, logger *zap.Logger) error {
	if ensureSchema {
		if err := a.candidates.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("Entities schema ensured")
	}
	if ensureIndexes {
		created, err := a.index.EnsureIndexes(ctx)
		if err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("Vector indexes ensured", zap.Int("created", created))
	}
	return nil
}

func (a *app) Close() {
	a.candidates.Close()
	a.store.Close()
}

func vectorIndexConfig(cfg *config.Config) vectorindex.Config {
	vi := cfg.VectorIndex
	policy := retry.Default()
	policy.MaxAttempts = vi.Retry.MaxAttempts
	policy.BaseDelay = time.Duration(vi.Retry.BaseDelayMS) * time.Millisecond
	policy.Multiplier = vi.Retry.Multiplier
	policy.MaxDelay = time.Duration(vi.Retry.MaxDelayMS) * time.Millisecond

	return vectorindex.Config{
		Dimensions:     cfg.Embedding.Dimensions,
		HNSWM:          vi.HNSWM,
		EFConstruction: vi.HNSWEFConstruct,
		Retry:          policy,
		Breaker: vectorindex.BreakerConfig{
			Enabled:     vi.Breaker.Enabled,
			MaxRequests: vi.Breaker.MaxRequests,
			Interval:    time.Duration(vi.Breaker.IntervalSec) * time.Second,
			Timeout:     time.Duration(vi.Breaker.TimeoutSec) * time.Second,
			TripRatio:   vi.Breaker.TripRatio,
		},
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached (optional) -> Instrumented.
func buildEmbedder(
	cfg *config.Config, base domain.Embedder, store db.KVStore, logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cfg.Embedding.CacheEnabled {
		embedder = embcache.New(base, store, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Model,
		time.Duration(cfg.Embedding.TimeoutSec)*time.Second)
}
