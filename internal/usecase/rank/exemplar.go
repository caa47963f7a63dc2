package rank

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
	"github.com/kailas-cloud/talentrank/internal/usecase/aggregate"
	"github.com/kailas-cloud/talentrank/internal/usecase/combine"
)

var exemplarFields = []struct {
	namespace string
	field     aggregate.Field
}{
	{domain.NamespaceSkills, aggregate.Technologies},
	{domain.NamespaceFeatures, aggregate.Features},
	{domain.NamespaceJobTitles, aggregate.JobTitles},
}

func (s *Service) rankExemplars(ctx context.Context, r *run) (result.Outcome, error) {
	input, err := s.storage.FindByURLs(ctx, r.kind, r.req.URLs())
	if err != nil {
		return result.Outcome{}, fmt.Errorf("fetch input set: %w", err)
	}
	if len(input) == 0 {
		r.log.Info("no exemplar matched the request", zap.Int("urls", len(r.req.URLs())))
		return result.Outcome{InputNotFound: true}, nil
	}

	r.track.enter(StageAnalyze)
	tables := &combine.Tables{
		Experience:       s.exp.ComputeBounds(input),
		Companies:        s.affinity.AnalyzeCompanies(input),
		Education:        s.affinity.AnalyzeEducation(input),
		ApplyRegionBoost: s.affinity.AnalyzeRegionMajority(input),
	}
	r.log.Debug("weighting tables computed",
		zap.Int("input_size", len(input)),
		zap.Float64("experience_mean", tables.Experience.Mean),
		zap.Float64("experience_std", tables.Experience.StdDev),
		zap.Int("companies", len(tables.Companies)),
		zap.Int("schools", len(tables.Education)),
		zap.Bool("region_boost", tables.ApplyRegionBoost),
	)

	signals := make([]signal, 0, len(exemplarFields))
	for _, f := range exemplarFields {
		signals = append(signals, signal{namespace: f.namespace, tags: aggregate.CollectTags(input, f.field)})
	}
	signals, err = s.embedSignals(ctx, r, signals)
	if err != nil {
		return result.Outcome{}, err
	}

	tables.Matches, err = s.queryIndex(ctx, r, signals)
	if err != nil {
		return result.Outcome{}, err
	}

	exclude := candidate.IDSet(input)
	top, pool, err := s.scorePool(ctx, r, func(ctx context.Context, page []candidate.Candidate) ([]result.Scored, error) {
		return s.combiner.ScorePage(ctx, page, exclude, tables)
	})
	if err != nil {
		return result.Outcome{}, err
	}

	return result.Outcome{
		Results:   s.finish(r, top),
		InputSize: len(input),
		PoolSize:  pool,
	}, nil
}
