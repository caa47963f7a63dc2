package rank

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
	"github.com/kailas-cloud/talentrank/internal/usecase/aggregate"
	"github.com/kailas-cloud/talentrank/internal/usecase/combine"
)

// rankFilter scores the candidate pool against explicit criteria. There is no exemplar set,
// so nothing is excluded and InputNotFound never applies.
func (s *Service) rankFilter(ctx context.Context, r *run) (result.Outcome, error) {
	f := r.req.Filter()

	var companyNames []string
	if len(f.CompanyIDs) > 0 {
		companies, err := s.storage.FindByIDs(ctx, candidate.KindCompany, f.CompanyIDs)
		if err != nil {
			return result.Outcome{}, fmt.Errorf("resolve companies: %w", err)
		}
		for i := range companies {
			companyNames = append(companyNames, companies[i].Name)
		}
	}

	r.track.enter(StageAnalyze)
	skills := aggregate.NormalizeTags(f.Skills)
	tables := &combine.FilterTables{
		Weights:          r.req.Weights(),
		Skills:           skills,
		JobTitle:         f.JobTitle,
		CompanyNames:     combine.NameSet(companyNames),
		NearTargetRegion: f.NearTargetRegion,
	}

	signals := []signal{{namespace: domain.NamespaceSkills, tags: skills}}
	if f.JobTitle != "" {
		signals = append(signals, signal{namespace: domain.NamespaceJobTitles, tags: aggregate.NormalizeTags([]string{f.JobTitle})})
	}
	// A filter may legitimately omit skills or title; the missing one is simply not queried.
	signals = dropEmpty(signals)

	signals, err := s.embedSignals(ctx, r, signals)
	if err != nil {
		return result.Outcome{}, err
	}
	tables.Matches, err = s.queryIndex(ctx, r, signals)
	if err != nil {
		return result.Outcome{}, err
	}

	top, pool, err := s.scorePool(ctx, r, func(ctx context.Context, page []candidate.Candidate) ([]result.Scored, error) {
		return s.combiner.ScoreFilterPage(ctx, page, tables)
	})
	if err != nil {
		return result.Outcome{}, err
	}

	return result.Outcome{
		Results:  s.finish(r, top),
		PoolSize: pool,
	}, nil
}

func dropEmpty(signals []signal) []signal {
	out := signals[:0]
	for _, s := range signals {
		if len(s.tags) > 0 {
			out = append(out, s)
		}
	}
	return out
}
