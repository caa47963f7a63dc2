// Package combine merges vector similarity, affinity and experience signals into one score.
package combine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/weights"
	"github.com/kailas-cloud/talentrank/internal/usecase/affinity"
	"github.com/kailas-cloud/talentrank/internal/usecase/experience"
)

// minShard is the smallest slice of a page handed to one worker.
const minShard = 64

// Tables are the immutable weighting tables of one exemplar run.
// They are computed once before scoring fans out and never mutated afterwards.
type Tables struct {
	Matches          []domain.MatchSet
	Experience       experience.Stats
	Companies        affinity.Weights
	Education        affinity.Weights
	ApplyRegionBoost bool
}

// FilterTables are the immutable inputs of one structured filter run.
type FilterTables struct {
	Weights          weights.Set
	Matches          []domain.MatchSet
	Skills           []string
	JobTitle         string
	CompanyNames     map[string]struct{}
	NearTargetRegion bool
}

// Combiner scores pool candidates. It holds no per-run state and is safe for concurrent use.
type Combiner struct {
	exp     *experience.Analyzer
	params  weights.Exemplar
	workers int
}

// New creates a combiner. workers <= 0 scores on the calling goroutine.
func New(exp *experience.Analyzer, params weights.Exemplar, workers int) *Combiner {
	if params.MaxResults <= 0 {
		params.MaxResults = weights.DefaultMaxResults
	}
	if workers <= 0 {
		workers = 1
	}
	return &Combiner{exp: exp, params: params, workers: workers}
}

// MaxResults returns the truncation limit of a run.
func (c *Combiner) MaxResults() int { return c.params.MaxResults }

// Combine scores a whole pool against exemplar tables and returns the top results,
// sorted by descending score with ties kept in pool order. Excluded IDs never appear.
func (c *Combiner) Combine(
	ctx context.Context, pool []candidate.Candidate, exclude map[string]struct{}, t *Tables,
) ([]result.Scored, error) {
	top := NewTopK(c.params.MaxResults)
	scored, err := c.ScorePage(ctx, pool, exclude, t)
	if err != nil {
		return nil, err
	}
	top.Push(scored)
	return top.Results(), nil
}

// ScorePage scores one page of the pool against exemplar tables, preserving page order.
func (c *Combiner) ScorePage(
	ctx context.Context, page []candidate.Candidate, exclude map[string]struct{}, t *Tables,
) ([]result.Scored, error) {
	return c.shard(ctx, page, exclude, func(cand *candidate.Candidate) result.Scored {
		return c.scoreExemplar(cand, t)
	})
}

// ScoreFilterPage scores one page of the pool against structured filter criteria.
func (c *Combiner) ScoreFilterPage(
	ctx context.Context, page []candidate.Candidate, t *FilterTables,
) ([]result.Scored, error) {
	return c.shard(ctx, page, nil, func(cand *candidate.Candidate) result.Scored {
		return c.scoreFilter(cand, t)
	})
}

func (c *Combiner) scoreExemplar(cand *candidate.Candidate, t *Tables) result.Scored {
	var b result.Breakdown
	for _, m := range t.Matches {
		b.Vector += m.Score(cand.ID)
	}

	exp := c.exp.ScoreOne(cand, t.Experience)
	b.Experience = exp.Value * c.params.ExperienceWeight
	// Companies count once per candidate, schools once per mention.
	b.Company = t.Companies.Sum(cand.UniqueCompanies())
	b.Education = t.Education.Sum(cand.Schools())

	score := b.Vector + b.Experience + b.Company + b.Education
	if t.ApplyRegionBoost && cand.LivesNear() {
		score *= c.params.RegionBoost
		b.RegionBoosted = true
	}

	return result.Scored{
		Candidate:            cand,
		CombinedScore:        score,
		ExperienceScore:      exp.Value,
		TotalExperienceYears: exp.TotalExperienceYears,
		Breakdown:            b,
	}
}

func (c *Combiner) scoreFilter(cand *candidate.Candidate, t *FilterTables) result.Scored {
	w := t.Weights

	var similarity float64
	if len(t.Matches) > 0 {
		for _, m := range t.Matches {
			similarity += m.Score(cand.ID)
		}
		similarity /= float64(len(t.Matches))
	}

	var filter float64
	if cand.HeldTitle(t.JobTitle) {
		filter += w.WorkedInPosition
	}
	if workedAtAny(cand, t.CompanyNames) {
		filter += w.WorkedAtRelevant
	}
	filter += w.RelevantSkillRatio * SkillRatio(t.Skills, cand.TopTechnologies)
	if cand.WorkedInBigTech {
		filter += w.WorkedInBigTech
	}
	boosted := t.NearTargetRegion && cand.LivesNear()
	if boosted {
		filter += w.LivesNearRegion
	}

	b := result.Breakdown{
		Vector:        similarity * w.Similarity,
		Filter:        filter,
		RegionBoosted: boosted,
	}
	return result.Scored{
		Candidate:            cand,
		CombinedScore:        b.Vector + b.Filter,
		// No exemplar statistics on this path: the stdDev==0 value.
		ExperienceScore:      1,
		TotalExperienceYears: cand.TotalExperienceYears(c.exp.CurrentYear()),
		Breakdown:            b,
	}
}

// shard splits a page across workers. Each worker writes only its own index range, so the
// output order equals the page order regardless of scheduling.
func (c *Combiner) shard(
	ctx context.Context, page []candidate.Candidate, exclude map[string]struct{},
	score func(*candidate.Candidate) result.Scored,
) ([]result.Scored, error) {
	out := make([]result.Scored, len(page))
	keep := make([]bool, len(page))

	size := max(minShard, (len(page)+c.workers-1)/c.workers)
	g, gCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(page); start += size {
		end := min(start+size, len(page))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gCtx.Err(); err != nil {
					return fmt.Errorf("score shard: %w", err)
				}
				if _, skip := exclude[page[i].ID]; skip {
					continue
				}
				out[i] = score(&page[i])
				keep[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped inside the shard
	}

	n := 0
	for i := range out {
		if keep[i] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n], nil
}

// SkillRatio returns the share of requested skills found in the candidate's technologies.
func SkillRatio(requested, technologies []string) float64 {
	if len(requested) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(technologies))
	for _, t := range technologies {
		have[normalizeTag(t)] = struct{}{}
	}
	hits := 0
	for _, s := range requested {
		if _, ok := have[normalizeTag(s)]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(requested))
}

func workedAtAny(cand *candidate.Candidate, names map[string]struct{}) bool {
	if len(names) == 0 {
		return false
	}
	for _, name := range cand.Companies() {
		if _, ok := names[normalizeTag(name)]; ok {
			return true
		}
	}
	return false
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NameSet builds a case-insensitive lookup of company names.
func NameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = normalizeTag(n); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
