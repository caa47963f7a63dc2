package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
)

// DefaultConcurrency bounds parallel embedding calls per tag list.
const DefaultConcurrency = 8

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// TagEmbedder embeds tag lists concurrently and averages them.
type TagEmbedder struct {
	embed       Embedder
	concurrency int
}

// NewTagEmbedder creates a tag embedder. concurrency <= 0 uses DefaultConcurrency.
func NewTagEmbedder(embed Embedder, concurrency int) *TagEmbedder {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &TagEmbedder{embed: embed, concurrency: concurrency}
}

// EmbedAll embeds every tag. Output order matches input order; the first error aborts the rest.
func (e *TagEmbedder) EmbedAll(ctx context.Context, tags []string) ([][]float32, error) {
	out := make([][]float32, len(tags))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, tag := range tags {
		g.Go(func() error {
			res, err := e.embed.Embed(gCtx, tag)
			if err != nil {
				return fmt.Errorf("embed tag %q: %w", tag, err)
			}
			domain.UsageFromContext(gCtx).AddTokens(res.TotalTokens)
			out[i] = res.Embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per tag
	}
	return out, nil
}

// AverageOf embeds tags and returns their mean vector.
// No tags yields domain.ErrEmptyAggregationInput without calling the provider.
func (e *TagEmbedder) AverageOf(ctx context.Context, tags []string) ([]float32, error) {
	if len(tags) == 0 {
		return nil, domain.ErrEmptyAggregationInput
	}
	vectors, err := e.EmbedAll(ctx, tags)
	if err != nil {
		return nil, err
	}
	avg, err := Average(vectors)
	if err != nil {
		return nil, fmt.Errorf("average %d embeddings: %w", len(vectors), err)
	}
	return avg, nil
}

// Field selects one tag list of a candidate.
type Field func(c *candidate.Candidate) []string

// Tag list selectors.
var (
	Technologies Field = func(c *candidate.Candidate) []string { return c.TopTechnologies }
	Features     Field = func(c *candidate.Candidate) []string { return c.TopFeatures }
	JobTitles    Field = func(c *candidate.Candidate) []string { return c.JobTitles }
)

// CollectTags gathers the distinct tags of one kind across an input set.
func CollectTags(cs []candidate.Candidate, field Field) []string {
	var all []string
	for i := range cs {
		all = append(all, field(&cs[i])...)
	}
	return NormalizeTags(all)
}

// NormalizeTags lowercases and trims tags, drops blanks and duplicates, and sorts the rest
// so the embedding order is reproducible.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		norm := strings.ToLower(strings.TrimSpace(tag))
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	sort.Strings(out)
	return out
}
