package combine

import (
	"sort"

	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
)

// TopK keeps the n best results across pages.
// Ties are broken by arrival order: a result pushed earlier ranks first.
type TopK struct {
	n       int
	seq     int
	entries []entry
}

type entry struct {
	scored result.Scored
	seq    int
}

// NewTopK creates an accumulator that keeps at most n results.
func NewTopK(n int) *TopK {
	return &TopK{n: n}
}

// Push merges a page of results, keeping only the n best seen so far.
func (t *TopK) Push(page []result.Scored) {
	for _, s := range page {
		// Detach from the page slice so discarded pages can be collected.
		c := *s.Candidate
		s.Candidate = &c
		t.entries = append(t.entries, entry{scored: s, seq: t.seq})
		t.seq++
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		a, b := t.entries[i], t.entries[j]
		if a.scored.CombinedScore != b.scored.CombinedScore {
			return a.scored.CombinedScore > b.scored.CombinedScore
		}
		return a.seq < b.seq
	})
	if len(t.entries) > t.n {
		t.entries = t.entries[:t.n]
	}
}

// Seen returns how many results were pushed in total.
func (t *TopK) Seen() int { return t.seq }

// Results returns the kept results in rank order.
func (t *TopK) Results() []result.Scored {
	out := make([]result.Scored, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.scored
	}
	return out
}
