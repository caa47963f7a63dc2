// Package affinity derives frequency-weighted attribute tables from an input set.
//
// Company weights use every company seen, while school weights keep only schools
// mentioned at least ceil(threshold * |input|) times.
package affinity

import (
	"math"

	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/weights"
)

// Weights maps an attribute value to its affinity weight. Absent keys weigh 0.
type Weights map[string]float64

// Sum returns the total weight of the given attribute values.
func (w Weights) Sum(values []string) float64 {
	var total float64
	for _, v := range values {
		total += w[v]
	}
	return total
}

// Analyzer computes affinity tables.
type Analyzer struct {
	schoolThreshold float64
	regionMajority  float64
}

// New creates an analyzer. Non-positive arguments fall back to the defaults (0.75, 0.5).
func New(schoolThreshold, regionMajority float64) *Analyzer {
	if schoolThreshold <= 0 {
		schoolThreshold = weights.DefaultSchoolThreshold
	}
	if regionMajority <= 0 {
		regionMajority = weights.DefaultRegionMajority
	}
	return &Analyzer{schoolThreshold: schoolThreshold, regionMajority: regionMajority}
}

// AnalyzeCompanies weighs each company by how many input members worked there,
// counting each member once per company, over the total member-company pairs.
func (a *Analyzer) AnalyzeCompanies(cs []candidate.Candidate) Weights {
	freq := make(map[string]int)
	total := 0
	for i := range cs {
		for _, name := range cs[i].UniqueCompanies() {
			freq[name]++
			total++
		}
	}
	return normalize(freq, total)
}

// AnalyzeEducation weighs schools by raw mention count, keeping only schools at or above
// ceil(threshold * |cs|) mentions, normalized over the kept schools.
func (a *Analyzer) AnalyzeEducation(cs []candidate.Candidate) Weights {
	freq := make(map[string]int)
	for i := range cs {
		for _, school := range cs[i].Schools() {
			freq[school]++
		}
	}

	minFreq := a.SchoolThreshold(len(cs))
	kept := make(map[string]int, len(freq))
	total := 0
	for school, n := range freq {
		if n >= minFreq {
			kept[school] = n
			total += n
		}
	}
	return normalize(kept, total)
}

// SchoolThreshold returns the minimum mention count for a school given the input size.
func (a *Analyzer) SchoolThreshold(inputSize int) int {
	return int(math.Ceil(a.schoolThreshold * float64(inputSize)))
}

// AnalyzeRegionMajority reports whether the share of input members known to live near the
// target region reaches the majority ratio. Empty input has no majority.
func (a *Analyzer) AnalyzeRegionMajority(cs []candidate.Candidate) bool {
	if len(cs) == 0 {
		return false
	}
	near := 0
	for i := range cs {
		if cs[i].LivesNear() {
			near++
		}
	}
	return float64(near)/float64(len(cs)) >= a.regionMajority
}

func normalize(freq map[string]int, total int) Weights {
	w := make(Weights, len(freq))
	if total == 0 {
		return w
	}
	for k, n := range freq {
		w[k] = float64(n) / float64(total)
	}
	return w
}
