// Package experience scores candidates by how close their seniority is to the exemplars'.
package experience

import (
	"math"
	"time"

	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
)

// Stats summarizes years of experience over an input set.
// LowerBound and UpperBound are diagnostic only and never filter candidates.
type Stats struct {
	Mean       float64
	StdDev     float64
	LowerBound int
	UpperBound int
	Count      int
}

// Score is the experience signal for one candidate.
type Score struct {
	Value                float64
	TotalExperienceYears int
}

// Analyzer computes experience statistics relative to a fixed current year.
type Analyzer struct {
	currentYear int
}

// New creates an analyzer that substitutes currentYear for open-ended positions.
func New(currentYear int) *Analyzer {
	return &Analyzer{currentYear: currentYear}
}

// NewForNow creates an analyzer using the current calendar year.
func NewForNow() *Analyzer {
	return New(time.Now().Year())
}

// CurrentYear returns the year used for open-ended positions.
func (a *Analyzer) CurrentYear() int { return a.currentYear }

// ComputeBounds returns the mean and population standard deviation of total experience
// over cs, with bounds at two standard deviations. Candidates without positions count as 0.
func (a *Analyzer) ComputeBounds(cs []candidate.Candidate) Stats {
	if len(cs) == 0 {
		return Stats{}
	}

	years := make([]float64, len(cs))
	var sum float64
	for i := range cs {
		years[i] = float64(cs[i].TotalExperienceYears(a.currentYear))
		sum += years[i]
	}
	mean := sum / float64(len(cs))

	var sq float64
	for _, y := range years {
		d := y - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(cs)))

	return Stats{
		Mean:       mean,
		StdDev:     std,
		LowerBound: max(0, int(math.Round(mean-2*std))),
		UpperBound: int(math.Round(mean + 2*std)),
		Count:      len(cs),
	}
}

// ScoreOne returns a Gaussian-shaped score in (0,1] centered at stats.Mean.
// A zero standard deviation scores every candidate 1.
func (a *Analyzer) ScoreOne(c *candidate.Candidate, stats Stats) Score {
	years := c.TotalExperienceYears(a.currentYear)
	return Score{Value: Gaussian(float64(years), stats.Mean, stats.StdDev), TotalExperienceYears: years}
}

// Gaussian returns exp(-z²/2) for z = (x-mean)/std, or 1 when std is zero.
func Gaussian(x, mean, std float64) float64 {
	if std == 0 {
		return 1
	}
	z := (x - mean) / std
	return math.Exp(-z * z / 2)
}
