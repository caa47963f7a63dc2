// Package weights holds the literal scoring constants and named weight sets.
// The sets are literal and never renormalized.
package weights

// Exemplar combine defaults.
const (
	DefaultExperienceWeight = 0.2
	DefaultRegionBoost      = 1.2
	DefaultRegionMajority   = 0.5
	DefaultSchoolThreshold  = 0.75
	DefaultMaxResults       = 100
)

// Set is a named weight configuration for the structured filter scorer.
type Set struct {
	Name               string
	Similarity         float64
	WorkedInPosition   float64
	WorkedAtRelevant   float64
	RelevantSkillRatio float64
	WorkedInBigTech    float64
	LivesNearRegion    float64
}

var (
	// Search weights the free search path.
	Search = Set{
		Name:             "search",
		Similarity:       0.35,
		WorkedInPosition: 0.15,
		WorkedAtRelevant: 0.35,
		WorkedInBigTech:  0.15,
		LivesNearRegion:  0.35,
	}
	// Company weights the company-scoped search path.
	Company = Set{
		Name:               "company",
		Similarity:         0.1,
		WorkedInPosition:   0.15,
		RelevantSkillRatio: 0.3,
		WorkedInBigTech:    0.15,
		LivesNearRegion:    0.3,
	}
)

// ByName looks up a built-in weight set.
func ByName(name string) (Set, bool) {
	switch name {
	case Search.Name:
		return Search, true
	case Company.Name:
		return Company, true
	default:
		return Set{}, false
	}
}

// Exemplar parameterizes the exemplar combine.
type Exemplar struct {
	ExperienceWeight float64
	RegionBoost      float64
	MaxResults       int
}

// DefaultExemplar returns the documented exemplar constants.
func DefaultExemplar() Exemplar {
	return Exemplar{
		ExperienceWeight: DefaultExperienceWeight,
		RegionBoost:      DefaultRegionBoost,
		MaxResults:       DefaultMaxResults,
	}
}
