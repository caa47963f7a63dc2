package result

import "github.com/kailas-cloud/talentrank/internal/domain/candidate"

// Breakdown is the per-signal contribution to a combined score.
type Breakdown struct {
	Vector        float64 `json:"vector"`
	Experience    float64 `json:"experience"`
	Company       float64 `json:"company"`
	Education     float64 `json:"education"`
	Filter        float64 `json:"filter"`
	RegionBoosted bool    `json:"regionBoosted"`
}

// Scored is a request-scoped projection of a pool candidate with its scores.
type Scored struct {
	Candidate            *candidate.Candidate
	CombinedScore        float64
	ExperienceScore      float64
	TotalExperienceYears int
	Breakdown            Breakdown
}

// Ranked is the externally visible form of a scored candidate.
type Ranked struct {
	CandidateID          string    `json:"candidateId"`
	CombinedScore        float64   `json:"combinedScore"`
	ExperienceScore      float64   `json:"experienceScore"`
	TotalExperienceYears int       `json:"totalExperienceYears"`
	Breakdown            Breakdown `json:"breakdown"`
}

// ToRanked projects scored candidates into ranked results, preserving order.
func ToRanked(scored []Scored) []Ranked {
	out := make([]Ranked, len(scored))
	for i := range scored {
		s := &scored[i]
		out[i] = Ranked{
			CandidateID:          s.Candidate.ID,
			CombinedScore:        s.CombinedScore,
			ExperienceScore:      s.ExperienceScore,
			TotalExperienceYears: s.TotalExperienceYears,
			Breakdown:            s.Breakdown,
		}
	}
	return out
}

// Outcome is the terminal DONE state of a rank run.
// InputNotFound distinguishes "no exemplar matched" from "exemplars matched, nothing ranked".
type Outcome struct {
	RunID         string
	Results       []Ranked
	InputNotFound bool
	InputSize     int
	PoolSize      int
	DegradedIndex []string // namespaces that returned no signal
}
