package candidate

import (
	"strings"
	"time"
)

// Kind distinguishes the two structurally parallel entity types that can be ranked.
type Kind string

// Entity kinds.
const (
	KindCandidate Kind = "candidate"
	KindCompany   Kind = "company"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindCandidate || k == KindCompany
}

// Region is a tri-state "lives near the target region" flag.
type Region int8

// Region states. RegionUnknown is the zero value.
const (
	RegionUnknown Region = iota
	RegionNear
	RegionFar
)

// RegionFromBool converts a nullable storage value into a Region.
func RegionFromBool(v *bool) Region {
	switch {
	case v == nil:
		return RegionUnknown
	case *v:
		return RegionNear
	default:
		return RegionFar
	}
}

// Position is one entry of a career history.
// A nil EndYear means the position is current.
type Position struct {
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	StartYear   *int   `json:"startYear,omitempty"`
	EndYear     *int   `json:"endYear,omitempty"`
}

// Education is one school attended.
type Education struct {
	SchoolName string `json:"schoolName"`
}

// Profile is the semi-structured raw profile record.
type Profile struct {
	Positions []Position  `json:"positions"`
	Education []Education `json:"education"`
}

// Candidate is a person or an organization eligible for ranking.
// Instances are read-only snapshots for the duration of one rank run.
type Candidate struct {
	ID                    string
	Kind                  Kind
	Name                  string
	ProfileURL            string
	Profile               Profile
	TopTechnologies       []string
	TopFeatures           []string
	JobTitles             []string
	LivesNearTargetRegion Region
	WorkedInBigTech       bool
	CreatedAt             time.Time
}

// LivesNear reports whether the candidate is known to live near the target region.
func (c *Candidate) LivesNear() bool {
	return c.LivesNearTargetRegion == RegionNear
}

// TotalExperienceYears returns the span between the earliest start year and the latest
// end year across all positions. currentYear stands in for missing end years.
// Candidates without any dated position have zero years.
func (c *Candidate) TotalExperienceYears(currentYear int) int {
	minStart, maxEnd := 0, 0
	seen := false
	for _, p := range c.Profile.Positions {
		if p.StartYear == nil {
			continue
		}
		end := currentYear
		if p.EndYear != nil {
			end = *p.EndYear
		}
		if !seen || *p.StartYear < minStart {
			minStart = *p.StartYear
		}
		if !seen || end > maxEnd {
			maxEnd = end
		}
		seen = true
	}
	if !seen || maxEnd < minStart {
		return 0
	}
	return maxEnd - minStart
}

// Companies returns every company name in career order, duplicates included.
func (c *Candidate) Companies() []string {
	out := make([]string, 0, len(c.Profile.Positions))
	for _, p := range c.Profile.Positions {
		if p.CompanyName != "" {
			out = append(out, p.CompanyName)
		}
	}
	return out
}

// UniqueCompanies returns company names with repeats removed, first occurrence order.
func (c *Candidate) UniqueCompanies() []string {
	seen := make(map[string]struct{}, len(c.Profile.Positions))
	out := make([]string, 0, len(c.Profile.Positions))
	for _, name := range c.Companies() {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Schools returns every school name, duplicates included.
func (c *Candidate) Schools() []string {
	out := make([]string, 0, len(c.Profile.Education))
	for _, e := range c.Profile.Education {
		if e.SchoolName != "" {
			out = append(out, e.SchoolName)
		}
	}
	return out
}

// HeldTitle reports whether any position title or job-title tag contains title (case-insensitive).
func (c *Candidate) HeldTitle(title string) bool {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return false
	}
	for _, p := range c.Profile.Positions {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			return true
		}
	}
	for _, t := range c.JobTitles {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// IDSet builds a lookup set of candidate IDs.
func IDSet(cs []Candidate) map[string]struct{} {
	set := make(map[string]struct{}, len(cs))
	for i := range cs {
		set[cs[i].ID] = struct{}{}
	}
	return set
}
