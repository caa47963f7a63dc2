package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/weights"
)

// Request limits.
const (
	MaxURLs        = 500
	MaxSkills      = 100
	MaxTitleLength = 256
)

// Kind is the rank request variant.
type Kind string

// Request kinds.
const (
	// ProfileURLs ranks candidates against exemplar candidates given by profile URL.
	ProfileURLs Kind = "profileUrls"
	// CompanyURLs ranks companies against exemplar companies given by profile URL.
	CompanyURLs Kind = "companyUrls"
	// StructuredFilter ranks candidates against explicit skills, title and company criteria.
	StructuredFilter Kind = "structuredFilter"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == ProfileURLs || k == CompanyURLs || k == StructuredFilter
}

// Filter holds the structured criteria of a StructuredFilter request.
type Filter struct {
	Skills           []string
	JobTitle         string
	CompanyIDs       []string
	NearTargetRegion bool
	WeightSet        string
}

// Request is a validated rank request.
type Request struct {
	kind    Kind
	urls    []string
	filter  Filter
	weights weights.Set
}

// NewProfileURLs validates an exemplar request over candidate profiles.
func NewProfileURLs(urls []string) (Request, error) {
	return newURLRequest(ProfileURLs, urls)
}

// NewCompanyURLs validates an exemplar request over company profiles.
func NewCompanyURLs(urls []string) (Request, error) {
	return newURLRequest(CompanyURLs, urls)
}

func newURLRequest(kind Kind, urls []string) (Request, error) {
	cleaned := dedupe(urls)
	if len(cleaned) == 0 {
		return Request{}, fmt.Errorf("%w: at least one url is required", domain.ErrInvalidRequest)
	}
	if len(cleaned) > MaxURLs {
		return Request{}, fmt.Errorf("%w: too many urls (max %d)", domain.ErrInvalidRequest, MaxURLs)
	}
	return Request{kind: kind, urls: cleaned}, nil
}

// NewStructuredFilter validates a structured filter request.
// An empty WeightSet selects the "search" weights.
func NewStructuredFilter(f Filter) (Request, error) {
	skills := dedupe(f.Skills)
	title := strings.TrimSpace(f.JobTitle)
	if len(skills) == 0 && title == "" {
		return Request{}, fmt.Errorf("%w: skills or jobTitle is required", domain.ErrInvalidRequest)
	}
	if len(skills) > MaxSkills {
		return Request{}, fmt.Errorf("%w: too many skills (max %d)", domain.ErrInvalidRequest, MaxSkills)
	}
	if len(title) > MaxTitleLength {
		return Request{}, fmt.Errorf("%w: jobTitle too long (max %d chars)", domain.ErrInvalidRequest, MaxTitleLength)
	}

	name := f.WeightSet
	if name == "" {
		name = weights.Search.Name
	}
	set, ok := weights.ByName(name)
	if !ok {
		return Request{}, fmt.Errorf("%w: unknown weight set %q", domain.ErrInvalidRequest, f.WeightSet)
	}

	return Request{
		kind: StructuredFilter,
		filter: Filter{
			Skills:           skills,
			JobTitle:         title,
			CompanyIDs:       dedupe(f.CompanyIDs),
			NearTargetRegion: f.NearTargetRegion,
			WeightSet:        set.Name,
		},
		weights: set,
	}, nil
}

// Kind returns the request variant.
func (r *Request) Kind() Kind { return r.kind }

// URLs returns the exemplar profile URLs (URL kinds only).
func (r *Request) URLs() []string { return r.urls }

// Filter returns the structured criteria (StructuredFilter only).
func (r *Request) Filter() Filter { return r.filter }

// Weights returns the weight set of a StructuredFilter request.
func (r *Request) Weights() weights.Set { return r.weights }

// EntityKind returns which entity pool the request ranks.
func (r *Request) EntityKind() candidate.Kind {
	if r.kind == CompanyURLs {
		return candidate.KindCompany
	}
	return candidate.KindCandidate
}

// UsesExemplars reports whether the request derives its weighting tables from an input set.
func (r *Request) UsesExemplars() bool {
	return r.kind == ProfileURLs || r.kind == CompanyURLs
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
