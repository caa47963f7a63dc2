package domain

// Match is one nearest-neighbor hit from the vector index.
type Match struct {
	ID    string
	Score float64
}

// MatchSet indexes the hits of one namespace query by entity ID.
type MatchSet struct {
	Namespace string
	Scores    map[string]float64
}

// NewMatchSet builds a lookup from hits. Duplicate IDs keep the highest score.
func NewMatchSet(namespace string, matches []Match) MatchSet {
	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		if cur, ok := scores[m.ID]; !ok || m.Score > cur {
			scores[m.ID] = m.Score
		}
	}
	return MatchSet{Namespace: namespace, Scores: scores}
}

// Score returns the hit score for id, or 0 when id was not matched.
func (s MatchSet) Score(id string) float64 {
	return s.Scores[id]
}

// Empty reports whether the set carries no signal.
func (s MatchSet) Empty() bool {
	return len(s.Scores) == 0
}
