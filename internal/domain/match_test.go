package domain

import "testing"

func TestNewMatchSet(t *testing.T) {
	s := NewMatchSet("skills", []Match{{"a", 0.4}, {"b", 0.9}, {"a", 0.7}})
	if s.Score("a") != 0.7 {
		t.Errorf("Score(a) = %v, want highest duplicate 0.7", s.Score("a"))
	}
	if s.Score("missing") != 0 {
		t.Errorf("Score(missing) = %v", s.Score("missing"))
	}
	if s.Empty() {
		t.Error("expected non-empty set")
	}
	if !NewMatchSet("x", nil).Empty() {
		t.Error("expected empty set")
	}
}
