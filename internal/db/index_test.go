package db

import "testing"

func TestNewVectorIndex_Validates(t *testing.T) {
	idx := NewVectorIndex("talentrank:company:features:idx", "talentrank:company:features:", 3072, 16, 200)
	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Fields[1].VectorDim != 3072 {
		t.Errorf("dim = %d", idx.Fields[1].VectorDim)
	}
}

func TestIndexDefinition_Validate(t *testing.T) {
	tests := []struct {
		name string
		def  IndexDefinition
	}{
		{"empty name", IndexDefinition{Fields: []IndexField{{Name: "f"}}}},
		{"bad name", IndexDefinition{Name: "a b", Fields: []IndexField{{Name: "f"}}}},
		{"no fields", IndexDefinition{Name: "idx"}},
		{"duplicate", IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "f"}, {Name: "f"}}}},
		{"zero dim", IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "v", Type: IndexFieldVector}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.def.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
