package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/talentrank/internal/domain/ranking/request"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
)

func resetRankFlags() {
	rankURLs, rankCompanyURLs, rankSkills, rankCompanyIDs = nil, nil, nil, nil
	rankJobTitle, rankWeightSet = "", ""
	rankNearRegion = false
}

func TestRankRequestFromFlags(t *testing.T) {
	t.Cleanup(resetRankFlags)

	tests := []struct {
		name  string
		set   func()
		want  request.Kind
		isErr bool
	}{
		{name: "profile urls", set: func() { rankURLs = []string{"https://a.io/x"} }, want: request.ProfileURLs},
		{name: "company urls", set: func() { rankCompanyURLs = []string{"https://a.io/co"} }, want: request.CompanyURLs},
		{name: "skills", set: func() { rankSkills = []string{"go"} }, want: request.StructuredFilter},
		{name: "title only", set: func() { rankJobTitle = "sre" }, want: request.StructuredFilter},
		{name: "nothing", set: func() {}, isErr: true},
		{name: "bad weight set", set: func() { rankSkills, rankWeightSet = []string{"go"}, "x" }, isErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRankFlags()
			tt.set()
			req, err := rankRequestFromFlags()
			if tt.isErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Kind() != tt.want {
				t.Errorf("kind = %s, want %s", req.Kind(), tt.want)
			}
		})
	}
}

func TestWriteRankOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRankOutput(&buf, &result.Outcome{RunID: "r1", InputNotFound: true}); err != nil {
		t.Fatal(err)
	}

	var doc rankOutputDoc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc.RunID != "r1" || !doc.InputNotFound || doc.Results == nil {
		t.Errorf("doc = %+v", doc)
	}
}
