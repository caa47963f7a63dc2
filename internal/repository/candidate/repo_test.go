package candidate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/talentrank/internal/domain"
	domcand "github.com/kailas-cloud/talentrank/internal/domain/candidate"
)

type failingDB struct {
	err     error
	queries []string
}

func (f *failingDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	return nil, f.err
}

func (f *failingDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	return pgconn.CommandTag{}, f.err
}

func (f *failingDB) Ping(_ context.Context) error { return f.err }

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/in/Jane/": "https://example.com/in/jane",
		"  https://x.io//  ":           "https://x.io",
		"":                             "",
	}
	for in, want := range tests {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeProfile(t *testing.T) {
	p, err := DecodeProfile([]byte(`{
		"positions": [{"companyName": "Acme", "title": "SRE", "startYear": 2015, "endYear": 2019},
		              {"companyName": "Initech", "title": "Lead"}],
		"education": [{"schoolName": "MIT"}]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Positions) != 2 || *p.Positions[0].StartYear != 2015 || p.Positions[1].EndYear != nil {
		t.Errorf("positions = %+v", p.Positions)
	}
	if len(p.Education) != 1 || p.Education[0].SchoolName != "MIT" {
		t.Errorf("education = %+v", p.Education)
	}
}

func TestDecodeProfile_EmptyAndNull(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("null")} {
		p, err := DecodeProfile(raw)
		if err != nil || len(p.Positions) != 0 {
			t.Errorf("DecodeProfile(%q) = %+v, %v", raw, p, err)
		}
	}
	if _, err := DecodeProfile([]byte("{broken")); err == nil {
		t.Error("expected error for invalid json")
	}
}

func TestPageOf(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	items := []domcand.Candidate{{ID: "a", CreatedAt: ts}, {ID: "b", CreatedAt: ts}}

	full := pageOf(items, domcand.Cursor{}, 2)
	if full.Done {
		t.Error("a full page must not be the last")
	}
	if full.Next.ID != "b" || !full.Next.CreatedAt.Equal(ts) {
		t.Errorf("next = %+v", full.Next)
	}

	short := pageOf(items, domcand.Cursor{}, 3)
	if !short.Done {
		t.Error("a short page is the last")
	}

	prev := domcand.Cursor{ID: "z", CreatedAt: ts}
	empty := pageOf(nil, prev, 3)
	if !empty.Done || empty.Next != prev {
		t.Errorf("empty page = %+v", empty)
	}
}

func TestFindPage_KeysetQuery(t *testing.T) {
	f := &failingDB{err: errors.New("boom")}
	r := &Repo{db: f}

	_, _ = r.FindPage(context.Background(), domcand.KindCandidate, domcand.Cursor{}, 500)
	_, _ = r.FindPage(context.Background(), domcand.KindCandidate, domcand.Cursor{ID: "x", CreatedAt: time.Now()}, 500)

	if len(f.queries) != 2 {
		t.Fatalf("queries = %d", len(f.queries))
	}
	if containsAll(f.queries[0], "(created_at, id) >") {
		t.Error("first page must not filter by cursor")
	}
	if !containsAll(f.queries[1], "(created_at, id) >", "ORDER BY created_at, id") {
		t.Errorf("keyset query = %s", f.queries[1])
	}
}

func TestRepo_ErrorsAreStorageErrors(t *testing.T) {
	r := &Repo{db: &failingDB{err: errors.New("conn refused")}}
	ctx := context.Background()

	checks := map[string]error{
		"ping": r.Ping(ctx),
	}
	_, checks["urls"] = r.FindByURLs(ctx, domcand.KindCandidate, []string{"https://a"})
	_, checks["ids"] = r.FindByIDs(ctx, domcand.KindCompany, []string{"c1"})
	_, checks["page"] = r.FindPage(ctx, domcand.KindCandidate, domcand.Cursor{}, 10)
	checks["schema"] = r.EnsureSchema(ctx)

	for name, err := range checks {
		if !errors.Is(err, domain.ErrStorage) {
			t.Errorf("%s: expected ErrStorage, got %v", name, err)
		}
	}
}

func TestFindPage_InvalidLimit(t *testing.T) {
	r := &Repo{db: &failingDB{}}
	_, err := r.FindPage(context.Background(), domcand.KindCandidate, domcand.Cursor{}, 0)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestFind_EmptyInputSkipsQuery(t *testing.T) {
	f := &failingDB{err: errors.New("should not be called")}
	r := &Repo{db: f}

	got, err := r.FindByURLs(context.Background(), domcand.KindCandidate, nil)
	if err != nil || got != nil {
		t.Errorf("FindByURLs(nil) = %v, %v", got, err)
	}
	if len(f.queries) != 0 {
		t.Errorf("unexpected queries: %v", f.queries)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
