// Package candidate reads candidates and companies from PostgreSQL.
package candidate

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/talentrank/internal/domain"
	domcand "github.com/kailas-cloud/talentrank/internal/domain/candidate"
)

//go:embed schema.sql
var schemaSQL string

const selectColumns = `id, kind, name, profile_url, profile, top_technologies, top_features,
	job_titles, lives_near_target_region, worked_in_big_tech, created_at`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Repo is the pgx-backed candidate store.
type Repo struct {
	db   querier
	pool *pgxpool.Pool
}

// Connect opens a pool and verifies it. maxConns <= 0 keeps the pgx default.
func Connect(ctx context.Context, dsn string, maxConns int32) (*Repo, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repo{db: pool, pool: pool}, nil
}

// Close releases the pool.
func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return domain.NewStorageError("ping", err)
	}
	return nil
}

// EnsureSchema creates the entities table and its indexes when missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return domain.NewStorageError("ensure schema", err)
	}
	return nil
}

// FindByURLs returns the entities of kind whose profile URL matches one of urls.
// Matching ignores case and trailing slashes. Unknown URLs are silently absent.
func (r *Repo) FindByURLs(ctx context.Context, kind domcand.Kind, urls []string) ([]domcand.Candidate, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if k := NormalizeURL(u); k != "" {
			keys = append(keys, k)
		}
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+selectColumns+` FROM entities
		 WHERE kind = $1 AND lower(rtrim(profile_url, '/')) = ANY($2)
		 ORDER BY created_at, id`,
		string(kind), keys,
	)
	if err != nil {
		return nil, domain.NewStorageError("find by urls", err)
	}
	return collect(rows, "find by urls")
}

// FindByIDs returns the entities of kind with the given IDs.
func (r *Repo) FindByIDs(ctx context.Context, kind domcand.Kind, ids []string) ([]domcand.Candidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+selectColumns+` FROM entities WHERE kind = $1 AND id = ANY($2) ORDER BY created_at, id`,
		string(kind), ids,
	)
	if err != nil {
		return nil, domain.NewStorageError("find by ids", err)
	}
	return collect(rows, "find by ids")
}

// FindPage returns up to limit entities of kind strictly after the cursor.
func (r *Repo) FindPage(ctx context.Context, kind domcand.Kind, after domcand.Cursor, limit int) (domcand.Page, error) {
	if limit <= 0 {
		return domcand.Page{}, fmt.Errorf("page limit %d: %w", limit, domain.ErrInvalidRequest)
	}

	var (
		rows pgx.Rows
		err  error
	)
	if after.IsZero() {
		rows, err = r.db.Query(ctx,
			`SELECT `+selectColumns+` FROM entities WHERE kind = $1 ORDER BY created_at, id LIMIT $2`,
			string(kind), limit,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+selectColumns+` FROM entities
			 WHERE kind = $1 AND (created_at, id) > ($2, $3)
			 ORDER BY created_at, id LIMIT $4`,
			string(kind), after.CreatedAt, after.ID, limit,
		)
	}
	if err != nil {
		return domcand.Page{}, domain.NewStorageError("find page", err)
	}

	items, err := collect(rows, "find page")
	if err != nil {
		return domcand.Page{}, err
	}
	return pageOf(items, after, limit), nil
}

// pageOf builds the page envelope. A short page is the last one.
func pageOf(items []domcand.Candidate, after domcand.Cursor, limit int) domcand.Page {
	p := domcand.Page{Items: items, Next: after, Done: len(items) < limit}
	if n := len(items); n > 0 {
		last := items[n-1]
		p.Next = domcand.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return p
}

func collect(rows pgx.Rows, op string) ([]domcand.Candidate, error) {
	out, err := pgx.CollectRows(rows, scanCandidate)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	return out, nil
}

func scanCandidate(row pgx.CollectableRow) (domcand.Candidate, error) {
	var (
		c       domcand.Candidate
		kind    string
		profile []byte
		near    *bool
	)
	err := row.Scan(
		&c.ID, &kind, &c.Name, &c.ProfileURL, &profile,
		&c.TopTechnologies, &c.TopFeatures, &c.JobTitles,
		&near, &c.WorkedInBigTech, &c.CreatedAt,
	)
	if err != nil {
		return c, fmt.Errorf("scan entity: %w", err)
	}

	c.Kind = domcand.Kind(kind)
	c.LivesNearTargetRegion = domcand.RegionFromBool(near)
	c.Profile, err = DecodeProfile(profile)
	if err != nil {
		return c, fmt.Errorf("entity %s: %w", c.ID, err)
	}
	return c, nil
}

// DecodeProfile parses the JSONB profile column. NULL and empty documents decode to an empty profile.
func DecodeProfile(raw []byte) (domcand.Profile, error) {
	var p domcand.Profile
	if len(raw) == 0 || string(raw) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

// NormalizeURL lowercases, trims whitespace and strips trailing slashes.
func NormalizeURL(u string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(u)), "/")
}
