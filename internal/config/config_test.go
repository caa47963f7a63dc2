package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:        HTTPConfig{Port: 8080},
		Postgres:    PostgresConfig{DSN: "postgres://localhost/talentrank"},
		VectorStore: VectorStoreConfig{Addrs: []string{"localhost:6379"}},
		Embedding:   EmbeddingConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults_DocumentedConstants(t *testing.T) {
	cfg := validConfig()

	if cfg.Ranking.PageSize != 500 {
		t.Errorf("page_size = %d, want 500", cfg.Ranking.PageSize)
	}
	if cfg.Ranking.MaxResults != 100 {
		t.Errorf("max_results = %d, want 100", cfg.Ranking.MaxResults)
	}
	if cfg.Ranking.ExperienceWeight != 0.2 || cfg.Ranking.RegionBoost != 1.2 {
		t.Errorf("ranking = %+v", cfg.Ranking)
	}
	if cfg.Ranking.RegionMajority != 0.5 || cfg.Ranking.SchoolThreshold != 0.75 {
		t.Errorf("ranking = %+v", cfg.Ranking)
	}
	if cfg.Ranking.EmptySignalPolicy != "skip" {
		t.Errorf("empty_signal_policy = %q", cfg.Ranking.EmptySignalPolicy)
	}
	r := cfg.VectorIndex.Retry
	if r.MaxAttempts != 3 || r.BaseDelayMS != 5000 || r.Multiplier != 1 {
		t.Errorf("retry = %+v, want 3 attempts at a fixed 5s", r)
	}
	if cfg.VectorIndex.TopK != 1000 {
		t.Errorf("top_k = %d", cfg.VectorIndex.TopK)
	}
	if cfg.VectorStore.Driver != "redis" {
		t.Errorf("driver = %q", cfg.VectorStore.Driver)
	}
	if cfg.Embedding.CacheEnabled {
		t.Error("embedding cache must be opt-in")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.HTTP.Port = 0 }, wantErr: "http.port"},
		{name: "no dsn", mutate: func(c *Config) { c.Postgres.DSN = "" }, wantErr: "postgres.dsn"},
		{name: "no addrs", mutate: func(c *Config) { c.VectorStore.Addrs = nil }, wantErr: "vector_store.addrs"},
		{name: "unknown driver", mutate: func(c *Config) { c.VectorStore.Driver = "valkey" }, wantErr: "vector_store.driver"},
		{name: "no api key", mutate: func(c *Config) { c.Embedding.APIKey = "" }, wantErr: "embedding.api_key"},
		{name: "negative ttl", mutate: func(c *Config) { c.Embedding.CacheTTLSec = -1 }, wantErr: "cache_ttl_sec"},
		{name: "trip ratio", mutate: func(c *Config) { c.VectorIndex.Breaker.TripRatio = 1.5 }, wantErr: "trip_ratio"},
		{name: "region boost", mutate: func(c *Config) { c.Ranking.RegionBoost = 0.5 }, wantErr: "region_boost"},
		{name: "majority", mutate: func(c *Config) { c.Ranking.RegionMajority = 2 }, wantErr: "region_majority"},
		{name: "threshold", mutate: func(c *Config) { c.Ranking.SchoolThreshold = -0.1 }, wantErr: "school_threshold"},
		{name: "policy", mutate: func(c *Config) { c.Ranking.EmptySignalPolicy = "ignore" }, wantErr: "empty_signal_policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TALENTRANK_TEST_KEY", "sk-from-env")

	cfg, err := Parse([]byte(`
http:
  port: 9090
postgres:
  dsn: ${TALENTRANK_TEST_DSN:-postgres://db/talentrank}
vector_store:
  addrs: ["redis:6379"]
embedding:
  api_key: ${TALENTRANK_TEST_KEY}
ranking:
  empty_signal_policy: fail
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q", cfg.Embedding.APIKey)
	}
	if cfg.Postgres.DSN != "postgres://db/talentrank" {
		t.Errorf("dsn default not applied: %q", cfg.Postgres.DSN)
	}
	if cfg.Ranking.EmptySignalPolicy != "fail" || cfg.Ranking.PageSize != 500 {
		t.Errorf("ranking = %+v", cfg.Ranking)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := "http: {port: 8081}\npostgres: {dsn: x}\nvector_store: {addrs: [a]}\nembedding: {api_key: k}\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
