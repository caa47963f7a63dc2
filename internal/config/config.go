package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the talentrank configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorIndex VectorIndexConfig `yaml:"vector_index"`
	Ranking     RankingConfig     `yaml:"ranking"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// PostgresConfig holds candidate storage settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

// VectorStoreConfig holds the redis connection backing the vector indexes and the embedding cache.
type VectorStoreConfig struct {
	Driver           string   `yaml:"driver"` // redis
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSec  int    `yaml:"timeout_sec"`
	Concurrency int    `yaml:"concurrency"`
	// CacheEnabled stores vectors in the vector store keyed by model and text.
	CacheEnabled bool `yaml:"cache_enabled"`
	CacheTTLSec  int  `yaml:"cache_ttl_sec"` // 0 = no expiry
}

// RetryConfig holds vector index retry settings.
type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelayMS int     `yaml:"base_delay_ms"`
	Multiplier  float64 `yaml:"multiplier"`
	MaxDelayMS  int     `yaml:"max_delay_ms"`
}

// BreakerConfig holds vector index circuit breaker settings.
type BreakerConfig struct {
	Enabled     bool    `yaml:"enabled"`
	MaxRequests uint32  `yaml:"max_requests"`
	IntervalSec int     `yaml:"interval_sec"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	TripRatio   float64 `yaml:"trip_ratio"`
}

// VectorIndexConfig holds HNSW and query settings of the namespace indexes.
type VectorIndexConfig struct {
	HNSWM           int           `yaml:"hnsw_m"`
	HNSWEFConstruct int           `yaml:"hnsw_ef_construction"`
	TopK            int           `yaml:"top_k"`
	Retry           RetryConfig   `yaml:"retry"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

// RankingConfig holds pipeline and scoring settings.
type RankingConfig struct {
	PageSize          int     `yaml:"page_size"`
	MaxResults        int     `yaml:"max_results"`
	Workers           int     `yaml:"workers"`
	ExperienceWeight  float64 `yaml:"experience_weight"`
	RegionBoost       float64 `yaml:"region_boost"`
	RegionMajority    float64 `yaml:"region_majority"`
	SchoolThreshold   float64 `yaml:"school_threshold"`
	EmptySignalPolicy string  `yaml:"empty_signal_policy"` // skip | fail
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substitutes env variables, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Postgres.MaxConns <= 0 {
		c.Postgres.MaxConns = 10
	}
	if c.VectorStore.Driver == "" {
		c.VectorStore.Driver = "redis"
	}
	if c.VectorStore.ReadinessTimeout <= 0 {
		c.VectorStore.ReadinessTimeout = 10
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.VectorIndex.HNSWM <= 0 {
		c.VectorIndex.HNSWM = 16
	}
	if c.VectorIndex.HNSWEFConstruct <= 0 {
		c.VectorIndex.HNSWEFConstruct = 200
	}
	if c.VectorIndex.TopK <= 0 {
		c.VectorIndex.TopK = 1000
	}
	c.applyRetryDefaults()
	c.applyBreakerDefaults()
	c.applyRankingDefaults()
}

func (c *Config) applyRetryDefaults() {
	r := &c.VectorIndex.Retry
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = 3
	}
	if r.BaseDelayMS <= 0 {
		r.BaseDelayMS = 5000
	}
	if r.Multiplier <= 0 {
		r.Multiplier = 1
	}
	if r.MaxDelayMS <= 0 {
		r.MaxDelayMS = 60000
	}
}

func (c *Config) applyBreakerDefaults() {
	b := &c.VectorIndex.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 1
	}
	if b.IntervalSec <= 0 {
		b.IntervalSec = 60
	}
	if b.TimeoutSec <= 0 {
		b.TimeoutSec = 30
	}
	if b.TripRatio <= 0 {
		b.TripRatio = 0.6
	}
}

func (c *Config) applyRankingDefaults() {
	r := &c.Ranking
	if r.PageSize <= 0 {
		r.PageSize = 500
	}
	if r.MaxResults <= 0 {
		r.MaxResults = 100
	}
	if r.Workers <= 0 {
		r.Workers = runtime.GOMAXPROCS(0)
	}
	if r.ExperienceWeight == 0 {
		r.ExperienceWeight = 0.2
	}
	if r.RegionBoost == 0 {
		r.RegionBoost = 1.2
	}
	if r.RegionMajority == 0 {
		r.RegionMajority = 0.5
	}
	if r.SchoolThreshold == 0 {
		r.SchoolThreshold = 0.75
	}
	if r.EmptySignalPolicy == "" {
		r.EmptySignalPolicy = "skip"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.VectorStore.Driver != "redis" {
		return fmt.Errorf("vector_store.driver must be \"redis\", got %q", c.VectorStore.Driver)
	}
	if len(c.VectorStore.Addrs) == 0 {
		return errors.New("vector_store.addrs is required")
	}
	if c.Embedding.APIKey == "" {
		return errors.New("embedding.api_key is required")
	}
	if c.Embedding.CacheTTLSec < 0 {
		return fmt.Errorf("embedding.cache_ttl_sec must not be negative, got %d", c.Embedding.CacheTTLSec)
	}
	if b := c.VectorIndex.Breaker; b.TripRatio > 1 {
		return fmt.Errorf("vector_index.breaker.trip_ratio must be in (0, 1], got %v", b.TripRatio)
	}
	return c.Ranking.validate()
}

func (r *RankingConfig) validate() error {
	switch {
	case r.ExperienceWeight < 0:
		return fmt.Errorf("ranking.experience_weight must not be negative, got %v", r.ExperienceWeight)
	case r.RegionBoost < 1:
		return fmt.Errorf("ranking.region_boost must be >= 1, got %v", r.RegionBoost)
	case r.RegionMajority < 0 || r.RegionMajority > 1:
		return fmt.Errorf("ranking.region_majority must be in [0, 1], got %v", r.RegionMajority)
	case r.SchoolThreshold < 0 || r.SchoolThreshold > 1:
		return fmt.Errorf("ranking.school_threshold must be in [0, 1], got %v", r.SchoolThreshold)
	}
	switch r.EmptySignalPolicy {
	case "skip", "fail":
	default:
		return fmt.Errorf("ranking.empty_signal_policy must be \"skip\" or \"fail\", got %q", r.EmptySignalPolicy)
	}
	return nil
}

// Timeout returns the vector store readiness wait.
func (c *VectorStoreConfig) Timeout() time.Duration {
	return time.Duration(c.ReadinessTimeout) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
