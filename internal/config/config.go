package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the signdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Model     ModelConfig     `yaml:"model"`
	Search    SearchConfig    `yaml:"search"`
	Transform TransformConfig `yaml:"transform"`
	Translate TranslateConfig `yaml:"translate"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
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

// DatabaseConfig holds Redis connection settings for the video index.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	IndexName        string   `yaml:"index_name"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	QuerySuffix string `yaml:"query_suffix"` // appended to every query before vectorization; must match ingestion
	CacheOn     *bool  `yaml:"cache"`        // nil = enabled
}

// ModelConfig holds the optional rewrite/generation model settings.
// An empty BaseURL disables model-assisted transformation entirely.
type ModelConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	RewriteTimeoutSec int    `yaml:"rewrite_timeout_sec"`
	LessonTimeoutSec  int    `yaml:"lesson_timeout_sec"`
}

// Enabled reports whether a generation model is configured.
func (m ModelConfig) Enabled() bool { return m.BaseURL != "" && m.Model != "" }

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	DefaultLimit      int `yaml:"default_limit"`
	MaxLimit          int `yaml:"max_limit"`
	TopKPerCandidate  int `yaml:"top_k_per_candidate"`
	Concurrency       int `yaml:"concurrency"`
	QueryTimeoutSec   int `yaml:"query_timeout_sec"`
	MaxLessonVideos   int `yaml:"max_lesson_videos"`
	MaxSequenceTokens int `yaml:"max_sequence_tokens"`
}

// TransformConfig holds the confidence scoring tunables.
// The values are empirically chosen; treat them as knobs, not constants.
type TransformConfig struct {
	ConfidenceBase    float64 `yaml:"confidence_base"`
	ConfidencePerRule float64 `yaml:"confidence_per_rule"`
	ConfidenceCeiling float64 `yaml:"confidence_ceiling"`
	ModelBonus        float64 `yaml:"model_bonus"`
}

// TranslateConfig holds the phrase-vs-word selection thresholds.
type TranslateConfig struct {
	MinPhraseSimilarity float64 `yaml:"min_phrase_similarity"`
	HighConfidence      float64 `yaml:"high_confidence"`
	PhraseAdvantage     float64 `yaml:"phrase_advantage"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.IndexName == "" {
		c.Database.IndexName = "asl_videos:idx"
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "asl_videos:"
	}
	if c.Embedding.QuerySuffix == "" {
		c.Embedding.QuerySuffix = " ##"
	}
	if c.Model.RewriteTimeoutSec <= 0 {
		c.Model.RewriteTimeoutSec = 10
	}
	if c.Model.LessonTimeoutSec <= 0 {
		c.Model.LessonTimeoutSec = 30
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 50
	}
	if c.Search.TopKPerCandidate <= 0 {
		c.Search.TopKPerCandidate = 5
	}
	if c.Search.Concurrency <= 0 {
		c.Search.Concurrency = 4
	}
	if c.Search.QueryTimeoutSec <= 0 {
		c.Search.QueryTimeoutSec = 5
	}
	if c.Search.MaxLessonVideos <= 0 {
		c.Search.MaxLessonVideos = 8
	}
	if c.Search.MaxSequenceTokens <= 0 {
		c.Search.MaxSequenceTokens = 12
	}
	if c.Transform.ConfidenceBase <= 0 {
		c.Transform.ConfidenceBase = 0.2
	}
	if c.Transform.ConfidencePerRule <= 0 {
		c.Transform.ConfidencePerRule = 0.3
	}
	if c.Transform.ConfidenceCeiling <= 0 {
		c.Transform.ConfidenceCeiling = 0.95
	}
	if c.Transform.ModelBonus <= 0 {
		c.Transform.ModelBonus = 0.1
	}
	if c.Translate.MinPhraseSimilarity <= 0 {
		c.Translate.MinPhraseSimilarity = 0.1
	}
	if c.Translate.HighConfidence <= 0 {
		c.Translate.HighConfidence = 0.7
	}
	if c.Translate.PhraseAdvantage <= 0 {
		c.Translate.PhraseAdvantage = 0.15
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Translate.MinPhraseSimilarity >= c.Translate.HighConfidence {
		return fmt.Errorf(
			"translate.min_phrase_similarity (%v) must be below translate.high_confidence (%v)",
			c.Translate.MinPhraseSimilarity, c.Translate.HighConfidence,
		)
	}
	if c.Transform.ConfidenceCeiling > 1 {
		return fmt.Errorf("transform.confidence_ceiling must be at most 1, got %v", c.Transform.ConfidenceCeiling)
	}
	return nil
}

// EmbeddingCacheEnabled reports whether the shared embedding cache is on.
func (c *Config) EmbeddingCacheEnabled() bool {
	return c.Embedding.CacheOn == nil || *c.Embedding.CacheOn
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
