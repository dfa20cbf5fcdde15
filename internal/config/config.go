// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"SARKARI_HOST" yaml:"host"`
	Port int    `envconfig:"SARKARI_PORT" yaml:"port"`

	// Feature flags
	EnableWeb bool `envconfig:"SARKARI_ENABLE_WEB" yaml:"enable_web"`

	// Qdrant configuration
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Embedding configuration
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Scraper configuration
	Scraper ScraperConfig `yaml:"scraper"`

	// Processor configuration
	Processor ProcessorConfig `yaml:"processor"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Index configuration
	Index IndexConfig `yaml:"index"`

	// Search configuration
	Search SearchConfig `yaml:"search"`

	// Evaluation configuration
	Evaluation EvaluationConfig `yaml:"evaluation"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	URL              string `envconfig:"QDRANT_URL" yaml:"url"`
	APIKey           string `envconfig:"QDRANT_API_KEY" yaml:"api_key"`
	CollectionPrefix string `envconfig:"QDRANT_COLLECTION_PREFIX" yaml:"collection_prefix"`
	Collection       string `envconfig:"SARKARI_COLLECTION" yaml:"collection"`
}

// EmbeddingConfig holds embedding service settings.
type EmbeddingConfig struct {
	// Provider selects the embedder: "openai" or "local".
	Provider  string `envconfig:"SARKARI_EMBED_PROVIDER" yaml:"provider"`
	BaseURL   string `envconfig:"SARKARI_EMBED_URL" yaml:"base_url"`
	APIKey    string `envconfig:"SARKARI_EMBED_API_KEY" yaml:"api_key"`
	Model     string `envconfig:"SARKARI_EMBED_MODEL" yaml:"model"`
	Dimension int    `envconfig:"SARKARI_EMBED_DIM" yaml:"dimension"`
	BatchSize int    `envconfig:"SARKARI_EMBED_BATCH_SIZE" yaml:"batch_size"`
}

// ScraperConfig holds scraper settings.
type ScraperConfig struct {
	DownloadDir       string  `envconfig:"SARKARI_DOWNLOAD_DIR" yaml:"download_dir"`
	MaxRetries        int     `envconfig:"SARKARI_SCRAPE_MAX_RETRIES" yaml:"max_retries"`
	RequestsPerSecond float64 `envconfig:"SARKARI_SCRAPE_RPS" yaml:"requests_per_second"`
	TimeoutSeconds    int     `envconfig:"SARKARI_SCRAPE_TIMEOUT" yaml:"timeout_seconds"`
	CitizenOnly       bool    `envconfig:"SARKARI_SCRAPE_CITIZEN_ONLY" yaml:"citizen_only"`
}

// ProcessorConfig holds document processing settings.
type ProcessorConfig struct {
	// ChunkSize is the target chunk size in words.
	ChunkSize int `envconfig:"SARKARI_CHUNK_SIZE" yaml:"chunk_size"`

	// ChunkOverlap is the number of words to overlap between chunks.
	ChunkOverlap int `envconfig:"SARKARI_CHUNK_OVERLAP" yaml:"chunk_overlap"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"SARKARI_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"SARKARI_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaGroup   string `envconfig:"SARKARI_KAFKA_GROUP" yaml:"kafka_group"`

	// EventLog is a JSONL file that records every published event.
	// Empty disables event logging.
	EventLog string `envconfig:"SARKARI_BUS_EVENT_LOG" yaml:"event_log"`
}

// IndexConfig holds indexing settings.
type IndexConfig struct {
	BatchSize int `envconfig:"SARKARI_INDEX_BATCH_SIZE" yaml:"batch_size"`
	Workers   int `envconfig:"SARKARI_INDEX_WORKERS" yaml:"workers"`

	// TrackerDir persists per-collection indexing state between runs.
	TrackerDir string `envconfig:"SARKARI_INDEX_TRACKER_DIR" yaml:"tracker_dir"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	DefaultSize       int  `envconfig:"SARKARI_DEFAULT_SIZE" yaml:"default_size"`
	KeywordCandidates int  `envconfig:"SARKARI_KEYWORD_CANDIDATES" yaml:"keyword_candidates"`
	DedupeByDocument  bool `envconfig:"SARKARI_DEDUPE" yaml:"dedupe_by_document"`
}

// EvaluationConfig holds evaluation settings.
type EvaluationConfig struct {
	QueryFile string `envconfig:"SARKARI_EVAL_QUERY_FILE" yaml:"query_file"`
	OutputDir string `envconfig:"SARKARI_EVAL_OUTPUT_DIR" yaml:"output_dir"`
	KValues   []int  `envconfig:"SARKARI_EVAL_K_VALUES" yaml:"k_values"`
}

// MetricsConfig holds analytics settings.
type MetricsConfig struct {
	Persistence string `envconfig:"SARKARI_METRICS_PERSISTENCE" yaml:"persistence"`
	RedisURL    string `envconfig:"SARKARI_REDIS_URL" yaml:"redis_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"SARKARI_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"SARKARI_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	RateLimit   int    `envconfig:"SARKARI_RATE_LIMIT" yaml:"rate_limit"` // 0 = disabled
	CORSOrigins string `envconfig:"SARKARI_CORS_ORIGINS" yaml:"cors_origins"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080
	cfg.EnableWeb = true

	cfg.Qdrant = QdrantConfig{
		URL:              "http://localhost:6333",
		CollectionPrefix: "sarkari_",
		Collection:       "government_documents",
	}

	cfg.Embedding = EmbeddingConfig{
		Provider:  "openai",
		Model:     "all-MiniLM-L6-v2",
		Dimension: 384,
		BatchSize: 32,
	}

	cfg.Scraper = ScraperConfig{
		DownloadDir:       "downloads",
		MaxRetries:        3,
		RequestsPerSecond: 1,
		TimeoutSeconds:    30,
		CitizenOnly:       true,
	}

	cfg.Processor = ProcessorConfig{
		ChunkSize:    500,
		ChunkOverlap: 100,
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.Index = IndexConfig{
		BatchSize:  100,
		Workers:    4,
		TrackerDir: "data/index",
	}

	cfg.Search = SearchConfig{
		DefaultSize:       10,
		KeywordCandidates: 200,
		DedupeByDocument:  true,
	}

	cfg.Evaluation = EvaluationConfig{
		QueryFile: "evaluation/test_queries.json",
		OutputDir: "evaluation_results",
		KValues:   []int{5, 10, 20},
	}

	cfg.Metrics = MetricsConfig{
		Persistence: "memory",
		RedisURL:    "redis://localhost:6379",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit:   0,
		CORSOrigins: "*",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	validProviders := map[string]bool{"openai": true, "local": true}
	if !validProviders[c.Embedding.Provider] {
		errs = append(errs, fmt.Sprintf("invalid embedding provider: %s (must be openai or local)", c.Embedding.Provider))
	}

	if c.Embedding.Dimension < 1 {
		errs = append(errs, "embedding dimension must be positive")
	}

	if c.Embedding.BatchSize < 1 {
		errs = append(errs, "embedding batch_size must be positive")
	}

	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if c.Processor.ChunkSize < 50 {
		errs = append(errs, "chunk_size must be at least 50 words")
	}

	if c.Processor.ChunkOverlap >= c.Processor.ChunkSize {
		errs = append(errs, "chunk_overlap must be less than chunk_size")
	}

	if c.Scraper.MaxRetries < 1 {
		errs = append(errs, "scraper max_retries must be positive")
	}

	if c.Search.DefaultSize < 1 {
		errs = append(errs, "default_size must be positive")
	}

	for _, k := range c.Evaluation.KValues {
		if k < 1 {
			errs = append(errs, fmt.Sprintf("evaluation k value must be positive, got %d", k))
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
