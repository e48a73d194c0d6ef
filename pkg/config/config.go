package config

import (
	"context"
	"time"

	"github.com/compozy/hybridqa/pkg/config/definition"
)

// Config represents the complete configuration for hybridqa.
type Config struct {
	LLM     LLMConfig     `koanf:"llm"     validate:"required"`
	Dataset DatasetConfig `koanf:"dataset" validate:"required"`
	Corpus  CorpusConfig  `koanf:"corpus"  validate:"required"`
	Agent   AgentConfig   `koanf:"agent"   validate:"required"`
	Runtime RuntimeConfig `koanf:"runtime" validate:"required"`
	Server  ServerConfig  `koanf:"server"`
	Batch   BatchConfig   `koanf:"batch"`
}

// LLMConfig configures the model provider shared by every stage.
type LLMConfig struct {
	Provider         string          `koanf:"provider"           validate:"required,oneof=ollama openai anthropic google groq mock" env:"LLM_PROVIDER"`
	Model            string          `koanf:"model"              validate:"required"                                                env:"LLM_MODEL"`
	APIURL           string          `koanf:"api_url"                                                                               env:"LLM_API_URL"`
	APIKey           SensitiveString `koanf:"api_key"                                                                               env:"LLM_API_KEY"            sensitive:"true"`
	Temperature      float64         `koanf:"temperature"        validate:"min=0,max=2"                                             env:"LLM_TEMPERATURE"`
	MaxTokens        int             `koanf:"max_tokens"         validate:"min=1"                                                   env:"LLM_MAX_TOKENS"`
	MaxRetries       int             `koanf:"max_retries"        validate:"min=0"                                                   env:"LLM_MAX_RETRIES"`
	RetryBackoff     time.Duration   `koanf:"retry_backoff"                                                                         env:"LLM_RETRY_BACKOFF"`
	MaxRetryDuration time.Duration   `koanf:"max_retry_duration"                                                                    env:"LLM_MAX_RETRY_DURATION"`
	CacheSize        int             `koanf:"cache_size"         validate:"min=0"                                                   env:"LLM_CACHE_SIZE"`
	Breaker          BreakerConfig   `koanf:"breaker"`
}

// BreakerConfig configures the optional circuit breaker around provider calls.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"       env:"LLM_BREAKER_ENABLED"`
	ErrorPercent int           `koanf:"error_percent" env:"LLM_BREAKER_ERROR_PERCENT" validate:"min=1,max=100"`
	MinRequests  int           `koanf:"min_requests"  env:"LLM_BREAKER_MIN_REQUESTS"  validate:"min=1"`
	OpenWait     time.Duration `koanf:"open_wait"     env:"LLM_BREAKER_OPEN_WAIT"`
}

// DatasetConfig points at the SQLite database answering data questions.
type DatasetConfig struct {
	Path        string `koanf:"path"         validate:"required" env:"DATASET_PATH"`
	CreateViews bool   `koanf:"create_views"                     env:"DATASET_CREATE_VIEWS"`
}

// CorpusConfig describes the markdown corpus and its chunking.
type CorpusConfig struct {
	Dir          string `koanf:"dir"           validate:"required"                         env:"CORPUS_DIR"`
	Pattern      string `koanf:"pattern"       validate:"required,glob"                    env:"CORPUS_PATTERN"`
	Strategy     string `koanf:"strategy"      validate:"required,oneof=paragraph recursive" env:"CORPUS_STRATEGY"`
	ChunkSize    int    `koanf:"chunk_size"    validate:"min=1"                            env:"CORPUS_CHUNK_SIZE"`
	ChunkOverlap int    `koanf:"chunk_overlap" validate:"min=0"                            env:"CORPUS_CHUNK_OVERLAP"`
	CacheSize    int    `koanf:"cache_size"    validate:"min=0"                            env:"CORPUS_CACHE_SIZE"`
}

// AgentConfig bounds the orchestration loop.
type AgentConfig struct {
	MaxRetries int `koanf:"max_retries" validate:"min=0,max=2" env:"AGENT_MAX_RETRIES"`
	TopK       int `koanf:"top_k"       validate:"min=1"       env:"AGENT_TOP_K"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error disabled"  env:"RUNTIME_LOG_LEVEL"`
	LogJSON     bool   `koanf:"log_json"                                                     env:"RUNTIME_LOG_JSON"`
	LogSource   bool   `koanf:"log_source"                                                   env:"RUNTIME_LOG_SOURCE"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host      string          `koanf:"host"       validate:"required"        env:"SERVER_HOST"`
	Port      int             `koanf:"port"       validate:"min=1,max=65535" env:"SERVER_PORT"`
	Timeout   time.Duration   `koanf:"timeout"                               env:"SERVER_TIMEOUT"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled" env:"SERVER_METRICS_ENABLED"`
	Path    string `koanf:"path"    env:"SERVER_METRICS_PATH" validate:"startswith=/"`
}

// RateLimitConfig represents a single rate limit configuration.
type RateLimitConfig struct {
	Limit  int64         `koanf:"limit"  env:"SERVER_RATE_LIMIT"        validate:"min=0"`
	Period time.Duration `koanf:"period" env:"SERVER_RATE_LIMIT_PERIOD"`
}

// BatchConfig names the JSONL files of a batch run.
type BatchConfig struct {
	Input  string `koanf:"input"  env:"BATCH_INPUT"`
	Output string `koanf:"output" env:"BATCH_OUTPUT"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type that provided a configuration key.
	GetSource(key string) SourceType
	// GetSources returns the source of every loaded key.
	GetSources() map[string]SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
	Close() error
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config populated from the field registry.
func Default() *Config {
	registry := definition.CreateRegistry()
	return &Config{
		LLM: LLMConfig{
			Provider:         getString(registry, "llm.provider"),
			Model:            getString(registry, "llm.model"),
			APIURL:           getString(registry, "llm.api_url"),
			APIKey:           SensitiveString(getString(registry, "llm.api_key")),
			Temperature:      getFloat64(registry, "llm.temperature"),
			MaxTokens:        getInt(registry, "llm.max_tokens"),
			MaxRetries:       getInt(registry, "llm.max_retries"),
			RetryBackoff:     getDuration(registry, "llm.retry_backoff"),
			MaxRetryDuration: getDuration(registry, "llm.max_retry_duration"),
			CacheSize:        getInt(registry, "llm.cache_size"),
			Breaker: BreakerConfig{
				Enabled:      getBool(registry, "llm.breaker.enabled"),
				ErrorPercent: getInt(registry, "llm.breaker.error_percent"),
				MinRequests:  getInt(registry, "llm.breaker.min_requests"),
				OpenWait:     getDuration(registry, "llm.breaker.open_wait"),
			},
		},
		Dataset: DatasetConfig{
			Path:        getString(registry, "dataset.path"),
			CreateViews: getBool(registry, "dataset.create_views"),
		},
		Corpus: CorpusConfig{
			Dir:          getString(registry, "corpus.dir"),
			Pattern:      getString(registry, "corpus.pattern"),
			Strategy:     getString(registry, "corpus.strategy"),
			ChunkSize:    getInt(registry, "corpus.chunk_size"),
			ChunkOverlap: getInt(registry, "corpus.chunk_overlap"),
			CacheSize:    getInt(registry, "corpus.cache_size"),
		},
		Agent: AgentConfig{
			MaxRetries: getInt(registry, "agent.max_retries"),
			TopK:       getInt(registry, "agent.top_k"),
		},
		Runtime: RuntimeConfig{
			Environment: getString(registry, "runtime.environment"),
			LogLevel:    getString(registry, "runtime.log_level"),
			LogJSON:     getBool(registry, "runtime.log_json"),
			LogSource:   getBool(registry, "runtime.log_source"),
		},
		Server: ServerConfig{
			Host:    getString(registry, "server.host"),
			Port:    getInt(registry, "server.port"),
			Timeout: getDuration(registry, "server.timeout"),
			RateLimit: RateLimitConfig{
				Limit:  getInt64(registry, "server.rate_limit.limit"),
				Period: getDuration(registry, "server.rate_limit.period"),
			},
			Metrics: MetricsConfig{
				Enabled: getBool(registry, "server.metrics.enabled"),
				Path:    getString(registry, "server.metrics.path"),
			},
		},
		Batch: BatchConfig{
			Input:  getString(registry, "batch.input"),
			Output: getString(registry, "batch.output"),
		},
	}
}

func getString(registry *definition.Registry, path string) string {
	if s, ok := registry.GetDefault(path).(string); ok {
		return s
	}
	return ""
}

func getInt(registry *definition.Registry, path string) int {
	if i, ok := registry.GetDefault(path).(int); ok {
		return i
	}
	return 0
}

func getInt64(registry *definition.Registry, path string) int64 {
	if i, ok := registry.GetDefault(path).(int64); ok {
		return i
	}
	return 0
}

func getFloat64(registry *definition.Registry, path string) float64 {
	if f, ok := registry.GetDefault(path).(float64); ok {
		return f
	}
	return 0
}

func getBool(registry *definition.Registry, path string) bool {
	if b, ok := registry.GetDefault(path).(bool); ok {
		return b
	}
	return false
}

func getDuration(registry *definition.Registry, path string) time.Duration {
	if d, ok := registry.GetDefault(path).(time.Duration); ok {
		return d
	}
	return 0
}
