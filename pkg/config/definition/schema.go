package definition

import (
	"reflect"
	"time"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	float64Type  = reflect.TypeOf(float64(0))
	intType      = reflect.TypeOf(0)
	stringType   = reflect.TypeOf("")
	boolType     = reflect.TypeOf(false)
)

// CreateRegistry creates and populates the configuration registry.
// Defaults declared here are the only defaults the loader knows about.
func CreateRegistry() *Registry {
	registry := NewRegistry()
	registerLLMFields(registry)
	registerDatasetFields(registry)
	registerCorpusFields(registry)
	registerAgentFields(registry)
	registerRuntimeFields(registry)
	registerServerFields(registry)
	registerBatchFields(registry)
	return registry
}

func registerLLMFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "llm.provider",
		Default: "ollama",
		CLIFlag: "provider",
		EnvVar:  "LLM_PROVIDER",
		Type:    stringType,
		Help:    "Model provider (ollama, openai, anthropic, google, groq, mock)",
	})
	registry.Register(&FieldDef{
		Path:    "llm.model",
		Default: "phi3.5:3.8b-mini-instruct-q4_K_M",
		CLIFlag: "model",
		EnvVar:  "LLM_MODEL",
		Type:    stringType,
		Help:    "Model name passed to the provider",
	})
	registry.Register(&FieldDef{
		Path:    "llm.api_url",
		Default: "",
		CLIFlag: "api-url",
		EnvVar:  "LLM_API_URL",
		Type:    stringType,
		Help:    "Provider base URL (provider default when empty)",
	})
	registry.Register(&FieldDef{
		Path:    "llm.api_key",
		Default: "",
		EnvVar:  "LLM_API_KEY",
		Type:    stringType,
		Help:    "Provider API key",
	})
	registry.Register(&FieldDef{
		Path:    "llm.temperature",
		Default: 0.0,
		EnvVar:  "LLM_TEMPERATURE",
		Type:    float64Type,
		Help:    "Sampling temperature; answers assume deterministic decoding",
	})
	registry.Register(&FieldDef{
		Path:    "llm.max_tokens",
		Default: 1000,
		EnvVar:  "LLM_MAX_TOKENS",
		Type:    intType,
		Help:    "Maximum completion tokens per call",
	})
	registry.Register(&FieldDef{
		Path:    "llm.max_retries",
		Default: 3,
		EnvVar:  "LLM_MAX_RETRIES",
		Type:    intType,
		Help:    "Transport retries for transient provider errors",
	})
	registry.Register(&FieldDef{
		Path:    "llm.retry_backoff",
		Default: 500 * time.Millisecond,
		EnvVar:  "LLM_RETRY_BACKOFF",
		Type:    durationType,
		Help:    "Base backoff between transport retries",
	})
	registry.Register(&FieldDef{
		Path:    "llm.max_retry_duration",
		Default: 30 * time.Second,
		EnvVar:  "LLM_MAX_RETRY_DURATION",
		Type:    durationType,
		Help:    "Upper bound on total time spent retrying one call",
	})
	registry.Register(&FieldDef{
		Path:    "llm.cache_size",
		Default: 1024,
		EnvVar:  "LLM_CACHE_SIZE",
		Type:    intType,
		Help:    "Number of memoized responses kept for identical prompts (0 disables)",
	})
	registry.Register(&FieldDef{
		Path:    "llm.breaker.enabled",
		Default: false,
		EnvVar:  "LLM_BREAKER_ENABLED",
		Type:    boolType,
		Help:    "Wrap provider calls in a circuit breaker",
	})
	registry.Register(&FieldDef{
		Path:    "llm.breaker.error_percent",
		Default: 50,
		EnvVar:  "LLM_BREAKER_ERROR_PERCENT",
		Type:    intType,
		Help:    "Error percentage that opens the breaker",
	})
	registry.Register(&FieldDef{
		Path:    "llm.breaker.min_requests",
		Default: 10,
		EnvVar:  "LLM_BREAKER_MIN_REQUESTS",
		Type:    intType,
		Help:    "Requests observed before the breaker may open",
	})
	registry.Register(&FieldDef{
		Path:    "llm.breaker.open_wait",
		Default: 5 * time.Second,
		EnvVar:  "LLM_BREAKER_OPEN_WAIT",
		Type:    durationType,
		Help:    "Time the breaker stays open before probing",
	})
}

func registerDatasetFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "dataset.path",
		Default: "data/northwind.sqlite",
		CLIFlag: "dataset",
		EnvVar:  "DATASET_PATH",
		Type:    stringType,
		Help:    "SQLite database file",
	})
	registry.Register(&FieldDef{
		Path:    "dataset.create_views",
		Default: true,
		EnvVar:  "DATASET_CREATE_VIEWS",
		Type:    boolType,
		Help:    "Create lowercase views over the Northwind tables on open",
	})
}

func registerCorpusFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "corpus.dir",
		Default: "docs",
		CLIFlag: "docs",
		EnvVar:  "CORPUS_DIR",
		Type:    stringType,
		Help:    "Directory holding the markdown corpus",
	})
	registry.Register(&FieldDef{
		Path:    "corpus.pattern",
		Default: "*.md",
		EnvVar:  "CORPUS_PATTERN",
		Type:    stringType,
		Help:    "Glob selecting corpus files inside corpus.dir",
	})
	registry.Register(&FieldDef{
		Path:    "corpus.strategy",
		Default: "paragraph",
		EnvVar:  "CORPUS_STRATEGY",
		Type:    stringType,
		Help:    "Chunking strategy (paragraph or recursive)",
	})
	registry.Register(&FieldDef{
		Path:    "corpus.chunk_size",
		Default: 800,
		EnvVar:  "CORPUS_CHUNK_SIZE",
		Type:    intType,
		Help:    "Chunk size for the recursive strategy",
	})
	registry.Register(&FieldDef{
		Path:    "corpus.chunk_overlap",
		Default: 120,
		EnvVar:  "CORPUS_CHUNK_OVERLAP",
		Type:    intType,
		Help:    "Chunk overlap for the recursive strategy",
	})
	registry.Register(&FieldDef{
		Path:    "corpus.cache_size",
		Default: 256,
		EnvVar:  "CORPUS_CACHE_SIZE",
		Type:    intType,
		Help:    "Retrieval result cache entries",
	})
}

func registerAgentFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "agent.max_retries",
		Default: 2,
		CLIFlag: "max-retries",
		EnvVar:  "AGENT_MAX_RETRIES",
		Type:    intType,
		Help:    "Repair attempts after a failed query (at most 2)",
	})
	registry.Register(&FieldDef{
		Path:    "agent.top_k",
		Default: 3,
		CLIFlag: "top-k",
		EnvVar:  "AGENT_TOP_K",
		Type:    intType,
		Help:    "Chunks retrieved per question",
	})
}

func registerRuntimeFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "runtime.environment",
		Default: "development",
		EnvVar:  "RUNTIME_ENVIRONMENT",
		Type:    stringType,
		Help:    "Deployment environment",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_level",
		Default: "info",
		CLIFlag: "log-level",
		EnvVar:  "RUNTIME_LOG_LEVEL",
		Type:    stringType,
		Help:    "Log level (debug, info, warn, error)",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_json",
		Default: false,
		CLIFlag: "log-json",
		EnvVar:  "RUNTIME_LOG_JSON",
		Type:    boolType,
		Help:    "Emit logs as JSON",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_source",
		Default: false,
		CLIFlag: "log-source",
		EnvVar:  "RUNTIME_LOG_SOURCE",
		Type:    boolType,
		Help:    "Include caller information in logs",
	})
}

func registerServerFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "server.host",
		Default: "127.0.0.1",
		CLIFlag: "host",
		EnvVar:  "SERVER_HOST",
		Type:    stringType,
		Help:    "Host interface for the HTTP server",
	})
	registry.Register(&FieldDef{
		Path:    "server.port",
		Default: 8080,
		CLIFlag: "port",
		EnvVar:  "SERVER_PORT",
		Type:    intType,
		Help:    "Port for the HTTP server",
	})
	registry.Register(&FieldDef{
		Path:    "server.timeout",
		Default: 120 * time.Second,
		EnvVar:  "SERVER_TIMEOUT",
		Type:    durationType,
		Help:    "Read/write timeout for HTTP requests",
	})
	registry.Register(&FieldDef{
		Path:    "server.rate_limit.limit",
		Default: int64(60),
		EnvVar:  "SERVER_RATE_LIMIT",
		Type:    reflect.TypeOf(int64(0)),
		Help:    "Requests allowed per period and client (0 disables)",
	})
	registry.Register(&FieldDef{
		Path:    "server.rate_limit.period",
		Default: time.Minute,
		EnvVar:  "SERVER_RATE_LIMIT_PERIOD",
		Type:    durationType,
		Help:    "Rate limit window",
	})
	registry.Register(&FieldDef{
		Path:    "server.metrics.enabled",
		Default: true,
		EnvVar:  "SERVER_METRICS_ENABLED",
		Type:    boolType,
		Help:    "Expose Prometheus metrics",
	})
	registry.Register(&FieldDef{
		Path:    "server.metrics.path",
		Default: "/metrics",
		EnvVar:  "SERVER_METRICS_PATH",
		Type:    stringType,
		Help:    "Path of the metrics endpoint",
	})
}

func registerBatchFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "batch.input",
		Default: "",
		CLIFlag: "batch",
		EnvVar:  "BATCH_INPUT",
		Type:    stringType,
		Help:    "Input JSONL file with questions",
	})
	registry.Register(&FieldDef{
		Path:    "batch.output",
		Default: "",
		CLIFlag: "out",
		EnvVar:  "BATCH_OUTPUT",
		Type:    stringType,
		Help:    "Output JSONL file for answers",
	})
}
