// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Text generation providers.
const (
	ProviderOllama = "ollama"
	ProviderGrpc   = "grpc"
	ProviderNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	SessionTTL  time.Duration
	Store       StoreConfig
	Search      SearchConfig
	TextGen     TextGenConfig
	History     HistoryConfig
	Telemetry   TelemetryConfig
	Timeout     TimeoutConfig
}

// StoreConfig selects and locates the checkpoint store.
type StoreConfig struct {
	Driver string
	Path   string
}

// SearchConfig configures the geo-search client.
type SearchConfig struct {
	KakaoAPIKey  string
	KakaoBaseURL string
	ProfilePath  string
	Concurrency  int
	Timeout      time.Duration
}

// TextGenConfig configures the text generation backend.
type TextGenConfig struct {
	Provider    string
	OllamaURL   string
	OllamaModel string
	GrpcAddr    string
	// GrpcListen, when set, serves the configured generator over gRPC.
	GrpcListen string
}

// HistoryConfig controls the per-session NDJSON run history.
type HistoryConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	Endpoint    string
	ServiceName string
}

// TimeoutConfig holds server timeouts.
type TimeoutConfig struct {
	HealthCheck time.Duration
	Shutdown    time.Duration
	Request     time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("HISTORY_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		SessionTTL:  getEnvDuration("SESSION_TTL", 24*time.Hour),
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
			Path:   getEnv("DB_PATH", "./data/outing.db"),
		},
		Search: SearchConfig{
			KakaoAPIKey:  getEnv("KAKAO_REST_API_KEY", ""),
			KakaoBaseURL: getEnv("KAKAO_BASE_URL", ""),
			ProfilePath:  getEnv("SEARCH_PROFILE_PATH", ""),
			Concurrency:  getEnvInt("SEARCH_CONCURRENCY", 0),
			Timeout:      getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
		},
		TextGen: TextGenConfig{
			Provider:    strings.ToLower(getEnv("TEXTGEN_PROVIDER", ProviderOllama)),
			OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
			OllamaModel: getEnv("OLLAMA_MODEL", "llama3.2"),
			GrpcAddr:    getEnv("TEXTGEN_GRPC_ADDR", ""),
			GrpcListen:  getEnv("TEXTGEN_GRPC_LISTEN", ""),
		},
		History: HistoryConfig{
			Enabled:   getEnvBool("HISTORY_LOG_ENABLED", true),
			Dir:       getEnv("HISTORY_LOG_DIR", "./data/logs/sessions"),
			QueueSize: queueSize,
		},
		Telemetry: TelemetryConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "outing-planner"),
		},
		Timeout: TimeoutConfig{
			HealthCheck: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
			Shutdown:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			Request:     getEnvDuration("REQUEST_TIMEOUT", 2*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Store.Driver {
	case StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreSQLite, StoreMemory, c.Store.Driver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Search.KakaoAPIKey == "" {
		return fmt.Errorf("KAKAO_REST_API_KEY cannot be empty")
	}
	if c.Search.Concurrency < 0 {
		return fmt.Errorf("SEARCH_CONCURRENCY must be >= 0")
	}
	switch c.TextGen.Provider {
	case ProviderOllama:
		if c.TextGen.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_URL cannot be empty")
		}
	case ProviderGrpc:
		if c.TextGen.GrpcAddr == "" {
			return fmt.Errorf("TEXTGEN_GRPC_ADDR cannot be empty when TEXTGEN_PROVIDER=grpc")
		}
	case ProviderNone:
	default:
		return fmt.Errorf("TEXTGEN_PROVIDER must be one of ollama, grpc, none, got %q", c.TextGen.Provider)
	}
	if c.History.Enabled && c.History.Dir == "" {
		return fmt.Errorf("HISTORY_LOG_DIR cannot be empty")
	}
	if c.History.QueueSize <= 0 {
		return fmt.Errorf("HISTORY_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90m") or whole seconds ("3600").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
