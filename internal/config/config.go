package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/futig/rag-chatbot/internal/entity"
	pkgRetry "github.com/futig/rag-chatbot/internal/pkg/retry"
)

const (
	PineconeAPIKeyEnv = "PINECONE_API_KEY"
	OpenAIAPIKeyEnv   = "OPENAI_API_KEY"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// ChatTimeout bounds a single chain invocation including retries.
	ChatTimeout time.Duration `env:"CHAT_TIMEOUT" envDefault:"90s"`

	// External service configurations
	PineconeCfg  PineconeConfig  `envPrefix:"PINECONE_"`
	OpenAICfg    OpenAIConfig    `envPrefix:"OPENAI_"`
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBEDDING_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string

	// EnvFile is the absolute path of the dotenv file that was looked for.
	EnvFile string
}

type PineconeConfig struct {
	HTTPClientConfig
	APIKey     string               `env:"API_KEY"`
	IndexName  string               `env:"INDEX_NAME" envDefault:"medical-chatbot"`
	IndexHost  string               `env:"INDEX_HOST"`
	Namespace  string               `env:"NAMESPACE"`
	TextKey    string               `env:"TEXT_KEY" envDefault:"text"`
	APIVersion string               `env:"API_VERSION" envDefault:"2025-01"`
	TopK       int                  `env:"TOP_K" envDefault:"3"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type OpenAIConfig struct {
	HTTPClientConfig
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gpt-4o"`
	// Temperature is sent only when set; nil leaves the provider default.
	Temperature *float64             `env:"TEMPERATURE"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type EmbeddingConfig struct {
	HTTPClientConfig
	Model        string               `env:"MODEL" envDefault:"sentence-transformers/all-MiniLM-L6-v2"`
	CacheTTL     time.Duration        `env:"CACHE_TTL" envDefault:"10m"`
	CacheCleanup time.Duration        `env:"CACHE_CLEANUP" envDefault:"5m"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	TLSHandshakeTimeout   time.Duration `env:"TLS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"16"`
	InsecureSkipVerify    bool          `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

const (
	DefaultPineconeControlPlaneURL = "https://api.pinecone.io"
	DefaultEmbeddingServiceURL     = "http://localhost:8081"
)

// ParseFlags reads the -env flag. It must be called once, from main.
func ParseFlags() string {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()
	return *envFlag
}

// LoadConfig loads the dotenv file for environment (if present), checks the
// required credentials and parses the rest of the settings.
func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	if abs, err := filepath.Abs(envFile); err == nil {
		envFile = abs
	}

	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	for _, name := range []string{PineconeAPIKeyEnv, OpenAIAPIKeyEnv} {
		if err := requireEnv(name, envFile); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Environment = environment
	cfg.EnvFile = envFile

	if cfg.PineconeCfg.Url == "" {
		cfg.PineconeCfg.Url = DefaultPineconeControlPlaneURL
	}
	if cfg.EmbeddingCfg.Url == "" {
		cfg.EmbeddingCfg.Url = DefaultEmbeddingServiceURL
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func requireEnv(name, envFile string) error {
	if strings.TrimSpace(os.Getenv(name)) == "" {
		return fmt.Errorf("%w %s: add it to %s or your shell environment",
			entity.ErrMissingCredential, name, envFile)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.PineconeCfg.TopK < 1 || cfg.PineconeCfg.TopK > 50 {
		errs = append(errs, fmt.Errorf("PINECONE_TOP_K must be between 1 and 50, got %d", cfg.PineconeCfg.TopK))
	}

	if cfg.PineconeCfg.IndexName == "" && cfg.PineconeCfg.IndexHost == "" {
		errs = append(errs, errors.New("one of PINECONE_INDEX_NAME or PINECONE_INDEX_HOST must be set"))
	}

	if t := cfg.OpenAICfg.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2, got %g", *t))
	}

	if cfg.OpenAICfg.Model == "" {
		errs = append(errs, errors.New("OPENAI_MODEL must not be empty"))
	}

	retries := map[string]pkgRetry.RetryConfig{
		"PINECONE_RETRY_ATTEMPTS":  cfg.PineconeCfg.Retry,
		"OPENAI_RETRY_ATTEMPTS":    cfg.OpenAICfg.Retry,
		"EMBEDDING_RETRY_ATTEMPTS": cfg.EmbeddingCfg.Retry,
	}
	for name, rc := range retries {
		if rc.Attempts < 1 || rc.Attempts > 10 {
			errs = append(errs, fmt.Errorf("%s must be between 1 and 10, got %d", name, rc.Attempts))
		}
	}

	if cfg.ChatTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_TIMEOUT must be positive, got %s", cfg.ChatTimeout))
	}

	// The handler writes its 504 when CHAT_TIMEOUT fires; the server must still
	// be willing to send it.
	if cfg.WriteTimeout > 0 && cfg.WriteTimeout <= cfg.ChatTimeout {
		errs = append(errs, fmt.Errorf("SERVER_WRITE_TIMEOUT (%s) must exceed CHAT_TIMEOUT (%s)",
			cfg.WriteTimeout, cfg.ChatTimeout))
	}

	return errors.Join(errs...)
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "", "local", "dev", "development":
		return ".env"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
