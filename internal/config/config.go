package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/pseudolawyer/negotiation-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	LLMConnectorCfg    LLMConnectorConfig    `envPrefix:"LLM_"`
	NotifyConnectorCfg NotifyConnectorConfig `envPrefix:"NOTIFY_"`

	// Profile directory cache TTL
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// LLMConnectorConfig configures the text-generation gateway. The mediation
// and generation calls use distinct sampling settings: conversational turns
// need variety, legal documents need a steady register.
type LLMConnectorConfig struct {
	HTTPClientConfig
	Model                 string  `env:"MODEL" envDefault:"anthropic/claude-3.5-sonnet"`
	MediationMaxTokens    int     `env:"MEDIATION_MAX_TOKENS" envDefault:"500"`
	MediationTemperature  float64 `env:"MEDIATION_TEMPERATURE" envDefault:"0.7"`
	GenerationMaxTokens   int     `env:"GENERATION_MAX_TOKENS" envDefault:"4000"`
	GenerationTemperature float64 `env:"GENERATION_TEMPERATURE" envDefault:"0.3"`
}

// NotifyConnectorConfig configures the webhook that receives new-message
// events for live UI delivery. Optional: an empty endpoint disables pushes.
type NotifyConnectorConfig struct {
	HTTPClientConfig
	Endpoint string               `env:"ENDPOINT"`
	Retry    pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://openrouter.ai/api/v1"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	if cfg.LLMConnectorCfg.MediationTemperature < 0 || cfg.LLMConnectorCfg.MediationTemperature > 2 {
		return fmt.Errorf("LLM_MEDIATION_TEMPERATURE must be between 0 and 2, got %g", cfg.LLMConnectorCfg.MediationTemperature)
	}

	if cfg.LLMConnectorCfg.GenerationTemperature < 0 || cfg.LLMConnectorCfg.GenerationTemperature > 2 {
		return fmt.Errorf("LLM_GENERATION_TEMPERATURE must be between 0 and 2, got %g", cfg.LLMConnectorCfg.GenerationTemperature)
	}

	if cfg.LLMConnectorCfg.MediationMaxTokens < 1 || cfg.LLMConnectorCfg.GenerationMaxTokens < 1 {
		return fmt.Errorf("LLM max token limits must be positive")
	}

	if !cfg.EnableMocks && cfg.LLMConnectorCfg.Token == "" {
		return fmt.Errorf("LLM_TOKEN is required unless ENABLE_MOCKS is set")
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
