package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config holds the sam-ui settings. Values come from the environment, optionally seeded from a .env file.
type Config struct {
	Environment    string        `env:"SAM_ENVIRONMENT,default=dev"`
	Host           string        `env:"SAM_HOST,default=0.0.0.0"`
	Port           int           `env:"SAM_PORT,default=3000"`
	LogLevel       string        `env:"SAM_LOG_LEVEL,default=debug"`
	ReadTimeout    time.Duration `env:"SAM_READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"SAM_WRITE_TIMEOUT,default=60s"`
	IdleTimeout    time.Duration `env:"SAM_IDLE_TIMEOUT,default=60s"`
	APIBaseURL     string        `env:"SAM_API_BASE_URL,default=http://localhost:5000/api"`
	APITimeout     time.Duration `env:"SAM_API_TIMEOUT,default=0s"` // 0 = no client timeout
	ButtonReset    time.Duration `env:"SAM_BUTTON_RESET,default=2s"`
	ReportTTL      time.Duration `env:"SAM_REPORT_TTL,default=5m"`
	SessionTTL     time.Duration `env:"SAM_SESSION_TTL,default=12h"`
	RedisAddr      string        `env:"SAM_REDIS_ADDR"` // empty = in-memory stores
	RedisPassword  string        `env:"SAM_REDIS_PASSWORD"`
	RedisDB        int           `env:"SAM_REDIS_DB,default=0"`
	RateLimitRPS   int32         `env:"SAM_RATE_LIMIT_RPS,default=5"`
	RateLimitBurst int32         `env:"SAM_RATE_LIMIT_BURST,default=10"`
	AllowedOrigins []string      `env:"SAM_ALLOWED_ORIGINS,separator=|"`
}

const (
	SessionCookieName = "sam_session"

	// ServerShutdownTimeout is the timeout for graceful server shutdown
	ServerShutdownTimeout = 10 * time.Second

	CORSMaxAgeInSeconds = 86400 // 24 hours
)

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// NewConfig loads the optional env file and then decodes the environment.
// Pass an empty envFile to use ".env" in the working directory; a missing file is not an error.
func NewConfig(envFile string) (*Config, error) {
	// the default .env is optional, a file named by the caller must exist
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the decoded values. The cli calls it again after applying flag overrides.
func Validate(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.APITimeout < 0 {
		return fmt.Errorf("api timeout cannot be negative, got %v", cfg.APITimeout)
	}
	if cfg.ButtonReset <= 0 {
		return fmt.Errorf("button reset delay must be positive, got %v", cfg.ButtonReset)
	}
	if cfg.ReportTTL <= 0 || cfg.SessionTTL <= 0 {
		return fmt.Errorf("report and session ttl must be positive")
	}

	if cfg.APIBaseURL == "" {
		return fmt.Errorf("SAM_API_BASE_URL cannot be empty")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("SAM_API_BASE_URL must be an absolute http(s) url, got %q", cfg.APIBaseURL)
	}

	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return nil
}
