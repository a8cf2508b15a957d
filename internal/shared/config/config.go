package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

type Config struct {
	Ledger    LedgerConfig
	Session   SessionConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
	Stub      StubConfig
	Log       LogConfig
}

type LedgerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Store         string
	FilePath      string
	EncryptionKey string
	DatabaseURL   string
	MongoURI      string
}

type EventsConfig struct {
	Enabled bool
	URL     string
	Token   string
	Subject string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

type StubConfig struct {
	Port      string
	JWTSecret string
	RateLimit int
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; variables already set win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("LEDGER_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEOUT: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("STUB_RATE_LIMIT", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid STUB_RATE_LIMIT: %w", err)
	}

	cfg := &Config{
		Ledger: LedgerConfig{
			BaseURL: strings.TrimRight(getEnv("LEDGER_BASE_URL", "http://localhost:8080"), "/"),
			Timeout: timeout,
		},
		Session: SessionConfig{
			Store:         strings.ToLower(getEnv("SESSION_STORE", StoreFile)),
			FilePath:      getEnv("SESSION_FILE", defaultSessionFile()),
			EncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
			DatabaseURL:   getEnv("SESSION_DATABASE_URL", ""),
			MongoURI:      getEnv("SESSION_MONGO_URI", ""),
		},
		Events: EventsConfig{
			Enabled: getBoolEnv("EVENTS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Token:   getEnv("NATS_TOKEN", ""),
			Subject: getEnv("EVENTS_SUBJECT_PREFIX", "session"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "bankclient"),
			Environment:  getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9464"),
		},
		Stub: StubConfig{
			Port:      getEnv("STUB_PORT", "8080"),
			JWTSecret: getEnv("STUB_JWT_SECRET", ""),
			RateLimit: rateLimit,
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
			File:   getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Ledger.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("LEDGER_BASE_URL must be an absolute URL, got %q", c.Ledger.BaseURL)
	}
	if c.Ledger.Timeout <= 0 {
		return fmt.Errorf("LEDGER_TIMEOUT must be positive")
	}

	switch c.Session.Store {
	case StoreFile:
		if c.Session.FilePath == "" {
			return fmt.Errorf("SESSION_FILE is required when SESSION_STORE=file")
		}
	case StorePostgres:
		if c.Session.DatabaseURL == "" {
			return fmt.Errorf("SESSION_DATABASE_URL is required when SESSION_STORE=postgres")
		}
	case StoreMongo:
		if c.Session.MongoURI == "" {
			return fmt.Errorf("SESSION_MONGO_URI is required when SESSION_STORE=mongo")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}

	if c.Session.EncryptionKey != "" && len(c.Session.EncryptionKey) < 16 {
		return fmt.Errorf("SESSION_ENCRYPTION_KEY must be at least 16 bytes")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}

	if c.Stub.RateLimit <= 0 {
		return fmt.Errorf("STUB_RATE_LIMIT must be positive")
	}

	return nil
}

// StubSecret returns the signing secret for the ledger stub, refusing to
// start without one.
func (c *StubConfig) StubSecret() (string, error) {
	if c.JWTSecret == "" {
		return "", fmt.Errorf("STUB_JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 16 {
		return "", fmt.Errorf("STUB_JWT_SECRET must be at least 16 bytes")
	}
	return c.JWTSecret, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".bankclient-session.json"
	}
	return filepath.Join(dir, "bankclient", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
