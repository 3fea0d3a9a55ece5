package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StoragePostgres StorageBackend = "postgres"
	StorageSQLite   StorageBackend = "sqlite"
)

type AuthMode string

const (
	AuthModeDemo AuthMode = "demo"
	AuthModeJWT  AuthMode = "jwt"
)

// MinSessionSecretLen is the shortest accepted HS256 session secret.
const MinSessionSecretLen = 32

// CSRFKeyLen is the exact CSRF authentication key length.
const CSRFKeyLen = 32

// Config is the process configuration for cmd/web.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageBackend StorageBackend `env:"STORAGE_BACKEND" envDefault:"memory"`
	// BackendURL is the Postgres DSN or the SQLite file path.
	BackendURL     string `env:"BACKEND_URL"`
	BackendAnonKey string `env:"BACKEND_ANON_KEY"`

	AuthMode    AuthMode      `env:"AUTH_MODE" envDefault:"demo"`
	DevSubject  string        `env:"DEV_SUBJECT" envDefault:"demo|local"`
	SignInDelay time.Duration `env:"SIGNIN_DELAY" envDefault:"2s"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	CSRFKey       string        `env:"CSRF_KEY"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"false"`

	IdempotencyRetention time.Duration `env:"IDEMPOTENCY_RETENTION" envDefault:"24h"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads Config from environ (nil means the process environment), validates it
// and fills a random CSRF key when none is configured.
func Load(environ map[string]string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg, environ); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.CSRFKey == "" {
		key := make([]byte, CSRFKeyLen)
		if _, err := rand.Read(key); err != nil {
			return Config{}, fmt.Errorf("generate csrf key: %w", err)
		}
		cfg.CSRFKey = string(key)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StorageBackend = StorageBackend(strings.ToLower(strings.TrimSpace(string(c.StorageBackend))))
	c.AuthMode = AuthMode(strings.ToLower(strings.TrimSpace(string(c.AuthMode))))
	c.BackendURL = strings.TrimSpace(c.BackendURL)
	c.DevSubject = strings.TrimSpace(c.DevSubject)
}

// Validate checks cross-field rules the struct tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if c.BackendURL == "" {
			errs = append(errs, errors.New("BACKEND_URL is required for the postgres backend"))
		}
		if c.BackendAnonKey == "" {
			errs = append(errs, errors.New("BACKEND_ANON_KEY is required for the postgres backend"))
		}
	case StorageSQLite:
		if c.BackendURL == "" {
			errs = append(errs, errors.New("BACKEND_URL is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be memory, postgres or sqlite, got %q", c.StorageBackend))
	}

	switch c.AuthMode {
	case AuthModeDemo:
		if c.DevSubject == "" {
			errs = append(errs, errors.New("DEV_SUBJECT must be non-empty in demo mode"))
		}
		if c.SignInDelay < 0 {
			errs = append(errs, errors.New("SIGNIN_DELAY must not be negative"))
		}
	case AuthModeJWT:
		if len(c.SessionSecret) < MinSessionSecretLen {
			errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes in jwt mode", MinSessionSecretLen))
		}
		if c.SessionTTL <= 0 {
			errs = append(errs, errors.New("SESSION_TTL must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE must be demo or jwt, got %q", c.AuthMode))
	}

	if c.CSRFKey != "" && len(c.CSRFKey) != CSRFKeyLen {
		errs = append(errs, fmt.Errorf("CSRF_KEY must be exactly %d bytes", CSRFKeyLen))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseLogLevel maps LOG_LEVEL to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
	}
}
