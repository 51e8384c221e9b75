package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/ledger"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Ledger
	LedgerSource    string // file path, http(s):// URL or gs:// URI; empty starts Empty
	LedgerDelimiter string
	LedgerSchema    string // e.g. "account=4,description=7,category=10,amount=12,date=13"
	CurrentPeriod   string // YYYY-MM
	PreviousPeriod  string // YYYY-MM, defaults to the month before CurrentPeriod

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration

	// Cache
	SourceCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Admin auth
	AdminPasswordHash string // bcrypt; empty disables the write endpoints
	JWTSecret         string
	JWTAccessTTL      time.Duration

	// CORS
	CORSAllowedOrigins []string
}

// DefaultJWTSecret is the development signing key used when JWT_SECRET is
// unset. Validate refuses it once admin auth is enabled.
const DefaultJWTSecret = "insights-default-dev-secret-change-me"

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LedgerSource:    getEnv("LEDGER_SOURCE", ""),
		LedgerDelimiter: getEnv("LEDGER_DELIMITER", ","),
		LedgerSchema:    getEnv("LEDGER_SCHEMA", ""),
		CurrentPeriod:   getEnv("CURRENT_PERIOD", ledger.DefaultCurrentPeriod.String()),
		PreviousPeriod:  getEnv("PREVIOUS_PERIOD", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),

		SourceCacheTTL: getEnvDuration("SOURCE_CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTAccessTTL:      getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Validate checks every value that has a fixed format and returns all
// problems at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}
	if _, _, err := c.Periods(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.Schema(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.MaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("invalid MAX_RETRIES %d: must not be negative", c.MaxRetries))
	}
	if c.HTTPTimeout <= 0 {
		problems = append(problems, "HTTP_TIMEOUT must be positive")
	}
	if c.SourceCacheTTL <= 0 {
		problems = append(problems, "SOURCE_CACHE_TTL must be positive")
	}
	if c.AdminPasswordHash != "" {
		switch {
		case c.JWTSecret == DefaultJWTSecret:
			problems = append(problems, "JWT_SECRET must be set when admin auth is enabled")
		case len(c.JWTSecret) < 16:
			problems = append(problems, "JWT_SECRET must be at least 16 characters when admin auth is enabled")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Periods resolves the current and previous reporting periods.
func (c *Config) Periods() (current, previous domain.Period, err error) {
	current, err = domain.ParsePeriod(c.CurrentPeriod)
	if err != nil {
		return domain.Period{}, domain.Period{}, fmt.Errorf("CURRENT_PERIOD: %w", err)
	}
	if strings.TrimSpace(c.PreviousPeriod) == "" {
		return current, current.Previous(), nil
	}
	previous, err = domain.ParsePeriod(c.PreviousPeriod)
	if err != nil {
		return domain.Period{}, domain.Period{}, fmt.Errorf("PREVIOUS_PERIOD: %w", err)
	}
	return current, previous, nil
}

// Schema resolves the ledger column layout and delimiter.
func (c *Config) Schema() (ledger.Schema, error) {
	schema, err := ledger.ParseSchema(c.LedgerSchema, ledger.DefaultSchema)
	if err != nil {
		return ledger.Schema{}, fmt.Errorf("LEDGER_SCHEMA: %w", err)
	}
	schema.Delimiter, err = ledger.ParseDelimiter(c.LedgerDelimiter)
	if err != nil {
		return ledger.Schema{}, fmt.Errorf("LEDGER_DELIMITER: %w", err)
	}
	return schema, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
