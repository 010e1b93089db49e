// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the
// HTTP server, logging, persistence, the upstream completion provider, quota
// enforcement, messaging, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "promptforge-api")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and configures the persistence backend.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite file path
	URL    string // Postgres DSN
}

// ProviderConfig configures the OpenAI-compatible completion endpoint.
// An empty APIKey disables outbound calls; every invocation then returns
// the fallback text.
type ProviderConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	SiteURL  string // sent as HTTP-Referer
	SiteName string // sent as X-Title
}

// QuotaConfig configures per-identity quota and the per-IP ceiling.
type QuotaConfig struct {
	Backend      string        // memory|redis
	DefaultLimit int           // requests per window for new identities
	Window       time.Duration // rolling window length
	IPLimit      int           // requests per IPWindow per client address (0 disables)
	IPWindow     time.Duration
}

// RedisConfig holds connection settings for the Redis quota backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig holds connection settings for the event publisher.
// An empty URL disables publishing.
type NATSConfig struct {
	URL     string
	Subject string
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 60s, must exceed provider timeout
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	ShutdownTimeout   time.Duration

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DB             DBConfig
	MaxPromptRunes int
	HistoryLimit   int
	PersistTimeout time.Duration
	StatsTimezone  *time.Location

	Provider ProviderConfig
	Quota    QuotaConfig
	Redis    RedisConfig
	NATS     NATSConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8000"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		ShutdownTimeout:   getdur("SHUTDOWN_TIMEOUT", 15*time.Second),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// App
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "promptforge.db"),
			URL:    getenv("DATABASE_URL", ""),
		},
		MaxPromptRunes: getint("MAX_PROMPT_RUNES", 20000),
		HistoryLimit:   getint("HISTORY_LIMIT", 50),
		PersistTimeout: getdur("PERSIST_TIMEOUT", 10*time.Second),

		Provider: ProviderConfig{
			APIKey:   getenv("PROVIDER_API_KEY", getenv("OPENROUTER_KEY", "")),
			BaseURL:  getenv("PROVIDER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:    getenv("PROVIDER_MODEL", "deepseek/deepseek-r1-0528:free"),
			Timeout:  getdur("PROVIDER_TIMEOUT", 60*time.Second),
			SiteURL:  getenv("SITE_URL", "https://promptforge.dev"),
			SiteName: getenv("SITE_NAME", "PromptForge AI Assistant"),
		},
		Quota: QuotaConfig{
			Backend:      strings.ToLower(getenv("QUOTA_BACKEND", "memory")),
			DefaultLimit: getint("QUOTA_DEFAULT_LIMIT", 1000),
			Window:       getdur("QUOTA_WINDOW", 24*time.Hour),
			IPLimit:      getint("IP_LIMIT", 1000),
			IPWindow:     getdur("IP_WINDOW", 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     getenv("NATS_URL", ""),
			Subject: getenv("NATS_SUBJECT", "promptforge.prompts.completed"),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "promptforge-api"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" || cfg.DB.Driver == "pg" {
		cfg.DB.Driver = "postgres"
	}
	loc, err := time.LoadLocation(getenv("STATS_TIMEZONE", "UTC"))
	if err != nil {
		return cfg, errors.New("STATS_TIMEZONE must be a valid IANA time zone")
	}
	cfg.StatsTimezone = loc

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.MaxPromptRunes < 1 {
		return cfg, errors.New("MAX_PROMPT_RUNES must be >= 1")
	}
	if cfg.HistoryLimit < 1 || cfg.HistoryLimit > 100 {
		return cfg, errors.New("HISTORY_LIMIT must be between 1 and 100")
	}
	if cfg.PersistTimeout <= 0 {
		return cfg, errors.New("PERSIST_TIMEOUT must be > 0")
	}
	if cfg.Provider.Timeout <= 0 {
		return cfg, errors.New("PROVIDER_TIMEOUT must be > 0")
	}
	if cfg.Provider.APIKey != "" && strings.TrimSpace(cfg.Provider.Model) == "" {
		return cfg, errors.New("PROVIDER_MODEL must not be empty")
	}
	switch cfg.Quota.Backend {
	case "memory", "redis":
	default:
		return cfg, errors.New("QUOTA_BACKEND must be one of: memory, redis")
	}
	if cfg.Quota.DefaultLimit < 1 {
		return cfg, errors.New("QUOTA_DEFAULT_LIMIT must be >= 1")
	}
	if cfg.Quota.Window <= 0 || cfg.Quota.IPWindow <= 0 {
		return cfg, errors.New("QUOTA_WINDOW and IP_WINDOW must be > 0")
	}
	if cfg.Quota.IPLimit < 0 {
		return cfg, errors.New("IP_LIMIT must be >= 0")
	}
	if cfg.Quota.Backend == "redis" && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return cfg, errors.New("REDIS_ADDR is required when QUOTA_BACKEND=redis")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ProviderEnabled reports whether outbound completion calls are configured.
func (c Config) ProviderEnabled() bool { return strings.TrimSpace(c.Provider.APIKey) != "" }

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
