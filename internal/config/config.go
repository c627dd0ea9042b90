package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/skout-hq/skout/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App         AppSettings         `yaml:"app"`
	Server      ServerSettings      `yaml:"server"`
	Supabase    SupabaseSettings    `yaml:"supabase"`
	Backend     BackendSettings     `yaml:"backend"`
	Database    DatabaseSettings    `yaml:"database"`
	Redis       RedisSettings       `yaml:"redis"`
	Session     SessionSettings     `yaml:"session"`
	Logging     LoggingSettings     `yaml:"logging"`
	CORS        CORSSettings        `yaml:"cors"`
	RateLimit   RateLimitSettings   `yaml:"rate_limit"`
	Maintenance MaintenanceSettings `yaml:"maintenance"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
	// BaseURL is the public origin used for email confirmation redirects.
	BaseURL string `yaml:"base_url" env:"APP_BASE_URL"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// SupabaseSettings points at the hosted auth and rows backend
type SupabaseSettings struct {
	URL       string        `yaml:"url" env:"SUPABASE_URL"`
	AnonKey   string        `yaml:"anon_key" env:"SUPABASE_ANON_KEY"`
	JWTSecret string        `yaml:"jwt_secret" env:"SUPABASE_JWT_SECRET"`
	Timeout   time.Duration `yaml:"timeout" env:"SUPABASE_TIMEOUT"`
}

// BackendSettings selects where profile and monitor rows live
type BackendSettings struct {
	Mode string `yaml:"mode" env:"BACKEND_MODE"`
}

// DatabaseSettings contains direct PostgreSQL connection settings, used when
// Backend.Mode is "postgres"
type DatabaseSettings struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// RedisSettings configures the Redis session store
type RedisSettings struct {
	URL      string `yaml:"url" env:"REDIS_URL"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// SessionSettings controls the server-side session lifecycle
type SessionSettings struct {
	Store                string        `yaml:"store" env:"SESSION_STORE"`
	Secret               string        `yaml:"secret" env:"SESSION_SECRET"`
	TTL                  time.Duration `yaml:"ttl" env:"SESSION_TTL"`
	RefreshMargin        time.Duration `yaml:"refresh_margin" env:"SESSION_REFRESH_MARGIN"`
	ProfileFetchAttempts int           `yaml:"profile_fetch_attempts" env:"SESSION_PROFILE_FETCH_ATTEMPTS"`
	ProfileFetchDelay    time.Duration `yaml:"profile_fetch_delay" env:"SESSION_PROFILE_FETCH_DELAY"`
	DraftIdleTTL         time.Duration `yaml:"draft_idle_ttl" env:"SESSION_DRAFT_IDLE_TTL"`
	CookieSecure         bool          `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// RateLimitSettings contains token bucket settings per category
type RateLimitSettings struct {
	RequestsPerSecond     float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst                 int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
	AuthRequestsPerSecond float64 `yaml:"auth_requests_per_second" env:"RATE_LIMIT_AUTH_RPS"`
	AuthBurst             int     `yaml:"auth_burst" env:"RATE_LIMIT_AUTH_BURST"`
}

// MaintenanceSettings holds cron specs for background jobs
type MaintenanceSettings struct {
	RefreshSweep string `yaml:"refresh_sweep" env:"MAINTENANCE_REFRESH_SWEEP"`
	DraftSweep   string `yaml:"draft_sweep" env:"MAINTENANCE_DRAFT_SWEEP"`
	LimiterSweep string `yaml:"limiter_sweep" env:"MAINTENANCE_LIMITER_SWEEP"`
}

// ConnectionString returns the lib/pq connection string
func (dbs *DatabaseSettings) ConnectionString() string {
	sslMode := dbs.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", dbs.Host, dbs.Port),
		Path:     "/" + dbs.Name,
		RawQuery: "sslmode=" + sslMode,
	}
	if dbs.Password != "" {
		u.User = url.UserPassword(dbs.User, dbs.Password)
	} else {
		u.User = url.User(dbs.User)
	}

	return u.String()
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

var (
	// cfg holds the current application configuration
	cfg *AppConfig
)

// Load loads the configuration from a config file and environment variables
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load configuration from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = config

	logConfig(config)

	return config, nil
}

// Get returns the current application configuration
func Get() *AppConfig {
	if cfg == nil {
		log.Fatal().Msg("configuration not loaded")
	}
	return cfg
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = constants.DefaultAppName
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	// SSE streams ignore the write timeout; see handlers.EventsHandler.
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	if config.App.BaseURL == "" {
		config.App.BaseURL = "http://" + config.Server.ServerAddress()
	}

	if config.Supabase.Timeout == 0 {
		config.Supabase.Timeout = constants.DefaultBackendTimeout
	}

	if config.Backend.Mode == "" {
		config.Backend.Mode = constants.BackendModeREST
	}

	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = constants.DefaultDBPort
	}
	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}

	if config.Session.Store == "" {
		config.Session.Store = constants.SessionStoreMemory
	}
	if config.Session.TTL == 0 {
		config.Session.TTL = constants.DefaultSessionTTL
	}
	if config.Session.RefreshMargin == 0 {
		config.Session.RefreshMargin = constants.DefaultRefreshMargin
	}
	if config.Session.ProfileFetchAttempts == 0 {
		config.Session.ProfileFetchAttempts = constants.DefaultProfileFetchRetries
	}
	if config.Session.ProfileFetchDelay == 0 {
		config.Session.ProfileFetchDelay = constants.DefaultProfileFetchDelay
	}
	if config.Session.DraftIdleTTL == 0 {
		config.Session.DraftIdleTTL = constants.DefaultDraftIdleTTL
	}

	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{config.App.BaseURL}
	}

	if config.RateLimit.RequestsPerSecond == 0 {
		config.RateLimit.RequestsPerSecond = constants.DefaultRateRequestsPerSecond
	}
	if config.RateLimit.Burst == 0 {
		config.RateLimit.Burst = constants.DefaultRateBurst
	}
	if config.RateLimit.AuthRequestsPerSecond == 0 {
		config.RateLimit.AuthRequestsPerSecond = constants.AuthRateRequestsPerSecond
	}
	if config.RateLimit.AuthBurst == 0 {
		config.RateLimit.AuthBurst = constants.AuthRateBurst
	}

	if config.Maintenance.RefreshSweep == "" {
		config.Maintenance.RefreshSweep = constants.DefaultRefreshSweepSpec
	}
	if config.Maintenance.DraftSweep == "" {
		config.Maintenance.DraftSweep = constants.DefaultDraftSweepSpec
	}
	if config.Maintenance.LimiterSweep == "" {
		config.Maintenance.LimiterSweep = constants.DefaultLimiterSweepSpec
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	if config.Supabase.URL == "" {
		return fmt.Errorf("supabase url must be set")
	}
	if _, err := url.ParseRequestURI(config.Supabase.URL); err != nil {
		return fmt.Errorf("supabase url is invalid: %w", err)
	}
	if config.Supabase.AnonKey == "" {
		return fmt.Errorf("supabase anon key must be set")
	}

	if config.App.IsProduction() {
		if config.Supabase.JWTSecret == "" {
			return fmt.Errorf("supabase jwt secret must be set in production")
		}
		if len(config.Session.Secret) < 32 {
			return fmt.Errorf("session secret must be at least 32 characters in production")
		}
	}

	switch config.Backend.Mode {
	case constants.BackendModeREST:
	case constants.BackendModePostgres:
		if config.Database.User == "" {
			return fmt.Errorf("database user must be set when backend mode is postgres")
		}
	default:
		return fmt.Errorf("invalid backend mode: %s", config.Backend.Mode)
	}

	switch config.Session.Store {
	case constants.SessionStoreMemory:
	case constants.SessionStoreRedis:
		if config.Redis.URL == "" {
			return fmt.Errorf("redis url must be set when session store is redis")
		}
	default:
		return fmt.Errorf("invalid session store: %s", config.Session.Store)
	}

	if config.Session.ProfileFetchAttempts < 1 {
		return fmt.Errorf("profile fetch attempts must be at least 1")
	}

	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	log.Info().
		Str("environment", config.App.Environment).
		Str("version", config.App.Version).
		Str("server", config.Server.ServerAddress()).
		Str("supabase_url", config.Supabase.URL).
		Str("supabase_anon_key", redact(config.Supabase.AnonKey)).
		Str("backend_mode", config.Backend.Mode).
		Str("db_host", config.Database.Host).
		Int("db_port", config.Database.Port).
		Str("db_password", redact(config.Database.Password)).
		Str("session_store", config.Session.Store).
		Str("session_secret", redact(config.Session.Secret)).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	return constants.LogRedactedValue
}
