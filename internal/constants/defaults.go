// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits. The moderation defaults
// are the values a freshly created monitor configuration row carries and the values
// substituted for null columns when a row is read.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default minimum number of database connections.
	DefaultDBMinConnections = 5

	// DefaultDBPort is the default PostgreSQL port.
	DefaultDBPort = 5432

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultConfigPath is used when CONFIG_PATH is not set.
	DefaultConfigPath = "config.yaml"

	// DefaultAppName names the service in logs and metrics.
	DefaultAppName = "skout"
)

// Backend Modes select where profile and monitor rows are stored.
const (
	// BackendModeREST talks to the hosted rows API with the user's access token.
	BackendModeREST = "rest"

	// BackendModePostgres talks to a PostgreSQL database directly.
	BackendModePostgres = "postgres"
)

// Session Store Drivers
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Moderation Defaults
const (
	DefaultModerationEnabled     = false
	DefaultMaxWarnings           = 3
	DefaultPunishmentType        = PunishmentMute
	DefaultMuteDurationSeconds   = 3600
	DefaultSpamProtectionEnabled = true
	DefaultIgnoreAdmins          = true
)

// Punishment Types
const (
	PunishmentMute = "mute"
	PunishmentBan  = "ban"
)

// Form Limits
const (
	// MinPasswordLength mirrors the hosted auth provider's minimum.
	MinPasswordLength = 6

	// MaxRequestBodySize caps JSON and form bodies (1 MiB).
	MaxRequestBodySize = 1 << 20

	// MaxKeywordLength caps a single banned keyword.
	MaxKeywordLength = 100
)
