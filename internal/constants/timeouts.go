package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout  = 30 * time.Second
	DBQueryTimeout       = 15 * time.Second
	DBHealthCheckTimeout = 5 * time.Second
	DBConnMaxLifetime    = 1 * time.Hour
	DBConnMaxIdleTime    = 30 * time.Minute
)

// Hosted Backend Timeouts
const (
	DefaultBackendTimeout = 10 * time.Second
)

// Session Lifecycle
const (
	DefaultSessionTTL          = 7 * 24 * time.Hour
	DefaultRefreshMargin       = 60 * time.Second
	DefaultProfileFetchDelay   = 1 * time.Second
	DefaultProfileFetchRetries = 3
	DefaultDraftIdleTTL        = 2 * time.Hour
	LimiterMaxIdle             = 30 * time.Minute
	EventBufferSize            = 16
	SSEKeepAliveInterval       = 25 * time.Second
)

// Maintenance Schedules are cron specs understood by robfig/cron.
const (
	DefaultRefreshSweepSpec = "@every 30s"
	DefaultDraftSweepSpec   = "@every 10m"
	DefaultLimiterSweepSpec = "@every 5m"
)

// Cookie Lifetimes in seconds
const (
	FlashCookieMaxAge = 60
	PKCECookieMaxAge  = 24 * 60 * 60
)
