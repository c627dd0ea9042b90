package constants

// Rate Limit Categories
const (
	RateCategoryDefault = "default"
	RateCategoryAuth    = "auth"
)

// Rate Limit Defaults
const (
	DefaultRateRequestsPerSecond = 10.0
	DefaultRateBurst             = 30
	AuthRateRequestsPerSecond    = 0.2
	AuthRateBurst                = 5
	MaxTrackedLimiters           = 10000
)

// Editor Kinds name the per-session drafts held by the editor registry.
const (
	EditorCredentials = "credentials"
	EditorModeration  = "moderation"
)

// Auth Event Types mirror the hosted auth provider's state-change events.
const (
	AuthEventInitialSession = "INITIAL_SESSION"
	AuthEventSignedIn       = "SIGNED_IN"
	AuthEventSignedOut      = "SIGNED_OUT"
	AuthEventTokenRefreshed = "TOKEN_REFRESHED"
	AuthEventUserUpdated    = "USER_UPDATED"
)

// Session Sealing
const (
	// SessionSealInfo is the HKDF info string for the session record key.
	SessionSealInfo = "skout session record v1"

	// RedisSessionPrefix namespaces session keys in Redis.
	RedisSessionPrefix = "skout:session:"
)
