package constants

// Base Routes
const (
	APIBasePath = "/api"
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Authentication API Routes
const (
	AuthBasePath    = "/api/auth"
	AuthSignupPath  = "/api/auth/signup"
	AuthLoginPath   = "/api/auth/login"
	AuthLogoutPath  = "/api/auth/logout"
	AuthRefreshPath = "/api/auth/refresh"
	AuthSessionPath = "/api/auth/session"
	AuthEventsPath  = "/api/auth/events"
	ProfilePath     = "/api/profile"
)

// Monitor Configuration API Routes
const (
	MonitorBasePath        = "/api/monitor"
	CredentialsPath        = "/api/monitor/credentials"
	CredentialsSavePath    = "/api/monitor/credentials/save"
	ModerationPath         = "/api/monitor/moderation"
	ModerationSavePath     = "/api/monitor/moderation/save"
	ModerationKeywordsPath = "/api/monitor/moderation/keywords"
	ModerationKeywordPath  = "/api/monitor/moderation/keywords/{keyword}"
)

// Public Page Routes
const (
	PageHome              = "/"
	PageFeatures          = "/features"
	PagePricing           = "/pricing"
	PageAbout             = "/about"
	PagePrivacy           = "/privacy"
	PageTerms             = "/terms"
	PageDocs              = "/docs"
	PageDocsQuickStart    = "/docs/quick-start"
	PageDocsAPIAuth       = "/docs/api/auth"
	PageDocsAutoMod       = "/docs/features/auto-mod"
	PageDocsBestPractices = "/docs/guides/best-practices"
	PageLogin             = "/login"
	PageSignup            = "/signup"
	PageLogout            = "/logout"
	PageAuthCallback      = "/auth/callback"
)

// Dashboard Page Routes
const (
	PageDashboard            = "/dashboard"
	PageDashboardOverview    = "/dashboard/overview"
	PageDashboardPunishments = "/dashboard/punishments"
	PageDashboardHistory     = "/dashboard/history"
	PageDashboardModeration  = "/dashboard/moderation"
	PageDashboardConfig      = "/dashboard/config"
)
