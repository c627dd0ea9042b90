// Package constants provides shared constant values used throughout the application.
//
// The general_const.go file defines general-purpose constants related to routing
// parameters, context keys and cookies. Keeping these in one place keeps the API
// and the page routes predictable.
package constants

// URL Parameters define path parameter names used in route definitions.
const (
	// ParamKeyword is the URL parameter for a banned keyword.
	ParamKeyword = "keyword"
)

// Query Parameters define common query string parameter names.
const (
	// QueryParamFrom carries the page the visitor tried to open before logging in.
	QueryParamFrom = "from"

	// QueryParamCode carries the PKCE authorization code on the auth callback.
	QueryParamCode = "code"
)

// Context Key Names are used both as context keys and as structured log fields.
const (
	UserIDContextKey      = "user_id"
	EmailContextKey       = "email"
	SessionIDContextKey   = "session_id"
	AccessTokenContextKey = "access_token"
	RequestIDContextKey   = "request_id"
)

// Cookie Names
const (
	// SessionCookie holds the opaque server-side session identifier.
	SessionCookie = "skout_session"

	// FlashCookie holds a one-shot message shown on the next rendered page.
	FlashCookie = "skout_flash"

	// PKCEVerifierCookie holds the code verifier between sign-up and the email callback.
	PKCEVerifierCookie = "skout_pkce"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)
