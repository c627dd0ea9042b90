// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines user-facing messages and the error codes used to
// recognise hosted backend and database failures. The messages are the exact strings
// shown in the dashboard banner and on the auth forms.
package constants

// User-Facing Error Messages define standardized messages that can be safely presented to users.
const (
	// MsgAuthRequired indicates that the user must authenticate to access the resource.
	MsgAuthRequired = "Authentication required"

	// MsgNoUserLoggedIn is returned by profile updates without a session.
	MsgNoUserLoggedIn = "No user logged in"

	// MsgInternalServerError provides a generic server error message.
	MsgInternalServerError = "An internal server error occurred"

	// MsgTokenExpired indicates that the user's access token has expired.
	MsgTokenExpired = "Authentication token has expired"

	// MsgInvalidToken indicates that the provided token is invalid.
	MsgInvalidToken = "Invalid token"

	// MsgRequestBodyTooLarge indicates that the request payload exceeds size limits.
	MsgRequestBodyTooLarge = "Request body too large"

	// MsgEmptyRequestBody indicates that a request body was expected but not provided.
	MsgEmptyRequestBody = "Request body must not be empty"

	// MsgMalformedJSON indicates that the request body contains invalid JSON.
	MsgMalformedJSON = "Request body contains malformed JSON"

	// MsgResourceNotFound indicates that the requested resource does not exist.
	MsgResourceNotFound = "The requested resource could not be found"

	// MsgRateLimited is returned when a client exceeds its request budget.
	MsgRateLimited = "Too many requests, please slow down"

	// MsgLogoutSuccess confirms successful logout.
	MsgLogoutSuccess = "Successfully logged out"

	// MsgBackendUnavailable is returned when the hosted backend cannot be reached.
	MsgBackendUnavailable = "Could not reach the hosted backend"

	// MsgSaveInProgress is returned when a second save arrives while one is running.
	MsgSaveInProgress = "A save is already in progress"
)

// Auth Form Messages are shown on the login and sign-up pages.
const (
	MsgFillAllFields          = "Please fill in all fields"
	MsgInvalidEmailOrPassword = "Invalid email or password"
	MsgFirstNameRequired      = "First name is required"
	MsgLastNameRequired       = "Last name is required"
	MsgEmailRequired          = "Email is required"
	MsgEmailInvalid           = "Please enter a valid email address"
	MsgPasswordRequired       = "Password is required"
	MsgPasswordTooShort       = "Password must be at least 6 characters"
	MsgPasswordsDontMatch     = "Passwords don't match"
	MsgAccountExists          = "An account with this email already exists"
	MsgSignupSuccess          = "Account created! Please check your email to verify your account."
	MsgEmailConfirmed         = "Email confirmed. You are now signed in."
)

// Monitor Configuration Messages are shown in the dashboard banner.
const (
	MsgUserVerificationFailed = "User verification failed"
	MsgCreateConfigFailed     = "Failed to create config"
	MsgFetchConfigFailed      = "Failed to fetch config"
	MsgConfigSaved            = "Configuration saved successfully"
	MsgSaveConfigFailed       = "Failed to save configuration"
	MsgLoadConfigFailed       = "Failed to load configuration"
	MsgSaveErrorPrefix        = "Save error"
	MsgKeywordInvalid         = "Keywords must be lowercase and non-empty"
	MsgKeywordTooLong         = "Keywords must be at most 100 characters long"
)

// Hosted Backend Error Codes are the codes the auth and rows APIs return.
const (
	// PGRSTNoRows is returned by PostgREST when a single-object request matches zero rows.
	PGRSTNoRows = "PGRST116"

	// GoTrueInvalidGrant is returned for wrong credentials or an unusable refresh token.
	GoTrueInvalidGrant = "invalid_grant"

	// GoTrueInvalidCredentials is the newer error_code for wrong credentials.
	GoTrueInvalidCredentials = "invalid_credentials"

	// GoTrueUserExists is returned when signing up with a registered email.
	GoTrueUserExists = "user_already_exists"

	// GoTrueRefreshNotFound is returned when a refresh token was revoked or rotated away.
	GoTrueRefreshNotFound = "refresh_token_not_found"
)

// Database Error Types define constants for recognizing and handling database-specific errors.
const (
	// PGErrorDuplicateConstraint is the PostgreSQL error code for unique constraint violations.
	PGErrorDuplicateConstraint = "23505"

	// PGErrorForeignKeyConstraint is the PostgreSQL error code for foreign key violations.
	PGErrorForeignKeyConstraint = "23503"

	// PGErrorNotNullConstraint is the PostgreSQL error code for not-null constraint violations.
	PGErrorNotNullConstraint = "23502"
)

// Logger Constants define values used for structured logging.
const (
	// LogCategoryAuth is the log category for authentication-related events.
	LogCategoryAuth = "auth"

	// LogCategoryBackend is the log category for hosted backend calls.
	LogCategoryBackend = "backend"

	// LogEventLogin is the log event type for user login.
	LogEventLogin = "login"

	// LogEventSignup is the log event type for user registration.
	LogEventSignup = "signup"

	// LogEventLogout is the log event type for sign out.
	LogEventLogout = "logout"

	// LogEventRefresh is the log event type for token refresh.
	LogEventRefresh = "refresh"

	// LogEventProfileUpdate is the log event type for user profile updates.
	LogEventProfileUpdate = "profile_update"

	// LogRedactedValue is used to replace sensitive values in logs.
	LogRedactedValue = "[REDACTED]"
)
