package models

import (
	"time"
)

// AuthUser is the hosted auth provider's view of a user.
type AuthUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	ConfirmedAt  *time.Time             `json:"confirmed_at,omitempty"`
}

// Session is a server-side auth session. The browser only ever sees ID, in an
// HttpOnly cookie; the tokens stay on the server.
type Session struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AuthUser  `json:"user"`
	CreatedAt    time.Time `json:"created_at"`

	// Profile is the last profile row read for User, nil if it could not be fetched.
	Profile *Profile `json:"profile,omitempty"`
}

// ExpiresWithin reports whether the access token expires before now+margin.
func (s *Session) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return !s.ExpiresAt.After(now.Add(margin))
}

// AuthState is what a page or API client sees after bootstrapping its session.
// A nil User means signed out. A signed-in user can still have a nil Profile if
// the profile row could not be fetched.
type AuthState struct {
	User    *AuthUser `json:"user"`
	Profile *Profile  `json:"profile"`

	sessionID string
}

// SignedOut is the state of a visitor without a session.
func SignedOut() *AuthState {
	return &AuthState{}
}

// NewAuthState builds the state for an existing session.
func NewAuthState(s *Session, profile *Profile) *AuthState {
	user := s.User
	return &AuthState{User: &user, Profile: profile, sessionID: s.ID}
}

// SignedIn reports whether the state has a user.
func (a *AuthState) SignedIn() bool {
	return a != nil && a.User != nil
}

// SessionID returns the server-side session id or "" when signed out.
func (a *AuthState) SessionID() string {
	if a == nil {
		return ""
	}
	return a.sessionID
}

// AuthEvent is published whenever a session changes state.
type AuthEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"-"`
	UserID    string    `json:"user_id,omitempty"`
	At        time.Time `json:"at"`
}

// LoginRequest is an email and password sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
