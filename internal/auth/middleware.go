// Package auth authenticates requests. Browsers carry an opaque session cookie
// that maps to a server-side session; API clients may instead send the hosted
// auth access token as a Bearer token.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/session"
	"github.com/skout-hq/skout/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// identityContextKey stores the *Identity of an authenticated request.
const identityContextKey ContextKey = "identity"

// Identity is who a request acts as.
type Identity struct {
	UserID      string
	Email       string
	SessionID   string
	AccessToken string

	// Session is set for cookie-authenticated requests only.
	Session *models.Session
}

// DraftKey identifies the editor drafts of this identity. Cookie sessions use
// their session id; bearer clients use the hosted session id from the token.
func (i *Identity) DraftKey() string {
	if i.Session != nil {
		return i.SessionID
	}
	return "token:" + i.UserID + ":" + i.SessionID
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext returns the identity stored in ctx.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok && id != nil
}

// GetIdentity extracts the identity from the request context.
func GetIdentity(r *http.Request) (*Identity, bool) {
	return FromContext(r.Context())
}

// IsAuthenticated checks if the request is authenticated.
func IsAuthenticated(r *http.Request) bool {
	_, ok := GetIdentity(r)
	return ok
}

// SessionAuth attaches the caller's identity to the request context when the
// request carries a usable session cookie or bearer token. It never rejects a
// request; RequireAPIAuth and RequirePageAuth do that. validator may be nil,
// which disables bearer tokens.
func SessionAuth(sessions SessionResolver, validator TokenVerifier, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if sid := SessionIDFromRequest(r); sid != "" {
				s, err := sessions.Resolve(ctx, sid)
				if err == nil {
					ctx = WithIdentity(ctx, &Identity{
						UserID:      s.User.ID,
						Email:       s.User.Email,
						SessionID:   s.ID,
						AccessToken: s.AccessToken,
						Session:     s,
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}

				log.Debug().
					Err(err).
					Str(constants.SessionIDContextKey, sid).
					Str("path", r.URL.Path).
					Msg("Session cookie did not resolve")
				if isSessionGone(err) {
					ClearSessionCookie(w, secureCookies)
				}
			}

			if token, ok := bearerToken(r); ok && validator != nil {
				claims, err := validator.Verify(ctx, token)
				if err != nil {
					log.Debug().Err(err).Str("path", r.URL.Path).Msg("Bearer token rejected")
				} else {
					ctx = WithIdentity(ctx, &Identity{
						UserID:      claims.Subject,
						Email:       claims.Email,
						SessionID:   claims.SessionID,
						AccessToken: token,
					})
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPIAuth answers 401 JSON to requests without an identity.
func RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r) {
			utils.Unauthorized(w, constants.MsgAuthRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePageAuth redirects requests without an identity to the login page,
// remembering where they were going.
func RequirePageAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r) {
			target := constants.PageLogin + "?" + url.Values{constants.QueryParamFrom: {r.URL.RequestURI()}}.Encode()
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectIfAuthenticated sends signed-in users away from the login and
// sign-up pages to the dashboard.
func RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsAuthenticated(r) {
			http.Redirect(w, r, constants.PageDashboard, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(constants.HeaderAuthorization)
	if !strings.HasPrefix(header, constants.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
	return token, token != ""
}

// isSessionGone reports whether err means the session no longer exists, as
// opposed to a transient store or backend failure.
func isSessionGone(err error) bool {
	if utils.StatusCode(err) == http.StatusUnauthorized {
		return true
	}
	return errors.Is(err, session.ErrSessionNotFound)
}
