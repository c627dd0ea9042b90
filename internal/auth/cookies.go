package auth

import (
	"net/http"
	"time"

	"github.com/skout-hq/skout/internal/constants"
)

// SessionIDFromRequest returns the session id cookie value or "".
func SessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(constants.SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetSessionCookie hands the browser its opaque session id.
func SetSessionCookie(w http.ResponseWriter, sid string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
