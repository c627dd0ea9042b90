package web

import (
	"net/http"
	"net/url"

	"github.com/skout-hq/skout/internal/constants"
)

// setFlash stores a message for the next rendered page.
func (p *Pages) setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.FlashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   constants.FlashCookieMaxAge,
		HttpOnly: true,
		Secure:   p.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending message, if any, and clears it.
func (p *Pages) popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(constants.FlashCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     constants.FlashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	message, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return message
}

func (p *Pages) setVerifier(w http.ResponseWriter, verifier string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.PKCEVerifierCookie,
		Value:    verifier,
		Path:     constants.PageAuthCallback,
		MaxAge:   constants.PKCECookieMaxAge,
		HttpOnly: true,
		Secure:   p.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p *Pages) clearVerifier(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.PKCEVerifierCookie,
		Value:    "",
		Path:     constants.PageAuthCallback,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
