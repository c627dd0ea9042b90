package web

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/session"
	"github.com/skout-hq/skout/internal/supabase"
	"github.com/skout-hq/skout/internal/utils"
)

// LoginPage shows the login form.
func (p *Pages) LoginPage(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "login", &pageData{
		Title: "Sign in",
		Flash: p.popFlash(w, r),
		From:  r.URL.Query().Get(constants.QueryParamFrom),
	})
}

// Login signs the visitor in and sends them where they were going.
func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form := parseLoginForm(r.PostForm)

	fail := func(status int, message string) {
		p.render(w, r, status, "login", &pageData{
			Title: "Sign in",
			Error: message,
			From:  form.From,
			Form:  map[string]string{"email": form.Email},
		})
	}

	if message := form.validate(); message != "" {
		fail(http.StatusBadRequest, message)
		return
	}

	state, err := p.sessions.SignIn(r.Context(), form.Email, form.Password)
	if err != nil {
		fail(http.StatusUnauthorized, loginErrorMessage(err))
		return
	}

	auth.SetSessionCookie(w, state.SessionID(), p.opts.SessionTTL, p.opts.SecureCookies)
	target := utils.SafeRedirectPath(strings.TrimSpace(form.From), constants.PageDashboard)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SignupPage shows the sign-up form.
func (p *Pages) SignupPage(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "signup", &pageData{Title: "Create account"})
}

// Signup registers the visitor. When the project confirms email addresses the
// visitor is sent to the login page with a confirmation message; the link in
// the email comes back to AuthCallback.
func (p *Pages) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form := parseSignUpForm(r.PostForm)

	fail := func(status int, message string) {
		p.render(w, r, status, "signup", &pageData{
			Title: "Create account",
			Error: message,
			Form:  form.values(),
		})
	}

	if message := form.validate(); message != "" {
		fail(http.StatusBadRequest, message)
		return
	}

	verifier, challenge, err := supabase.NewPKCE()
	if err != nil {
		log.Error().Err(err).Msg("Failed to create PKCE verifier")
		fail(http.StatusInternalServerError, constants.MsgInternalServerError)
		return
	}

	state, err := p.sessions.SignUp(r.Context(), session.SignUpInput{
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		Email:         form.Email,
		Password:      form.Password,
		CodeChallenge: challenge,
	})
	if err != nil {
		fail(http.StatusBadRequest, signUpErrorMessage(err))
		return
	}

	if state.SignedIn() {
		auth.SetSessionCookie(w, state.SessionID(), p.opts.SessionTTL, p.opts.SecureCookies)
		http.Redirect(w, r, constants.PageDashboard, http.StatusSeeOther)
		return
	}

	p.setVerifier(w, verifier)
	p.setFlash(w, constants.MsgSignupSuccess)
	http.Redirect(w, r, constants.PageLogin, http.StatusSeeOther)
}

// AuthCallback completes the email confirmation link.
func (p *Pages) AuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get(constants.QueryParamCode)
	if code == "" {
		http.Redirect(w, r, constants.PageLogin, http.StatusFound)
		return
	}

	verifier := ""
	if c, err := r.Cookie(constants.PKCEVerifierCookie); err == nil {
		verifier = c.Value
	}
	p.clearVerifier(w)

	state, err := p.sessions.ExchangeCode(r.Context(), code, verifier)
	if err != nil {
		log.Warn().Err(err).Msg("Email confirmation code exchange failed")
		p.setFlash(w, "Email confirmation failed. Please sign in.")
		http.Redirect(w, r, constants.PageLogin, http.StatusFound)
		return
	}

	auth.SetSessionCookie(w, state.SessionID(), p.opts.SessionTTL, p.opts.SecureCookies)
	p.setFlash(w, constants.MsgEmailConfirmed)
	http.Redirect(w, r, constants.PageDashboard, http.StatusFound)
}

// Logout signs out and returns to the home page.
func (p *Pages) Logout(w http.ResponseWriter, r *http.Request) {
	if sid := auth.SessionIDFromRequest(r); sid != "" {
		if err := p.sessions.SignOut(r.Context(), sid); err != nil {
			log.Error().Err(err).Str(constants.SessionIDContextKey, sid).Msg("Sign-out failed")
		}
	}
	auth.ClearSessionCookie(w, p.opts.SecureCookies)
	http.Redirect(w, r, constants.PageHome, http.StatusSeeOther)
}
