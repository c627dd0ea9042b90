// Package handlers implements the JSON API. Every response uses the envelope
// from utils; the dashboard shows error.message in its banner.
package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/session"
	"github.com/skout-hq/skout/internal/utils"
)

// CookieOptions controls the session cookie set on sign-in.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

// AuthHandler handles authentication-related routes
type AuthHandler struct {
	sessions  SessionManager
	cookies   CookieOptions
	keepAlive time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions SessionManager, cookies CookieOptions) *AuthHandler {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if cookies.TTL <= 0 {
		cookies.TTL = constants.DefaultSessionTTL
	}
	return &AuthHandler{
		sessions:  sessions,
		cookies:   cookies,
		keepAlive: constants.SSEKeepAliveInterval,
	}
}

// signUpResponse tells the client whether a session was opened or the
// address must be confirmed first.
type signUpResponse struct {
	State   *models.AuthState `json:"state"`
	Message string            `json:"message"`
}

// SignUp handles user registration
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in session.SignUpInput
	if err := utils.DecodeAndValidate(r, &in); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	state, err := h.sessions.SignUp(r.Context(), in)
	if err != nil {
		appErr := utils.ParseError(err)
		if utils.IsDuplicateError(err) {
			dup := *appErr
			dup.Message = constants.MsgAccountExists
			appErr = &dup
		}
		utils.ErrorFromAppError(w, appErr)
		return
	}

	message := constants.MsgSignupSuccess
	if state.SignedIn() {
		auth.SetSessionCookie(w, state.SessionID(), h.cookies.TTL, h.cookies.Secure)
		message = constants.MsgEmailConfirmed
	}

	utils.JSON(w, constants.StatusCreated, signUpResponse{State: state, Message: message})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.LoginRequest
	if err := utils.DecodeAndValidate(r, &creds); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	state, err := h.sessions.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	auth.SetSessionCookie(w, state.SessionID(), h.cookies.TTL, h.cookies.Secure)
	utils.JSON(w, constants.StatusOK, state)
}

// Logout handles user logout. It succeeds without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid := auth.SessionIDFromRequest(r); sid != "" {
		if err := h.sessions.SignOut(r.Context(), sid); err != nil {
			utils.ErrorFromAppError(w, utils.ParseError(err))
			return
		}
	}

	auth.ClearSessionCookie(w, h.cookies.Secure)
	utils.JSON(w, constants.StatusOK, map[string]string{
		"message": constants.MsgLogoutSuccess,
	})
}

// refreshResponse reports the new access token expiry.
type refreshResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// Refresh rotates the tokens of the cookie session.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sid := auth.SessionIDFromRequest(r)
	if sid == "" {
		utils.Unauthorized(w, constants.MsgNoUserLoggedIn)
		return
	}

	s, err := h.sessions.Refresh(r.Context(), sid)
	if err != nil {
		if utils.StatusCode(err) == constants.StatusUnauthorized || utils.IsNotFoundError(err) {
			auth.ClearSessionCookie(w, h.cookies.Secure)
		}
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, refreshResponse{ExpiresAt: s.ExpiresAt})
}

// Session returns the bootstrap state: the signed-in user and profile, or an
// empty state when signed out.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sid := auth.SessionIDFromRequest(r)

	state, err := h.sessions.Bootstrap(r.Context(), sid)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	if sid != "" && !state.SignedIn() {
		auth.ClearSessionCookie(w, h.cookies.Secure)
	}

	utils.JSON(w, constants.StatusOK, state)
}

// Events streams the auth events of the caller's session as Server-Sent
// Events. The stream ends after SIGNED_OUT or when the client goes away.
func (h *AuthHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok || id.Session == nil {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut the stream.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug().Err(err).Msg("Could not clear write deadline for event stream")
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeEventStream)
	w.Header().Set(constants.HeaderCacheControl, "no-cache")
	w.Header().Set(constants.HeaderConnection, "keep-alive")
	w.WriteHeader(constants.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Error().Err(err).Msg("Event stream not supported by response writer")
		return
	}

	sub := h.sessions.Subscribe(r.Context(), id.SessionID)
	defer sub.Unsubscribe()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub.C:
			if !open {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				log.Debug().Err(err).Str(constants.SessionIDContextKey, id.SessionID).Msg("Event stream closed")
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
			if ev.Type == constants.AuthEventSignedOut {
				return
			}
		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
