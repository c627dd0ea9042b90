package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/metrics"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/repository"
	"github.com/skout-hq/skout/internal/resilience"
	"github.com/skout-hq/skout/internal/supabase"
	"github.com/skout-hq/skout/internal/utils"
)

// AuthClient is the part of the hosted auth API the manager uses.
type AuthClient interface {
	SignUp(ctx context.Context, email, password string, opts supabase.SignUpOptions) (*supabase.SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Tokens, error)
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Tokens, error)
	ExchangeCodeForSession(ctx context.Context, authCode, codeVerifier string) (*supabase.Tokens, error)
	SignOut(ctx context.Context, accessToken string) error
}

var _ AuthClient = (*supabase.Client)(nil)

// DraftDropper forgets per-session editor state on sign-out.
type DraftDropper interface {
	Drop(sessionID string)
}

// Options tunes the manager.
type Options struct {
	// RefreshMargin is how long before expiry a token is refreshed.
	RefreshMargin time.Duration

	// ProfileRetry bounds profile fetches after sign-in and on bootstrap.
	ProfileRetry resilience.RetryOptions

	// RedirectTo is the confirmation link target passed on sign-up.
	RedirectTo string
}

// SignUpInput is a sign-up request.
type SignUpInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`

	// CodeChallenge makes the confirmation link return a PKCE code.
	CodeChallenge string `json:"-"`
}

// Manager owns the session lifecycle: sign-up, sign-in, refresh, profile
// reads and sign-out. Every state change is published on the broker.
type Manager struct {
	auth     AuthClient
	profiles repository.ProfileRepository
	store    Store
	broker   *Broker
	drafts   DraftDropper
	opts     Options
	locks    *keyedMutex
	now      func() time.Time
}

// NewManager wires a Manager. drafts may be nil.
func NewManager(auth AuthClient, profiles repository.ProfileRepository, store Store, broker *Broker, drafts DraftDropper, opts Options) *Manager {
	if opts.RefreshMargin <= 0 {
		opts.RefreshMargin = constants.DefaultRefreshMargin
	}
	if opts.ProfileRetry.Attempts <= 0 {
		opts.ProfileRetry = resilience.DefaultRetryOptions()
	}
	return &Manager{
		auth:     auth,
		profiles: profiles,
		store:    store,
		broker:   broker,
		drafts:   drafts,
		opts:     opts,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// Resolve loads a session and refreshes its tokens when they are about to
// expire. It does not publish INITIAL_SESSION and does not refetch the profile,
// so it is cheap enough for every authenticated request.
func (m *Manager) Resolve(ctx context.Context, sid string) (*models.Session, error) {
	if sid == "" {
		return nil, ErrSessionNotFound
	}
	s, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !s.ExpiresWithin(m.now(), m.opts.RefreshMargin) {
		return s, nil
	}
	return m.refresh(ctx, sid, false)
}

// Bootstrap returns the auth state for sid. Missing sessions are signed out,
// not errors. A profile that cannot be read leaves the user signed in with a
// nil profile.
func (m *Manager) Bootstrap(ctx context.Context, sid string) (*models.AuthState, error) {
	s, err := m.Resolve(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || utils.StatusCode(err) == http.StatusUnauthorized {
			return models.SignedOut(), nil
		}
		return nil, err
	}

	profile, err := m.fetchProfile(ctx, s)
	if err != nil {
		log.Warn().Err(err).Str(constants.UserIDContextKey, s.User.ID).Msg("Profile unavailable during bootstrap")
	} else {
		s.Profile = profile
		if err := m.store.Put(ctx, s); err != nil {
			log.Warn().Err(err).Str(constants.SessionIDContextKey, s.ID).Msg("Failed to cache profile on session")
		}
	}

	m.publish(constants.AuthEventInitialSession, s)
	return models.NewAuthState(s, s.Profile), nil
}

// SignUp registers a user and creates the profile row. When the project
// confirms email addresses, no session is opened and the returned state is
// signed out.
func (m *Manager) SignUp(ctx context.Context, in SignUpInput) (*models.AuthState, error) {
	email := strings.TrimSpace(in.Email)
	res, err := m.auth.SignUp(ctx, email, in.Password, supabase.SignUpOptions{
		Metadata: map[string]interface{}{
			constants.ColumnFirstName: strings.TrimSpace(in.FirstName),
			constants.ColumnLastName:  strings.TrimSpace(in.LastName),
		},
		RedirectTo:    m.opts.RedirectTo,
		CodeChallenge: in.CodeChallenge,
	})
	if err != nil {
		utils.LogAuth(constants.LogEventSignup, "", email, false, err.Error())
		if supabase.IsUserExists(err) {
			return nil, utils.NewDuplicateError("User", "email", email)
		}
		return nil, err
	}

	token := ""
	if res.Tokens != nil {
		token = res.Tokens.AccessToken
	}
	profile := models.NewProfile(res.User.ID, email, in.FirstName, in.LastName)
	if err := m.profiles.Create(ctx, token, profile); err != nil {
		utils.LogAuth(constants.LogEventSignup, res.User.ID, email, false, err.Error())
		return nil, err
	}
	utils.LogAuth(constants.LogEventSignup, res.User.ID, email, true, "")

	if res.Tokens == nil {
		return models.SignedOut(), nil
	}
	s, err := m.open(ctx, res.Tokens)
	if err != nil {
		return nil, err
	}
	s.Profile = profile
	if err := m.store.Put(ctx, s); err != nil {
		return nil, err
	}
	m.publish(constants.AuthEventSignedIn, s)
	return models.NewAuthState(s, profile), nil
}

// SignIn exchanges email and password for a new session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.AuthState, error) {
	email = strings.TrimSpace(email)
	tokens, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		utils.LogAuth(constants.LogEventLogin, "", email, false, err.Error())
		if supabase.IsInvalidCredentials(err) {
			return nil, utils.NewInvalidCredentialsError()
		}
		return nil, err
	}

	state, err := m.signedIn(ctx, tokens)
	if err != nil {
		return nil, err
	}
	utils.LogAuth(constants.LogEventLogin, tokens.User.ID, email, true, "")
	return state, nil
}

// ExchangeCode completes a PKCE confirmation link and opens a session.
func (m *Manager) ExchangeCode(ctx context.Context, code, verifier string) (*models.AuthState, error) {
	tokens, err := m.auth.ExchangeCodeForSession(ctx, code, verifier)
	if err != nil {
		utils.LogAuth(constants.LogEventLogin, "", "", false, err.Error())
		return nil, err
	}
	state, err := m.signedIn(ctx, tokens)
	if err != nil {
		return nil, err
	}
	utils.LogAuth(constants.LogEventLogin, tokens.User.ID, tokens.User.Email, true, "code exchange")
	return state, nil
}

func (m *Manager) signedIn(ctx context.Context, tokens *supabase.Tokens) (*models.AuthState, error) {
	s, err := m.open(ctx, tokens)
	if err != nil {
		return nil, err
	}

	profile, err := m.fetchProfile(ctx, s)
	if err != nil {
		log.Warn().Err(err).Str(constants.UserIDContextKey, s.User.ID).Msg("Profile unavailable after sign-in")
	} else {
		s.Profile = profile
		if err := m.store.Put(ctx, s); err != nil {
			return nil, err
		}
	}

	m.publish(constants.AuthEventSignedIn, s)
	return models.NewAuthState(s, s.Profile), nil
}

// open stores tokens under a fresh session id.
func (m *Manager) open(ctx context.Context, tokens *supabase.Tokens) (*models.Session, error) {
	s := &models.Session{
		ID:           uuid.NewString(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		User:         tokens.User,
		CreatedAt:    m.now().UTC(),
	}
	if err := m.store.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// SignOut ends the session. The remote logout is best effort; the local
// session is removed either way.
func (m *Manager) SignOut(ctx context.Context, sid string) error {
	unlock := m.locks.Lock(sid)
	defer unlock()

	s, err := m.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := m.auth.SignOut(ctx, s.AccessToken); err != nil {
		log.Warn().Err(err).Str(constants.SessionIDContextKey, sid).Msg("Remote sign-out failed")
	}
	if err := m.end(ctx, s); err != nil {
		return err
	}
	utils.LogAuth(constants.LogEventLogout, s.User.ID, s.User.Email, true, "")
	return nil
}

func (m *Manager) end(ctx context.Context, s *models.Session) error {
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return err
	}
	if m.drafts != nil {
		m.drafts.Drop(s.ID)
	}
	m.publish(constants.AuthEventSignedOut, s)
	return nil
}

// Refresh rotates the tokens of sid. A rejected refresh token ends the session.
func (m *Manager) Refresh(ctx context.Context, sid string) (*models.Session, error) {
	return m.refresh(ctx, sid, true)
}

func (m *Manager) refresh(ctx context.Context, sid string, force bool) (*models.Session, error) {
	unlock := m.locks.Lock(sid)
	defer unlock()

	// Another request may have refreshed while this one waited for the lock.
	s, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !force && !s.ExpiresWithin(m.now(), m.opts.RefreshMargin) {
		return s, nil
	}

	tokens, err := m.auth.RefreshSession(ctx, s.RefreshToken)
	if err != nil {
		utils.LogAuth(constants.LogEventRefresh, s.User.ID, s.User.Email, false, err.Error())
		if supabase.IsRefreshRejected(err) {
			if endErr := m.end(ctx, s); endErr != nil {
				log.Error().Err(endErr).Str(constants.SessionIDContextKey, sid).Msg("Failed to remove rejected session")
			}
			return nil, utils.NewExpiredTokenError()
		}
		return nil, err
	}

	// The session may have been removed by another instance sharing the store.
	if _, err := m.store.Get(ctx, sid); err != nil {
		return nil, err
	}

	s.AccessToken = tokens.AccessToken
	s.RefreshToken = tokens.RefreshToken
	s.ExpiresAt = tokens.ExpiresAt
	if tokens.User.ID != "" {
		s.User = tokens.User
	}
	if err := m.store.Put(ctx, s); err != nil {
		return nil, err
	}

	m.publish(constants.AuthEventTokenRefreshed, s)
	return s, nil
}

// UpdateProfile writes profile changes for the session's user and rereads the row.
func (m *Manager) UpdateProfile(ctx context.Context, sid string, update *models.ProfileUpdate) (*models.Profile, error) {
	if _, err := m.Resolve(ctx, sid); err != nil {
		return nil, noSession(err)
	}

	unlock := m.locks.Lock(sid)
	defer unlock()

	// Reread under the lock so a concurrent sign-out or refresh is not undone.
	s, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, noSession(err)
	}

	if err := m.profiles.Update(ctx, s.AccessToken, s.User.ID, update); err != nil {
		utils.LogAuth(constants.LogEventProfileUpdate, s.User.ID, s.User.Email, false, err.Error())
		return nil, err
	}
	profile, err := m.profiles.GetByID(ctx, s.AccessToken, s.User.ID)
	if err != nil {
		return nil, err
	}

	s.Profile = profile
	if err := m.store.Put(ctx, s); err != nil {
		return nil, err
	}
	utils.LogAuth(constants.LogEventProfileUpdate, s.User.ID, s.User.Email, true, "")
	m.publish(constants.AuthEventUserUpdated, s)
	return profile, nil
}

func noSession(err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return utils.NewUnauthorizedError(constants.MsgNoUserLoggedIn)
	}
	return err
}

// RefreshExpiring refreshes every stored session that expires within the
// refresh margin and returns how many were refreshed.
func (m *Manager) RefreshExpiring(ctx context.Context) (int, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}
	metrics.ActiveSessions.Set(float64(len(sessions)))

	now := m.now()
	refreshed := 0
	for _, s := range sessions {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if !s.ExpiresWithin(now, m.opts.RefreshMargin) {
			continue
		}
		if _, err := m.refresh(ctx, s.ID, false); err != nil {
			log.Warn().Err(err).Str(constants.SessionIDContextKey, s.ID).Msg("Scheduled token refresh failed")
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// Subscribe streams the auth events of sid until ctx is done.
func (m *Manager) Subscribe(ctx context.Context, sid string) *Subscription {
	return m.broker.Subscribe(ctx, sid)
}

func (m *Manager) fetchProfile(ctx context.Context, s *models.Session) (*models.Profile, error) {
	var profile *models.Profile
	err := resilience.Retry(ctx, m.opts.ProfileRetry, "profile.fetch", func(ctx context.Context) error {
		p, err := m.profiles.GetByID(ctx, s.AccessToken, s.User.ID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	return profile, err
}

func (m *Manager) publish(eventType string, s *models.Session) {
	m.broker.Publish(models.AuthEvent{
		Type:      eventType,
		SessionID: s.ID,
		UserID:    s.User.ID,
		At:        m.now().UTC(),
	})
}

// keyedMutex serialises work per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
