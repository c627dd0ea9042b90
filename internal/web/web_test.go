package web

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/editor"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/session"
	"github.com/skout-hq/skout/internal/utils"
)

// MockSessions is a mock implementation of Sessions
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) SignUp(ctx context.Context, in session.SignUpInput) (*models.AuthState, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthState), args.Error(1)
}

func (m *MockSessions) SignIn(ctx context.Context, email, password string) (*models.AuthState, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthState), args.Error(1)
}

func (m *MockSessions) SignOut(ctx context.Context, sid string) error {
	return m.Called(ctx, sid).Error(0)
}

func (m *MockSessions) ExchangeCode(ctx context.Context, code, verifier string) (*models.AuthState, error) {
	args := m.Called(ctx, code, verifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthState), args.Error(1)
}

type memoryBackend[T any] struct {
	mu      sync.Mutex
	stored  T
	saves   int
	saveErr error
}

func (b *memoryBackend[T]) Load(context.Context) (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stored, nil
}

func (b *memoryBackend[T]) Save(_ context.Context, v T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.stored = v
	return nil
}

type testBackends struct {
	credentials *memoryBackend[models.CredentialsForm]
	moderation  *memoryBackend[models.ModerationSettings]
}

func (b *testBackends) CredentialsBackend(string, string) editor.Backend[models.CredentialsForm] {
	return b.credentials
}

func (b *testBackends) ModerationBackend(string, string) editor.Backend[models.ModerationSettings] {
	return b.moderation
}

func setupPages(t *testing.T) (*Pages, *MockSessions, *testBackends) {
	t.Helper()
	sessions := new(MockSessions)
	backends := &testBackends{
		credentials: &memoryBackend[models.CredentialsForm]{},
		moderation:  &memoryBackend[models.ModerationSettings]{stored: models.DefaultModerationSettings()},
	}
	credentials := editor.NewRegistry(constants.EditorCredentials, time.Hour, func() *editor.Editor[models.CredentialsForm] {
		return editor.New(constants.EditorCredentials, models.CredentialsForm{}, nil)
	})
	moderation := editor.NewRegistry(constants.EditorModeration, time.Hour, func() *editor.Editor[models.ModerationSettings] {
		return editor.New(constants.EditorModeration, models.DefaultModerationSettings(), models.ModerationSettings.Clone)
	})

	pages, err := New(sessions, backends, credentials, moderation, Options{SessionTTL: time.Hour})
	require.NoError(t, err)
	return pages, sessions, backends
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(constants.HeaderContentType, "application/x-www-form-urlencoded")
	return req
}

func signedIn(req *http.Request) *http.Request {
	s := &models.Session{
		ID:          "sid-1",
		AccessToken: "access-1",
		User:        models.AuthUser{ID: "user-1", Email: "ada@example.com"},
		Profile:     &models.Profile{ID: "user-1", FirstName: "Ada", LastName: "Lovelace"},
	}
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{
		UserID:      s.User.ID,
		Email:       s.User.Email,
		SessionID:   s.ID,
		AccessToken: s.AccessToken,
		Session:     s,
	}))
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestNew_ParsesEveryPage(t *testing.T) {
	pages, _, _ := setupPages(t)
	assert.Len(t, pages.templates, len(pageNames))
}

func TestPublicPages(t *testing.T) {
	pages, _, _ := setupPages(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"home", pages.Page("home", "Home"), "AI moderation"},
		{"docs", pages.Page("docs", "Documentation"), constants.PageDocsQuickStart},
		{"pricing", pages.Pricing, "Most popular"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, constants.ContentTypeHTML, rec.Header().Get(constants.HeaderContentType))
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Contains(t, rec.Body.String(), "Sign in")
		})
	}
}

func TestPricing_CustomPlanHasNoDollarSign(t *testing.T) {
	pages, _, _ := setupPages(t)
	rec := httptest.NewRecorder()
	pages.Pricing(rec, httptest.NewRequest(http.MethodGet, constants.PagePricing, nil))

	body := rec.Body.String()
	assert.Contains(t, body, "$49")
	assert.Contains(t, body, "<strong>Custom</strong>")
}

func TestNotFound_RedirectsHome(t *testing.T) {
	pages, _, _ := setupPages(t)
	rec := httptest.NewRecorder()
	pages.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, constants.PageHome, rec.Header().Get("Location"))
}

func TestLogin_RequiresBothFields(t *testing.T) {
	pages, sessions, _ := setupPages(t)

	rec := httptest.NewRecorder()
	pages.Login(rec, postForm(constants.PageLogin, url.Values{"email": {"ada@example.com"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), constants.MsgFillAllFields)
	assert.Contains(t, rec.Body.String(), `value="ada@example.com"`)
	sessions.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	pages, sessions, _ := setupPages(t)
	sessions.On("SignIn", mock.Anything, "ada@example.com", "wrong").
		Return(nil, utils.NewUnauthorizedError("Invalid login credentials"))

	rec := httptest.NewRecorder()
	pages.Login(rec, postForm(constants.PageLogin, url.Values{"email": {"ada@example.com"}, "password": {"wrong"}}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), constants.MsgInvalidEmailOrPassword)
	assert.Nil(t, findCookie(rec, constants.SessionCookie))
}

func TestLogin_Success(t *testing.T) {
	s := &models.Session{ID: "sid-7", User: models.AuthUser{ID: "user-1"}}

	tests := []struct {
		name string
		from string
		want string
	}{
		{"default target", "", constants.PageDashboard},
		{"back to the page", constants.PageDashboardConfig, constants.PageDashboardConfig},
		{"external target ignored", "https://evil.example.com", constants.PageDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, sessions, _ := setupPages(t)
			sessions.On("SignIn", mock.Anything, "ada@example.com", "secret1").
				Return(models.NewAuthState(s, nil), nil)

			rec := httptest.NewRecorder()
			pages.Login(rec, postForm(constants.PageLogin, url.Values{
				"email":    {" ada@example.com "},
				"password": {"secret1"},
				"from":     {tt.from},
			}))

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
			c := findCookie(rec, constants.SessionCookie)
			require.NotNil(t, c)
			assert.Equal(t, "sid-7", c.Value)
		})
	}
}

func TestSignup_Validation(t *testing.T) {
	valid := url.Values{
		"first_name":       {"Ada"},
		"last_name":        {"Lovelace"},
		"email":            {"ada@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	}
	with := func(field, value string) url.Values {
		v := url.Values{}
		for k, vals := range valid {
			v[k] = append([]string{}, vals...)
		}
		v.Set(field, value)
		return v
	}

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing first name", with("first_name", " "), constants.MsgFirstNameRequired},
		{"missing last name", with("last_name", ""), constants.MsgLastNameRequired},
		{"missing email", with("email", ""), constants.MsgEmailRequired},
		{"email without at", with("email", "ada.example.com"), constants.MsgEmailInvalid},
		{"missing password", with("password", ""), constants.MsgPasswordRequired},
		{"short password", with("password", "abc"), constants.MsgPasswordTooShort},
		{"mismatch", with("confirm_password", "secret2"), constants.MsgPasswordsDontMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, sessions, _ := setupPages(t)

			rec := httptest.NewRecorder()
			pages.Signup(rec, postForm(constants.PageSignup, tt.form))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), html.EscapeString(tt.want))
			assert.NotContains(t, rec.Body.String(), "secret1")
			sessions.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
		})
	}
}

func TestSignup_ConfirmationFlow(t *testing.T) {
	pages, sessions, _ := setupPages(t)
	sessions.On("SignUp", mock.Anything, mock.MatchedBy(func(in session.SignUpInput) bool {
		return in.FirstName == "Ada" && in.Email == "ada@example.com" && in.CodeChallenge != ""
	})).Return(models.SignedOut(), nil)

	rec := httptest.NewRecorder()
	pages.Signup(rec, postForm(constants.PageSignup, url.Values{
		"first_name":       {"Ada"},
		"last_name":        {"Lovelace"},
		"email":            {"ada@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, constants.PageLogin, rec.Header().Get("Location"))
	assert.Nil(t, findCookie(rec, constants.SessionCookie))
	require.NotNil(t, findCookie(rec, constants.PKCEVerifierCookie))
	flash := findCookie(rec, constants.FlashCookie)
	require.NotNil(t, flash)

	req := httptest.NewRequest(http.MethodGet, constants.PageLogin, nil)
	req.AddCookie(flash)
	rec = httptest.NewRecorder()
	pages.LoginPage(rec, req)

	assert.Contains(t, rec.Body.String(), html.EscapeString(constants.MsgSignupSuccess))
	cleared := findCookie(rec, constants.FlashCookie)
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)
	sessions.AssertExpectations(t)
}

func TestSignup_DuplicateAccount(t *testing.T) {
	pages, sessions, _ := setupPages(t)
	sessions.On("SignUp", mock.Anything, mock.Anything).
		Return(nil, utils.NewDuplicateError("User", "email", "ada@example.com"))

	rec := httptest.NewRecorder()
	pages.Signup(rec, postForm(constants.PageSignup, url.Values{
		"first_name":       {"Ada"},
		"last_name":        {"Lovelace"},
		"email":            {"ada@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), html.EscapeString(constants.MsgAccountExists))
}

func TestSignup_ImmediateSession(t *testing.T) {
	pages, sessions, _ := setupPages(t)
	s := &models.Session{ID: "sid-7", User: models.AuthUser{ID: "user-1"}}
	sessions.On("SignUp", mock.Anything, mock.Anything).Return(models.NewAuthState(s, nil), nil)

	rec := httptest.NewRecorder()
	pages.Signup(rec, postForm(constants.PageSignup, url.Values{
		"first_name":       {"Ada"},
		"last_name":        {"Lovelace"},
		"email":            {"ada@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, constants.PageDashboard, rec.Header().Get("Location"))
	c := findCookie(rec, constants.SessionCookie)
	require.NotNil(t, c)
	assert.Equal(t, "sid-7", c.Value)
}

func TestAuthCallback(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		pages, sessions, _ := setupPages(t)
		s := &models.Session{ID: "sid-9", User: models.AuthUser{ID: "user-1"}}
		sessions.On("ExchangeCode", mock.Anything, "code-1", "verifier-1").Return(models.NewAuthState(s, nil), nil)

		req := httptest.NewRequest(http.MethodGet, constants.PageAuthCallback+"?code=code-1", nil)
		req.AddCookie(&http.Cookie{Name: constants.PKCEVerifierCookie, Value: "verifier-1"})
		rec := httptest.NewRecorder()
		pages.AuthCallback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, constants.PageDashboard, rec.Header().Get("Location"))
		c := findCookie(rec, constants.SessionCookie)
		require.NotNil(t, c)
		assert.Equal(t, "sid-9", c.Value)
	})

	t.Run("exchange fails", func(t *testing.T) {
		pages, sessions, _ := setupPages(t)
		sessions.On("ExchangeCode", mock.Anything, "code-1", "").Return(nil, errors.New("invalid grant"))

		rec := httptest.NewRecorder()
		pages.AuthCallback(rec, httptest.NewRequest(http.MethodGet, constants.PageAuthCallback+"?code=code-1", nil))

		assert.Equal(t, constants.PageLogin, rec.Header().Get("Location"))
		assert.Nil(t, findCookie(rec, constants.SessionCookie))
	})

	t.Run("no code", func(t *testing.T) {
		pages, sessions, _ := setupPages(t)

		rec := httptest.NewRecorder()
		pages.AuthCallback(rec, httptest.NewRequest(http.MethodGet, constants.PageAuthCallback, nil))

		assert.Equal(t, constants.PageLogin, rec.Header().Get("Location"))
		sessions.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogout(t *testing.T) {
	pages, sessions, _ := setupPages(t)
	sessions.On("SignOut", mock.Anything, "sid-1").Return(nil)

	req := httptest.NewRequest(http.MethodPost, constants.PageLogout, nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookie, Value: "sid-1"})
	rec := httptest.NewRecorder()
	pages.Logout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, constants.PageHome, rec.Header().Get("Location"))
	c := findCookie(rec, constants.SessionCookie)
	require.NotNil(t, c)
	assert.True(t, c.MaxAge < 0)
	sessions.AssertExpectations(t)
}

func TestOverview_ShowsDisplayName(t *testing.T) {
	pages, _, _ := setupPages(t)
	rec := httptest.NewRecorder()
	pages.Overview(rec, signedIn(httptest.NewRequest(http.MethodGet, constants.PageDashboardOverview, nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")
	assert.Contains(t, rec.Body.String(), "Bot Status")
}

func moderationForm(action string, postEnabled bool) url.Values {
	v := url.Values{
		"action":                              {action},
		constants.ColumnPostMaxWarnings:       {"5"},
		constants.ColumnPostPunishmentType:    {"ban"},
		constants.ColumnPostMuteDuration:      {"600"},
		constants.ColumnCommentMaxWarnings:    {"3"},
		constants.ColumnCommentPunishmentType: {"mute"},
		constants.ColumnCommentMuteDuration:   {"300"},
	}
	if postEnabled {
		v.Set(constants.ColumnPostModerationEnabled, "on")
	}
	return v
}

func TestModeration_UpdateStaysLocalUntilSave(t *testing.T) {
	pages, _, backends := setupPages(t)

	rec := httptest.NewRecorder()
	pages.UpdateModeration(rec, signedIn(postForm(constants.PageDashboardModeration, moderationForm(actionUpdate, false))))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, constants.PageDashboardModeration, rec.Header().Get("Location"))
	assert.Equal(t, 0, backends.moderation.saves)

	rec = httptest.NewRecorder()
	pages.Moderation(rec, signedIn(httptest.NewRequest(http.MethodGet, constants.PageDashboardModeration, nil)))
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="ban" selected>`)
	assert.NotContains(t, body, constants.MsgConfigSaved)

	rec = httptest.NewRecorder()
	pages.UpdateModeration(rec, signedIn(postForm(constants.PageDashboardModeration, moderationForm(actionSave, true))))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, backends.moderation.saves)
	assert.True(t, backends.moderation.stored.PostModerationEnabled)
	assert.Equal(t, "ban", backends.moderation.stored.PostPunishmentType)
	assert.Equal(t, 5, backends.moderation.stored.PostMaxWarnings)

	rec = httptest.NewRecorder()
	pages.Moderation(rec, signedIn(httptest.NewRequest(http.MethodGet, constants.PageDashboardModeration, nil)))
	assert.Contains(t, rec.Body.String(), constants.MsgConfigSaved)

	// the banner is shown once
	rec = httptest.NewRecorder()
	pages.Moderation(rec, signedIn(httptest.NewRequest(http.MethodGet, constants.PageDashboardModeration, nil)))
	assert.NotContains(t, rec.Body.String(), constants.MsgConfigSaved)
}

func TestModeration_Keywords(t *testing.T) {
	pages, _, backends := setupPages(t)

	rec := httptest.NewRecorder()
	pages.UpdateModeration(rec, signedIn(postForm(constants.PageDashboardModeration, url.Values{
		"action":  {actionAddKeyword},
		"keyword": {"  Spam  "},
	})))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = httptest.NewRecorder()
	pages.Moderation(rec, signedIn(httptest.NewRequest(http.MethodGet, constants.PageDashboardModeration, nil)))
	assert.Contains(t, rec.Body.String(), `value="spam"`)
	assert.Equal(t, 0, backends.moderation.saves)

	rec = httptest.NewRecorder()
	pages.UpdateModeration(rec, signedIn(postForm(constants.PageDashboardModeration, url.Values{
		"action":  {actionRemoveKeyword},
		"keyword": {"spam"},
	})))

	rec = httptest.NewRecorder()
	pages.Moderation(rec, signedIn(httptest.NewRequest(http.MethodGet, constants.PageDashboardModeration, nil)))
	assert.Contains(t, rec.Body.String(), "No banned keywords yet.")
}

func TestModeration_KeywordTooLongIsFlashed(t *testing.T) {
	pages, _, backends := setupPages(t)

	rec := httptest.NewRecorder()
	pages.UpdateModeration(rec, signedIn(postForm(constants.PageDashboardModeration, url.Values{
		"action":  {actionAddKeyword},
		"keyword": {strings.Repeat("x", constants.MaxKeywordLength+1)},
	})))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	flash := findCookie(rec, constants.FlashCookie)
	require.NotNil(t, flash)

	req := signedIn(httptest.NewRequest(http.MethodGet, constants.PageDashboardModeration, nil))
	req.AddCookie(flash)
	rec = httptest.NewRecorder()
	pages.Moderation(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, html.EscapeString(constants.MsgKeywordTooLong))
	assert.Contains(t, body, "No banned keywords yet.")
	assert.Equal(t, 0, backends.moderation.saves)
}

func TestModeration_InvalidNumberIsFlashed(t *testing.T) {
	pages, _, backends := setupPages(t)

	form := moderationForm(actionSave, true)
	form.Set(constants.ColumnPostMaxWarnings, "many")
	rec := httptest.NewRecorder()
	pages.UpdateModeration(rec, signedIn(postForm(constants.PageDashboardModeration, form)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotNil(t, findCookie(rec, constants.FlashCookie))
	assert.Equal(t, 0, backends.moderation.saves)
}

func TestConfig_SaveFailureShowsError(t *testing.T) {
	pages, _, backends := setupPages(t)
	backends.credentials.saveErr = utils.NewUpstreamError("Failed to save configuration", errors.New("503"))

	rec := httptest.NewRecorder()
	pages.UpdateConfig(rec, signedIn(postForm(constants.PageDashboardConfig, url.Values{
		"action":                      {actionSave},
		constants.ColumnAdminEmail:    {"admin@example.com"},
		constants.ColumnAdminPassword: {" pass word "},
		constants.ColumnCommunityURL:  {"https://www.skool.com/acme"},
	})))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, findCookie(rec, constants.FlashCookie))
	assert.Equal(t, 1, backends.credentials.saves)

	rec = httptest.NewRecorder()
	pages.Config(rec, signedIn(httptest.NewRequest(http.MethodGet, constants.PageDashboardConfig, nil)))
	body := rec.Body.String()
	assert.Contains(t, body, "Failed to save configuration")
	assert.Contains(t, body, `value="admin@example.com"`)
	assert.Contains(t, body, `value=" pass word "`)
}

func TestConfig_Save(t *testing.T) {
	pages, _, backends := setupPages(t)

	rec := httptest.NewRecorder()
	pages.UpdateConfig(rec, signedIn(postForm(constants.PageDashboardConfig, url.Values{
		"action":                      {actionSave},
		constants.ColumnAdminEmail:    {"admin@example.com"},
		constants.ColumnAdminPassword: {"pw"},
		constants.ColumnCommunityURL:  {"https://www.skool.com/acme"},
	})))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, models.CredentialsForm{
		AdminEmail:    "admin@example.com",
		AdminPassword: "pw",
		CommunityURL:  "https://www.skool.com/acme",
	}, backends.credentials.stored)
}

func TestDashboard_RequiresIdentity(t *testing.T) {
	pages, _, _ := setupPages(t)
	rec := httptest.NewRecorder()
	pages.Config(rec, httptest.NewRequest(http.MethodGet, constants.PageDashboardConfig, nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, constants.PageLogin, rec.Header().Get("Location"))
}
