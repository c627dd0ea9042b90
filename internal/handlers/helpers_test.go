package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/models"
)

// envelope mirrors utils.Response with the data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newJSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	return req
}

func withCookie(req *http.Request, sid string) *http.Request {
	req.AddCookie(&http.Cookie{Name: constants.SessionCookie, Value: sid})
	return req
}

// testSession is the cookie session used across handler tests.
func testSession() *models.Session {
	return &models.Session{
		ID:          "sid-1",
		AccessToken: "access-1",
		User:        models.AuthUser{ID: "user-1", Email: "ada@example.com"},
	}
}

// asCookieUser attaches the identity SessionAuth would build for testSession.
func asCookieUser(req *http.Request) *http.Request {
	s := testSession()
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{
		UserID:      s.User.ID,
		Email:       s.User.Email,
		SessionID:   s.ID,
		AccessToken: s.AccessToken,
		Session:     s,
	}))
}

// asBearerUser attaches the identity of an API client with a bearer token.
func asBearerUser(req *http.Request) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{
		UserID:      "user-1",
		Email:       "ada@example.com",
		SessionID:   "hosted-1",
		AccessToken: "bearer-token",
	}))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookie {
			return c
		}
	}
	return nil
}
