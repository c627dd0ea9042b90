package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skout-hq/skout/internal/config"
	"github.com/skout-hq/skout/internal/utils"
)

const testAnonKey = "anon-key"

// newTestClient starts a fake hosted backend served by handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.SupabaseSettings{
		URL:     srv.URL + "/",
		AnonKey: testAnonKey,
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func decodeBody(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestNewClient(t *testing.T) {
	t.Run("Invalid URL", func(t *testing.T) {
		_, err := NewClient(config.SupabaseSettings{URL: "not a url", AnonKey: "k"})
		assert.Error(t, err)
	})

	t.Run("Missing anon key", func(t *testing.T) {
		_, err := NewClient(config.SupabaseSettings{URL: "https://project.example.com"})
		assert.Error(t, err)
	})

	t.Run("Default timeout", func(t *testing.T) {
		client, err := NewClient(config.SupabaseSettings{URL: "https://project.example.com/", AnonKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, "https://project.example.com", client.BaseURL)
		assert.Equal(t, 10*time.Second, client.HTTPClient.Timeout)
	})
}

func TestSignInWithPassword(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
		assert.Equal(t, "Bearer "+testAnonKey, r.Header.Get("Authorization"))

		body := decodeBody(t, r)
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, "secret1", body["password"])

		writeJSON(w, http.StatusOK, `{
			"access_token": "at",
			"token_type": "bearer",
			"expires_in": 3600,
			"expires_at": 1893456000,
			"refresh_token": "rt",
			"user": {"id": "u1", "email": "ada@example.com"}
		}`)
	})

	tokens, err := client.SignInWithPassword(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "at", tokens.AccessToken)
	assert.Equal(t, "rt", tokens.RefreshToken)
	assert.Equal(t, time.Unix(1893456000, 0), tokens.ExpiresAt)
	assert.Equal(t, "u1", tokens.User.ID)
}

func TestSignInWithPassword_InvalidCredentials(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"Older error shape", `{"error":"invalid_grant","error_description":"Invalid login credentials"}`},
		{"Newer error shape", `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, tc.body)
			})

			_, err := client.SignInWithPassword(context.Background(), "ada@example.com", "wrong")
			require.Error(t, err)
			assert.True(t, IsInvalidCredentials(err))
			assert.Equal(t, "Invalid login credentials", err.Error())

			appErr := utils.ParseError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		})
	}
}

func TestSignUp(t *testing.T) {
	t.Run("Confirmation required", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)
			assert.Equal(t, "https://app.example.com/auth/callback", r.URL.Query().Get("redirect_to"))

			body := decodeBody(t, r)
			data := body["data"].(map[string]interface{})
			assert.Equal(t, "Ada", data["first_name"])
			assert.Equal(t, "challenge", body["code_challenge"])
			assert.Equal(t, "s256", body["code_challenge_method"])

			writeJSON(w, http.StatusOK, `{"id":"u1","email":"ada@example.com","user_metadata":{"first_name":"Ada"}}`)
		})

		res, err := client.SignUp(context.Background(), "ada@example.com", "secret1", SignUpOptions{
			Metadata:      map[string]interface{}{"first_name": "Ada", "last_name": "Lovelace"},
			RedirectTo:    "https://app.example.com/auth/callback",
			CodeChallenge: "challenge",
		})
		require.NoError(t, err)
		assert.Equal(t, "u1", res.User.ID)
		assert.Equal(t, "Ada", res.User.UserMetadata["first_name"])
		assert.Nil(t, res.Tokens)
	})

	t.Run("Auto-confirmed project", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"access_token":"at","refresh_token":"rt","expires_in":3600,"user":{"id":"u1"}}`)
		})

		before := time.Now()
		res, err := client.SignUp(context.Background(), "ada@example.com", "secret1", SignUpOptions{})
		require.NoError(t, err)
		require.NotNil(t, res.Tokens)
		assert.Equal(t, "u1", res.User.ID)
		assert.WithinDuration(t, before.Add(time.Hour), res.Tokens.ExpiresAt, 5*time.Second)
	})

	t.Run("Email already registered", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`)
		})

		_, err := client.SignUp(context.Background(), "ada@example.com", "secret1", SignUpOptions{})
		require.Error(t, err)
		assert.True(t, IsUserExists(err))
		assert.False(t, IsInvalidCredentials(err))
	})
}

func TestRefreshSession(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "rt-old", decodeBody(t, r)["refresh_token"])
			writeJSON(w, http.StatusOK, `{"access_token":"at2","refresh_token":"rt-new","expires_in":3600,"user":{"id":"u1"}}`)
		})

		tokens, err := client.RefreshSession(context.Background(), "rt-old")
		require.NoError(t, err)
		assert.Equal(t, "rt-new", tokens.RefreshToken)
	})

	t.Run("Revoked token", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"code":400,"error_code":"refresh_token_not_found","msg":"Invalid Refresh Token: Refresh Token Not Found"}`)
		})

		_, err := client.RefreshSession(context.Background(), "rt-old")
		assert.True(t, IsRefreshRejected(err))
	})
}

func TestExchangeCodeForSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		body := decodeBody(t, r)
		assert.Equal(t, "code-1", body["auth_code"])
		assert.Equal(t, "verifier-1", body["code_verifier"])
		writeJSON(w, http.StatusOK, `{"access_token":"at","refresh_token":"rt","expires_in":3600,"user":{"id":"u1"}}`)
	})

	tokens, err := client.ExchangeCodeForSession(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "at", tokens.AccessToken)
}

func TestGetUserAndSignOut(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))

		switch r.URL.Path {
		case "/auth/v1/user":
			writeJSON(w, http.StatusOK, `{"id":"u1","email":"ada@example.com"}`)
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	user, err := client.GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	assert.NoError(t, client.SignOut(context.Background(), "user-token"))
}

func TestSelectSingle(t *testing.T) {
	t.Run("Row found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/users", r.URL.Path)
			assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
			assert.Equal(t, "*", r.URL.Query().Get("select"))
			assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"id":"u1","first_name":"Ada"}`)
		})

		var row map[string]interface{}
		err := client.SelectSingle(context.Background(), "user-token", "users", &row, Eq("id", "u1"))
		require.NoError(t, err)
		assert.Equal(t, "Ada", row["first_name"])
	})

	t.Run("No rows", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotAcceptable, `{"code":"PGRST116","details":"The result contains 0 rows","hint":null,"message":"JSON object requested, multiple (or no) rows returned"}`)
		})

		var row map[string]interface{}
		err := client.SelectSingle(context.Background(), "user-token", "monitor_config", &row, Eq("user_id", "u1"))
		require.Error(t, err)
		assert.True(t, IsNoRows(err))
		assert.True(t, utils.IsNotFoundError(utils.ParseError(err)))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "The result contains 0 rows", apiErr.Details)
	})
}

func TestInsertAndUpdate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
			body := decodeBody(t, r)
			assert.Equal(t, "u1", body["user_id"])
			writeJSON(w, http.StatusCreated, `{"user_id":"u1","admin_email":""}`)
		case http.MethodPatch:
			assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
			assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
			body := decodeBody(t, r)
			assert.Equal(t, "mod@example.com", body["admin_email"])
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	var inserted map[string]interface{}
	err := client.Insert(context.Background(), "user-token", "monitor_config", map[string]interface{}{"user_id": "u1"}, &inserted)
	require.NoError(t, err)
	assert.Equal(t, "u1", inserted["user_id"])

	err = client.Update(context.Background(), "user-token", "monitor_config",
		map[string]interface{}{"admin_email": "mod@example.com"}, Eq("user_id", "u1"))
	assert.NoError(t, err)
}

func TestParseAPIError(t *testing.T) {
	t.Run("Non JSON body", func(t *testing.T) {
		apiErr := parseAPIError(http.StatusBadGateway, []byte("upstream down"))
		assert.Equal(t, "upstream down", apiErr.Message)
		assert.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus())
		assert.Equal(t, http.StatusBadGateway, utils.ParseError(apiErr).StatusCode)
	})

	t.Run("Long HTML body is truncated", func(t *testing.T) {
		body := "<html>" + strings.Repeat("x", 500) + "</html>"
		apiErr := parseAPIError(http.StatusBadGateway, []byte(body))
		assert.Len(t, apiErr.Message, maxRawErrorLen)
		assert.True(t, strings.HasSuffix(apiErr.Message, "..."))
	})

	t.Run("Empty body", func(t *testing.T) {
		apiErr := parseAPIError(http.StatusInternalServerError, nil)
		assert.Equal(t, "Internal Server Error", apiErr.Error())
	})

	t.Run("Rows API error", func(t *testing.T) {
		apiErr := parseAPIError(http.StatusForbidden, []byte(`{"code":"42501","message":"permission denied for table monitor_config","hint":"check policies"}`))
		assert.Equal(t, "42501", apiErr.Code)
		assert.Equal(t, "check policies", apiErr.Hint)
		assert.Equal(t, "permission denied for table monitor_config", apiErr.Error())
	})
}

func TestPKCE(t *testing.T) {
	verifier, challenge, err := NewPKCE()
	require.NoError(t, err)
	assert.Len(t, verifier, 43)
	assert.Equal(t, Challenge(verifier), challenge)

	assert.Equal(t, "9oEToJBVZSXksSjpg3FMKQqxvU2laBwUnR8uvfANa3Q", Challenge("skout-verifier"))
}
