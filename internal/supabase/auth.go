package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/skout-hq/skout/internal/models"
)

// Grant types accepted by the token endpoint.
const (
	grantPassword     = "password"
	grantRefreshToken = "refresh_token"
	grantPKCE         = "pkce"
)

// Tokens is an issued auth session before it is given a server-side id.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         models.AuthUser
}

// SignUpOptions carries the optional parts of a sign-up.
type SignUpOptions struct {
	// Metadata is stored as the user's user_metadata.
	Metadata map[string]interface{}

	// RedirectTo is where the confirmation link sends the user.
	RedirectTo string

	// CodeChallenge turns the confirmation link into a PKCE code flow.
	CodeChallenge string
}

// SignUpResult holds the created user and, when email confirmation is
// disabled on the project, the session that was opened right away.
type SignUpResult struct {
	User   models.AuthUser
	Tokens *Tokens
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	ExpiresAt    int64           `json:"expires_at"`
	RefreshToken string          `json:"refresh_token"`
	User         models.AuthUser `json:"user"`
}

func (t *tokenResponse) tokens(now time.Time) *Tokens {
	expiresAt := now.Add(time.Duration(t.ExpiresIn) * time.Second)
	if t.ExpiresAt > 0 {
		expiresAt = time.Unix(t.ExpiresAt, 0)
	}
	return &Tokens{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         t.User,
	}
}

// SignUp registers a new user with email and password.
func (c *Client) SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*SignUpResult, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if len(opts.Metadata) > 0 {
		body["data"] = opts.Metadata
	}
	if opts.CodeChallenge != "" {
		body["code_challenge"] = opts.CodeChallenge
		body["code_challenge_method"] = "s256"
	}

	var query url.Values
	if opts.RedirectTo != "" {
		query = url.Values{"redirect_to": {opts.RedirectTo}}
	}

	var raw json.RawMessage
	err := c.do(ctx, request{
		operation: "auth_signup",
		method:    http.MethodPost,
		path:      authPrefix + "/signup",
		query:     query,
		body:      body,
	}, &raw)
	if err != nil {
		return nil, err
	}

	// With confirmation enabled the body is the user itself, otherwise a session.
	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken != "" {
		return &SignUpResult{User: tr.User, Tokens: tr.tokens(time.Now())}, nil
	}

	var user models.AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &SignUpResult{User: user}, nil
}

// SignInWithPassword opens a session with email and password.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Tokens, error) {
	return c.token(ctx, "auth_signin", grantPassword, map[string]string{
		"email":    email,
		"password": password,
	})
}

// RefreshSession exchanges a refresh token for a new token pair. The old
// refresh token is rotated away.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Tokens, error) {
	return c.token(ctx, "auth_refresh", grantRefreshToken, map[string]string{
		"refresh_token": refreshToken,
	})
}

// ExchangeCodeForSession completes a PKCE flow started by SignUp.
func (c *Client) ExchangeCodeForSession(ctx context.Context, authCode, codeVerifier string) (*Tokens, error) {
	return c.token(ctx, "auth_exchange_code", grantPKCE, map[string]string{
		"auth_code":     authCode,
		"code_verifier": codeVerifier,
	})
}

func (c *Client) token(ctx context.Context, operation, grantType string, body map[string]string) (*Tokens, error) {
	var tr tokenResponse
	err := c.do(ctx, request{
		operation: operation,
		method:    http.MethodPost,
		path:      authPrefix + "/token",
		query:     url.Values{"grant_type": {grantType}},
		body:      body,
	}, &tr)
	if err != nil {
		return nil, err
	}
	return tr.tokens(time.Now()), nil
}

// GetUser returns the user an access token belongs to.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*models.AuthUser, error) {
	var user models.AuthUser
	err := c.do(ctx, request{
		operation: "auth_get_user",
		method:    http.MethodGet,
		path:      authPrefix + "/user",
		token:     accessToken,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the refresh tokens of the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, request{
		operation: "auth_signout",
		method:    http.MethodPost,
		path:      authPrefix + "/logout",
		token:     accessToken,
	}, nil)
}
