package auth

import (
	"context"

	"github.com/skout-hq/skout/internal/models"
)

// TokenVerifier validates bearer access tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*Claims, error)
}

// UserFetcher looks up the user an access token belongs to on the hosted
// auth service.
type UserFetcher interface {
	GetUser(ctx context.Context, accessToken string) (*models.AuthUser, error)
}

// SessionResolver loads the server-side session behind a session cookie.
type SessionResolver interface {
	Resolve(ctx context.Context, sid string) (*models.Session, error)
}

var (
	_ TokenVerifier = (*TokenValidator)(nil)
	_ TokenVerifier = (*RemoteVerifier)(nil)
)
