package handlers

import (
	"context"

	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/session"
)

// SessionManager defines the session lifecycle used by the auth and profile handlers.
type SessionManager interface {
	Bootstrap(ctx context.Context, sid string) (*models.AuthState, error)
	SignUp(ctx context.Context, in session.SignUpInput) (*models.AuthState, error)
	SignIn(ctx context.Context, email, password string) (*models.AuthState, error)
	SignOut(ctx context.Context, sid string) error
	Refresh(ctx context.Context, sid string) (*models.Session, error)
	UpdateProfile(ctx context.Context, sid string, update *models.ProfileUpdate) (*models.Profile, error)
	Subscribe(ctx context.Context, sid string) *session.Subscription
}

var _ SessionManager = (*session.Manager)(nil)
