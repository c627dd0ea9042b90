package handlers

import (
	"context"

	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/repository"
)

// ProfileStore defines the profile row operations used by ProfileHandler.
type ProfileStore interface {
	GetByID(ctx context.Context, token, id string) (*models.Profile, error)
	Update(ctx context.Context, token, id string, update *models.ProfileUpdate) error
}

var _ ProfileStore = (repository.ProfileRepository)(nil)
