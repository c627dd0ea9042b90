package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/database"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/supabase"
	"github.com/skout-hq/skout/internal/utils"
)

// ProfileRepository defines methods for interacting with user profiles.
// token is the user's access token; the PostgreSQL implementation ignores it.
type ProfileRepository interface {
	GetByID(ctx context.Context, token, id string) (*models.Profile, error)
	Create(ctx context.Context, token string, profile *models.Profile) error
	Update(ctx context.Context, token, id string, update *models.ProfileUpdate) error
}

// RESTProfileRepository stores profiles through the hosted rows API.
type RESTProfileRepository struct {
	client RowsClient
}

// NewRESTProfileRepository creates a ProfileRepository on the hosted rows API.
func NewRESTProfileRepository(client RowsClient) ProfileRepository {
	return &RESTProfileRepository{client: client}
}

// GetByID retrieves the profile row of a user.
func (r *RESTProfileRepository) GetByID(ctx context.Context, token, id string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := r.client.SelectSingle(ctx, token, constants.TableUsers, profile, supabase.Eq(constants.ColumnID, id))
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, utils.NewNotFoundError("Profile", id)
		}
		return nil, err
	}
	return profile, nil
}

// Create inserts a profile row.
func (r *RESTProfileRepository) Create(ctx context.Context, token string, profile *models.Profile) error {
	if err := r.client.Insert(ctx, token, constants.TableUsers, profile, nil); err != nil {
		return err
	}

	log.Info().
		Str(constants.UserIDContextKey, profile.ID).
		Msg("Profile created")
	return nil
}

// Update writes the non-nil fields of update.
func (r *RESTProfileRepository) Update(ctx context.Context, token, id string, update *models.ProfileUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	fields := withUpdatedAt(update.Fields(), time.Now())
	return r.client.Update(ctx, token, constants.TableUsers, fields, supabase.Eq(constants.ColumnID, id))
}

// PostgresProfileRepository stores profiles in PostgreSQL.
type PostgresProfileRepository struct {
	db   database.SQLDatabase
	crud *database.CRUD
}

// NewPostgresProfileRepository creates a ProfileRepository on a database pool.
func NewPostgresProfileRepository(db database.SQLDatabase) ProfileRepository {
	return &PostgresProfileRepository{db: db, crud: database.NewCRUD(db)}
}

// GetByID retrieves the profile row of a user.
func (r *PostgresProfileRepository) GetByID(ctx context.Context, _ string, id string) (*models.Profile, error) {
	startTime := time.Now()

	query := `
        SELECT id, first_name, last_name, email, created_at, updated_at
        FROM users
        WHERE id = $1
    `

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.FirstName,
		&profile.LastName,
		&profile.Email,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	utils.LogDBQuery(query, []interface{}{id}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Profile", id)
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}

	return profile, nil
}

// Create inserts a profile row.
func (r *PostgresProfileRepository) Create(ctx context.Context, _ string, profile *models.Profile) error {
	if err := r.crud.Insert(ctx, profile); err != nil {
		if utils.IsDuplicateError(utils.ParseError(err)) {
			return utils.NewDuplicateError("Profile", constants.ColumnID, profile.ID)
		}
		return err
	}

	log.Info().
		Str(constants.UserIDContextKey, profile.ID).
		Msg("Profile created")
	return nil
}

// Update writes the non-nil fields of update.
func (r *PostgresProfileRepository) Update(ctx context.Context, _ string, id string, update *models.ProfileUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	fields := withUpdatedAt(update.Fields(), time.Now())
	affected, err := r.crud.UpdateColumns(ctx, constants.TableUsers, fields, constants.ColumnID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return utils.NewNotFoundError("Profile", id)
	}
	return nil
}
