package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/database"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/supabase"
	"github.com/skout-hq/skout/internal/utils"
)

// MonitorConfigRepository defines methods for interacting with monitor configuration rows.
type MonitorConfigRepository interface {
	// GetByUserID returns a NotFound AppError when the user has no row yet.
	GetByUserID(ctx context.Context, token, userID string) (*models.MonitorConfig, error)
	Create(ctx context.Context, token string, cfg *models.MonitorConfig) error
	// UpdateFields writes exactly fields plus updated_at.
	UpdateFields(ctx context.Context, token, userID string, fields map[string]interface{}) error
}

// RESTMonitorConfigRepository stores monitor configuration through the hosted rows API.
type RESTMonitorConfigRepository struct {
	client RowsClient
}

// NewRESTMonitorConfigRepository creates a MonitorConfigRepository on the hosted rows API.
func NewRESTMonitorConfigRepository(client RowsClient) MonitorConfigRepository {
	return &RESTMonitorConfigRepository{client: client}
}

// GetByUserID retrieves the monitor configuration of a user.
func (r *RESTMonitorConfigRepository) GetByUserID(ctx context.Context, token, userID string) (*models.MonitorConfig, error) {
	cfg := &models.MonitorConfig{}
	err := r.client.SelectSingle(ctx, token, constants.TableMonitorConfig, cfg, supabase.Eq(constants.ColumnUserID, userID))
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, utils.NewNotFoundError("MonitorConfig", userID)
		}
		return nil, err
	}
	return cfg, nil
}

// Create inserts cfg and refreshes it with the stored row.
func (r *RESTMonitorConfigRepository) Create(ctx context.Context, token string, cfg *models.MonitorConfig) error {
	if err := r.client.Insert(ctx, token, constants.TableMonitorConfig, cfg, cfg); err != nil {
		return err
	}

	log.Info().
		Str(constants.UserIDContextKey, cfg.UserID).
		Msg("Monitor config created")
	return nil
}

// UpdateFields writes exactly fields plus updated_at.
func (r *RESTMonitorConfigRepository) UpdateFields(ctx context.Context, token, userID string, fields map[string]interface{}) error {
	values := withUpdatedAt(fields, time.Now())
	return r.client.Update(ctx, token, constants.TableMonitorConfig, values, supabase.Eq(constants.ColumnUserID, userID))
}

// PostgresMonitorConfigRepository stores monitor configuration in PostgreSQL.
type PostgresMonitorConfigRepository struct {
	db   database.SQLDatabase
	crud *database.CRUD
}

// NewPostgresMonitorConfigRepository creates a MonitorConfigRepository on a database pool.
func NewPostgresMonitorConfigRepository(db database.SQLDatabase) MonitorConfigRepository {
	return &PostgresMonitorConfigRepository{db: db, crud: database.NewCRUD(db)}
}

// GetByUserID retrieves the monitor configuration of a user.
func (r *PostgresMonitorConfigRepository) GetByUserID(ctx context.Context, _ string, userID string) (*models.MonitorConfig, error) {
	startTime := time.Now()

	query := `
        SELECT user_id, admin_email, admin_password, community_url,
               post_moderation_enabled, post_max_warnings, post_punishment_type, post_mute_duration,
               comment_moderation_enabled, comment_max_warnings, comment_punishment_type, comment_mute_duration,
               banned_keywords, spam_protection_enabled, ignore_admins,
               created_at, updated_at
        FROM monitor_config
        WHERE user_id = $1
    `

	cfg := &models.MonitorConfig{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cfg.UserID,
		&cfg.AdminEmail,
		&cfg.AdminPassword,
		&cfg.CommunityURL,
		&cfg.PostModerationEnabled,
		&cfg.PostMaxWarnings,
		&cfg.PostPunishmentType,
		&cfg.PostMuteDuration,
		&cfg.CommentModerationEnabled,
		&cfg.CommentMaxWarnings,
		&cfg.CommentPunishmentType,
		&cfg.CommentMuteDuration,
		pq.Array(&cfg.BannedKeywords),
		&cfg.SpamProtectionEnabled,
		&cfg.IgnoreAdmins,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	utils.LogDBQuery(query, []interface{}{userID}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("MonitorConfig", userID)
		}
		return nil, fmt.Errorf("failed to get monitor config by user ID: %w", err)
	}

	return cfg, nil
}

// Create inserts cfg.
func (r *PostgresMonitorConfigRepository) Create(ctx context.Context, _ string, cfg *models.MonitorConfig) error {
	if err := r.crud.Insert(ctx, cfg); err != nil {
		if utils.IsDuplicateError(utils.ParseError(err)) {
			return utils.NewDuplicateError("MonitorConfig", constants.ColumnUserID, cfg.UserID)
		}
		return err
	}

	log.Info().
		Str(constants.UserIDContextKey, cfg.UserID).
		Msg("Monitor config created")
	return nil
}

// UpdateFields writes exactly fields plus updated_at.
func (r *PostgresMonitorConfigRepository) UpdateFields(ctx context.Context, _ string, userID string, fields map[string]interface{}) error {
	values := withUpdatedAt(fields, time.Now())
	affected, err := r.crud.UpdateColumns(ctx, constants.TableMonitorConfig, values, constants.ColumnUserID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return utils.NewNotFoundError("MonitorConfig", userID)
	}
	return nil
}
