package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/skout-hq/skout/internal/constants"
)

// createUsersTable creates the users (profile) table. The id is the hosted
// auth user id.
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   constants.TableUsers,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS users (
					id UUID PRIMARY KEY,
					email VARCHAR(255) NOT NULL,
					first_name VARCHAR(100) NOT NULL DEFAULT '',
					last_name VARCHAR(100) NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createMonitorConfigTable creates the monitor_config table with the
// credential columns. One row per user.
func createMonitorConfigTable() Migration {
	return Migration{
		Name:        "create_monitor_config_table",
		Description: "Creates the monitor_config table",
		TableName:   constants.TableMonitorConfig,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS monitor_config (
					user_id UUID PRIMARY KEY,
					admin_email VARCHAR(255),
					admin_password TEXT,
					community_url TEXT,
					created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT fk_monitor_config_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// moderationColumns are added separately because older monitor_config
// tables were created without them. Existing rows keep NULLs there.
var moderationColumns = []struct {
	name       string
	definition string
}{
	{constants.ColumnPostModerationEnabled, "BOOLEAN DEFAULT FALSE"},
	{constants.ColumnPostMaxWarnings, "INTEGER DEFAULT 3"},
	{constants.ColumnPostPunishmentType, "VARCHAR(10) DEFAULT 'mute'"},
	{constants.ColumnPostMuteDuration, "INTEGER DEFAULT 3600"},
	{constants.ColumnCommentModeration, "BOOLEAN DEFAULT FALSE"},
	{constants.ColumnCommentMaxWarnings, "INTEGER DEFAULT 3"},
	{constants.ColumnCommentPunishmentType, "VARCHAR(10) DEFAULT 'mute'"},
	{constants.ColumnCommentMuteDuration, "INTEGER DEFAULT 3600"},
	{constants.ColumnBannedKeywords, "TEXT[] DEFAULT '{}'"},
	{constants.ColumnSpamProtection, "BOOLEAN DEFAULT TRUE"},
	{constants.ColumnIgnoreAdmins, "BOOLEAN DEFAULT TRUE"},
}

// addModerationColumns adds the moderation settings to monitor_config.
func addModerationColumns() Migration {
	return Migration{
		Name:        "add_monitor_config_moderation_columns",
		Description: "Adds moderation settings columns to monitor_config",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			clauses := make([]string, 0, len(moderationColumns))
			for _, c := range moderationColumns {
				clauses = append(clauses, fmt.Sprintf("ADD COLUMN IF NOT EXISTS %s %s", c.name, c.definition))
			}
			query := fmt.Sprintf("ALTER TABLE %s %s", constants.TableMonitorConfig, strings.Join(clauses, ", "))
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}
