package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/supabase"
	"github.com/skout-hq/skout/internal/utils"
)

func TestRESTMonitorConfigRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("No row maps to NotFound", func(t *testing.T) {
		client := new(MockRowsClient)
		client.On("SelectSingle", ctx, "tok", "monitor_config", mock.Anything, []supabase.Filter{supabase.Eq("user_id", "u1")}).
			Return(noRows)

		_, err := NewRESTMonitorConfigRepository(client).GetByUserID(ctx, "tok", "u1")
		assert.True(t, utils.IsNotFoundError(err))
		client.AssertExpectations(t)
	})

	t.Run("Create returns representation into the row", func(t *testing.T) {
		client := new(MockRowsClient)
		cfg := models.NewMonitorConfig("u1")
		client.On("Insert", ctx, "tok", "monitor_config", cfg, cfg).Return(nil)

		require.NoError(t, NewRESTMonitorConfigRepository(client).Create(ctx, "tok", cfg))
		client.AssertExpectations(t)
	})

	t.Run("UpdateFields writes exactly the given columns plus updated_at", func(t *testing.T) {
		client := new(MockRowsClient)
		fields := models.CredentialsForm{AdminEmail: "mod@example.com"}.Fields()

		client.On("Update", ctx, "tok", "monitor_config", mock.MatchedBy(func(values map[string]interface{}) bool {
			return len(values) == 4 &&
				values["admin_email"] == "mod@example.com" &&
				values["updated_at"] != nil
		}), []supabase.Filter{supabase.Eq("user_id", "u1")}).Return(nil)

		require.NoError(t, NewRESTMonitorConfigRepository(client).UpdateFields(ctx, "tok", "u1", fields))
		assert.Len(t, fields, 3, "the caller's map is not modified")
		client.AssertExpectations(t)
	})
}

var monitorConfigColumns = []string{
	"user_id", "admin_email", "admin_password", "community_url",
	"post_moderation_enabled", "post_max_warnings", "post_punishment_type", "post_mute_duration",
	"comment_moderation_enabled", "comment_max_warnings", "comment_punishment_type", "comment_mute_duration",
	"banned_keywords", "spam_protection_enabled", "ignore_admins",
	"created_at", "updated_at",
}

func TestPostgresMonitorConfigRepository_GetByUserID(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("FROM monitor_config")

	t.Run("Row with null moderation columns", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(monitorConfigColumns).AddRow(
				"u1", "mod@example.com", "pw", nil,
				true, nil, "ban", nil,
				nil, nil, nil, nil,
				"{spam,scam}", nil, false,
				nil, nil,
			))

		cfg, err := NewPostgresMonitorConfigRepository(db).GetByUserID(ctx, "", "u1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())

		assert.Equal(t, models.CredentialsForm{AdminEmail: "mod@example.com", AdminPassword: "pw"}, cfg.Credentials())

		moderation := cfg.Moderation()
		assert.True(t, moderation.PostModerationEnabled)
		assert.Equal(t, 3, moderation.PostMaxWarnings)
		assert.Equal(t, "ban", moderation.PostPunishmentType)
		assert.Equal(t, "mute", moderation.CommentPunishmentType)
		assert.Equal(t, []string{"spam", "scam"}, moderation.BannedKeywords)
		assert.True(t, moderation.SpamProtectionEnabled)
		assert.False(t, moderation.IgnoreAdmins)
	})

	t.Run("No row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).WithArgs("u1").WillReturnRows(sqlmock.NewRows(monitorConfigColumns))

		_, err := NewPostgresMonitorConfigRepository(db).GetByUserID(ctx, "", "u1")
		assert.True(t, utils.IsNotFoundError(err))
	})

	t.Run("Query error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("timeout"))

		_, err := NewPostgresMonitorConfigRepository(db).GetByUserID(ctx, "", "u1")
		require.Error(t, err)
		assert.False(t, utils.IsNotFoundError(err))
	})
}

func TestPostgresMonitorConfigRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	cfg := models.NewMonitorConfig("u1")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monitor_config (user_id, admin_email, admin_password, community_url, post_moderation_enabled")).
		WithArgs("u1", "", "", "",
			false, int64(3), "mute", int64(3600),
			false, int64(3), "mute", int64(3600),
			"{}", true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresMonitorConfigRepository(db).Create(context.Background(), "", cfg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMonitorConfigRepository_UpdateFields(t *testing.T) {
	ctx := context.Background()
	settings := models.DefaultModerationSettings()
	settings.BannedKeywords = []string{"spam"}

	t.Run("Writes moderation columns", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE monitor_config SET banned_keywords = $1, comment_max_warnings = $2")).
			WithArgs(`{"spam"}`, 3, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgresMonitorConfigRepository(db).UpdateFields(ctx, "", "u1", settings.Fields()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE monitor_config").WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgresMonitorConfigRepository(db).UpdateFields(ctx, "", "u1", settings.Fields())
		assert.True(t, utils.IsNotFoundError(err))
	})
}
