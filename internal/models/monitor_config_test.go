package models_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/utils"
)

func TestNewMonitorConfig(t *testing.T) {
	cfg := models.NewMonitorConfig("u1")

	assert.Equal(t, "u1", cfg.UserID)
	assert.Equal(t, "monitor_config", cfg.TableName())
	assert.Equal(t, models.CredentialsForm{}, cfg.Credentials())
	assert.Equal(t, models.DefaultModerationSettings(), cfg.Moderation())
}

func TestDefaultModerationSettings(t *testing.T) {
	d := models.DefaultModerationSettings()

	assert.False(t, d.PostModerationEnabled)
	assert.False(t, d.CommentModerationEnabled)
	assert.Equal(t, 3, d.PostMaxWarnings)
	assert.Equal(t, 3, d.CommentMaxWarnings)
	assert.Equal(t, "mute", d.PostPunishmentType)
	assert.Equal(t, "mute", d.CommentPunishmentType)
	assert.Equal(t, 3600, d.PostMuteDuration)
	assert.Equal(t, 3600, d.CommentMuteDuration)
	assert.NotNil(t, d.BannedKeywords)
	assert.Empty(t, d.BannedKeywords)
	assert.True(t, d.SpamProtectionEnabled)
	assert.True(t, d.IgnoreAdmins)
}

func TestMonitorConfig_ModerationNullDefaults(t *testing.T) {
	// A row written before the moderation columns existed
	raw := `{
		"user_id": "u1",
		"admin_email": "mod@example.com",
		"admin_password": null,
		"community_url": "https://forum.example.com",
		"post_moderation_enabled": true,
		"post_max_warnings": null,
		"post_punishment_type": "ban",
		"banned_keywords": null,
		"ignore_admins": false
	}`

	var cfg models.MonitorConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))

	creds := cfg.Credentials()
	assert.Equal(t, "mod@example.com", creds.AdminEmail)
	assert.Equal(t, "", creds.AdminPassword)
	assert.Equal(t, "https://forum.example.com", creds.CommunityURL)

	mod := cfg.Moderation()
	assert.True(t, mod.PostModerationEnabled)
	assert.Equal(t, 3, mod.PostMaxWarnings)
	assert.Equal(t, "ban", mod.PostPunishmentType)
	assert.Equal(t, 3600, mod.PostMuteDuration)
	assert.False(t, mod.CommentModerationEnabled)
	assert.Equal(t, "mute", mod.CommentPunishmentType)
	assert.Equal(t, []string{}, mod.BannedKeywords)
	assert.True(t, mod.SpamProtectionEnabled)
	assert.False(t, mod.IgnoreAdmins)
}

func TestMonitorConfig_SetModeration(t *testing.T) {
	cfg := &models.MonitorConfig{UserID: "u1"}
	settings := models.DefaultModerationSettings()
	settings.CommentMaxWarnings = 5
	settings.BannedKeywords = []string{"spam"}

	cfg.SetModeration(settings)

	// Mutating the source must not leak into the row
	settings.BannedKeywords[0] = "changed"
	settings.CommentMaxWarnings = 9

	got := cfg.Moderation()
	assert.Equal(t, 5, got.CommentMaxWarnings)
	assert.Equal(t, []string{"spam"}, got.BannedKeywords)
}

func TestCredentialsForm_Fields(t *testing.T) {
	form := models.CredentialsForm{
		AdminEmail:    "mod@example.com",
		AdminPassword: "hunter2",
		CommunityURL:  "https://forum.example.com",
	}

	fields := form.Fields()
	assert.Equal(t, map[string]interface{}{
		"admin_email":    "mod@example.com",
		"admin_password": "hunter2",
		"community_url":  "https://forum.example.com",
	}, fields)
}

func TestCredentialsPatch_Apply(t *testing.T) {
	form := models.CredentialsForm{AdminEmail: "old@example.com", AdminPassword: "pw"}
	email := "new@example.com"
	patch := &models.CredentialsPatch{AdminEmail: &email}

	patch.Apply(&form)

	assert.Equal(t, "new@example.com", form.AdminEmail)
	assert.Equal(t, "pw", form.AdminPassword, "untouched fields are kept")
}

func TestModerationSettings_Fields(t *testing.T) {
	settings := models.DefaultModerationSettings()
	settings.BannedKeywords = nil

	fields := settings.Fields()

	assert.Len(t, fields, 11)
	assert.Equal(t, []string{}, fields["banned_keywords"], "nil keywords are written as an empty array")
	assert.Equal(t, true, fields["spam_protection_enabled"])
	assert.Equal(t, false, fields["comment_moderation_enabled"])
	assert.Equal(t, "mute", fields["post_punishment_type"])
	assert.NotContains(t, fields, "admin_email")
}

func TestModerationSettings_Keywords(t *testing.T) {
	settings := models.DefaultModerationSettings()

	assert.True(t, settings.AddKeyword("  SPAM "))
	assert.Equal(t, []string{"spam"}, settings.BannedKeywords)

	assert.False(t, settings.AddKeyword("Spam"), "duplicates are ignored")
	assert.False(t, settings.AddKeyword("   "), "blank input is ignored")
	assert.True(t, settings.AddKeyword("scam"))
	assert.Equal(t, []string{"spam", "scam"}, settings.BannedKeywords)

	assert.True(t, settings.RemoveKeyword("spam"))
	assert.False(t, settings.RemoveKeyword("spam"))
	assert.Equal(t, []string{"scam"}, settings.BannedKeywords)
}

func TestModerationSettings_KeywordLength(t *testing.T) {
	settings := models.DefaultModerationSettings()

	assert.False(t, settings.AddKeyword(strings.Repeat("x", constants.MaxKeywordLength+1)))
	assert.Empty(t, settings.BannedKeywords)

	err := models.CheckKeyword(strings.Repeat("x", constants.MaxKeywordLength+1))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.StatusCode(err))
	assert.Equal(t, constants.MsgKeywordTooLong, utils.ParseError(err).Message)

	// The limit counts characters, not bytes
	multibyte := strings.Repeat("é", constants.MaxKeywordLength)
	require.NoError(t, models.CheckKeyword(multibyte))
	assert.True(t, settings.AddKeyword(multibyte))
	assert.True(t, settings.AddKeyword("  "+strings.Repeat("y", constants.MaxKeywordLength)+"  "), "padding does not count")
	assert.NoError(t, utils.ValidateStruct(&settings))
}

func TestModerationPatch_Apply(t *testing.T) {
	settings := models.DefaultModerationSettings()
	enabled := true
	punishment := "ban"
	duration := 60
	patch := &models.ModerationPatch{
		CommentModerationEnabled: &enabled,
		CommentPunishmentType:    &punishment,
		PostMuteDuration:         &duration,
	}

	patch.Apply(&settings)

	assert.True(t, settings.CommentModerationEnabled)
	assert.Equal(t, "ban", settings.CommentPunishmentType)
	assert.Equal(t, 60, settings.PostMuteDuration)
	assert.False(t, settings.PostModerationEnabled)
	assert.Equal(t, 3, settings.PostMaxWarnings)
}
