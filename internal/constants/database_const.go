// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines table and column names shared by the hosted rows
// API and the direct PostgreSQL repositories. Both backends use the same schema.
package constants

// Table Names
const (
	TableUsers         = "users"
	TableMonitorConfig = "monitor_config"
	TableMigrations    = "schema_migrations"
)

// User Columns
const (
	ColumnID        = "id"
	ColumnEmail     = "email"
	ColumnFirstName = "first_name"
	ColumnLastName  = "last_name"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// Monitor Config Columns
const (
	ColumnUserID                = "user_id"
	ColumnAdminEmail            = "admin_email"
	ColumnAdminPassword         = "admin_password"
	ColumnCommunityURL          = "community_url"
	ColumnPostModerationEnabled = "post_moderation_enabled"
	ColumnPostMaxWarnings       = "post_max_warnings"
	ColumnPostPunishmentType    = "post_punishment_type"
	ColumnPostMuteDuration      = "post_mute_duration"
	ColumnCommentModeration     = "comment_moderation_enabled"
	ColumnCommentMaxWarnings    = "comment_max_warnings"
	ColumnCommentPunishmentType = "comment_punishment_type"
	ColumnCommentMuteDuration   = "comment_mute_duration"
	ColumnBannedKeywords        = "banned_keywords"
	ColumnSpamProtection        = "spam_protection_enabled"
	ColumnIgnoreAdmins          = "ignore_admins"
)
