package models

import (
	"time"
	"unicode/utf8"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/utils"
)

// MonitorConfig is the single monitor_config row a user owns. It feeds the
// external moderation engine. Moderation columns are nullable because rows
// created by older clients may predate them; reads substitute the defaults.
type MonitorConfig struct {
	UserID string `json:"user_id" db:"user_id"`

	// Community platform admin credentials
	AdminEmail    *string `json:"admin_email" db:"admin_email"`
	AdminPassword *string `json:"admin_password" db:"admin_password"`
	CommunityURL  *string `json:"community_url" db:"community_url"`

	PostModerationEnabled    *bool    `json:"post_moderation_enabled" db:"post_moderation_enabled"`
	PostMaxWarnings          *int     `json:"post_max_warnings" db:"post_max_warnings"`
	PostPunishmentType       *string  `json:"post_punishment_type" db:"post_punishment_type"`
	PostMuteDuration         *int     `json:"post_mute_duration" db:"post_mute_duration"`
	CommentModerationEnabled *bool    `json:"comment_moderation_enabled" db:"comment_moderation_enabled"`
	CommentMaxWarnings       *int     `json:"comment_max_warnings" db:"comment_max_warnings"`
	CommentPunishmentType    *string  `json:"comment_punishment_type" db:"comment_punishment_type"`
	CommentMuteDuration      *int     `json:"comment_mute_duration" db:"comment_mute_duration"`
	BannedKeywords           []string `json:"banned_keywords" db:"banned_keywords"`
	SpamProtectionEnabled    *bool    `json:"spam_protection_enabled" db:"spam_protection_enabled"`
	IgnoreAdmins             *bool    `json:"ignore_admins" db:"ignore_admins"`

	CreatedAt *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// NewMonitorConfig creates the row inserted on first access: empty
// credentials and the default moderation settings.
func NewMonitorConfig(userID string) *MonitorConfig {
	empty := ""
	cfg := &MonitorConfig{
		UserID:        userID,
		AdminEmail:    &empty,
		AdminPassword: &empty,
		CommunityURL:  &empty,
	}
	cfg.SetModeration(DefaultModerationSettings())
	return cfg
}

// TableName returns the database table name for the MonitorConfig model.
func (m *MonitorConfig) TableName() string {
	return constants.TableMonitorConfig
}

// Credentials extracts the credentials form. Null columns read as empty strings.
func (m *MonitorConfig) Credentials() CredentialsForm {
	return CredentialsForm{
		AdminEmail:    deref(m.AdminEmail),
		AdminPassword: deref(m.AdminPassword),
		CommunityURL:  deref(m.CommunityURL),
	}
}

// Moderation extracts the moderation settings, substituting defaults for null columns.
func (m *MonitorConfig) Moderation() ModerationSettings {
	d := DefaultModerationSettings()
	s := ModerationSettings{
		PostModerationEnabled:    boolOr(m.PostModerationEnabled, d.PostModerationEnabled),
		PostMaxWarnings:          intOr(m.PostMaxWarnings, d.PostMaxWarnings),
		PostPunishmentType:       stringOr(m.PostPunishmentType, d.PostPunishmentType),
		PostMuteDuration:         intOr(m.PostMuteDuration, d.PostMuteDuration),
		CommentModerationEnabled: boolOr(m.CommentModerationEnabled, d.CommentModerationEnabled),
		CommentMaxWarnings:       intOr(m.CommentMaxWarnings, d.CommentMaxWarnings),
		CommentPunishmentType:    stringOr(m.CommentPunishmentType, d.CommentPunishmentType),
		CommentMuteDuration:      intOr(m.CommentMuteDuration, d.CommentMuteDuration),
		BannedKeywords:           d.BannedKeywords,
		SpamProtectionEnabled:    boolOr(m.SpamProtectionEnabled, d.SpamProtectionEnabled),
		IgnoreAdmins:             boolOr(m.IgnoreAdmins, d.IgnoreAdmins),
	}
	if m.BannedKeywords != nil {
		s.BannedKeywords = append([]string{}, m.BannedKeywords...)
	}
	return s
}

// SetModeration copies every moderation field into the row.
func (m *MonitorConfig) SetModeration(s ModerationSettings) {
	m.PostModerationEnabled = &s.PostModerationEnabled
	m.PostMaxWarnings = &s.PostMaxWarnings
	m.PostPunishmentType = &s.PostPunishmentType
	m.PostMuteDuration = &s.PostMuteDuration
	m.CommentModerationEnabled = &s.CommentModerationEnabled
	m.CommentMaxWarnings = &s.CommentMaxWarnings
	m.CommentPunishmentType = &s.CommentPunishmentType
	m.CommentMuteDuration = &s.CommentMuteDuration
	m.BannedKeywords = append([]string{}, s.BannedKeywords...)
	m.SpamProtectionEnabled = &s.SpamProtectionEnabled
	m.IgnoreAdmins = &s.IgnoreAdmins
}

// CredentialsForm is what the config page edits: the credentials the external
// monitor uses to sign in to the community, and the community address.
type CredentialsForm struct {
	AdminEmail    string `json:"admin_email" validate:"omitempty,email,max=255"`
	AdminPassword string `json:"admin_password" validate:"max=255"`
	CommunityURL  string `json:"community_url" validate:"omitempty,url,max=2048"`
}

// Fields returns exactly the columns the config form writes.
func (f CredentialsForm) Fields() map[string]interface{} {
	return map[string]interface{}{
		constants.ColumnAdminEmail:    f.AdminEmail,
		constants.ColumnAdminPassword: f.AdminPassword,
		constants.ColumnCommunityURL:  f.CommunityURL,
	}
}

// CredentialsPatch edits a subset of the credentials draft.
type CredentialsPatch struct {
	AdminEmail    *string `json:"admin_email" validate:"omitempty,max=255"`
	AdminPassword *string `json:"admin_password" validate:"omitempty,max=255"`
	CommunityURL  *string `json:"community_url" validate:"omitempty,max=2048"`
}

// Apply writes the non-nil patch fields into the draft.
func (p *CredentialsPatch) Apply(f *CredentialsForm) {
	if p.AdminEmail != nil {
		f.AdminEmail = *p.AdminEmail
	}
	if p.AdminPassword != nil {
		f.AdminPassword = *p.AdminPassword
	}
	if p.CommunityURL != nil {
		f.CommunityURL = *p.CommunityURL
	}
}

// ModerationSettings is what the moderation page edits.
type ModerationSettings struct {
	PostModerationEnabled    bool     `json:"post_moderation_enabled"`
	PostMaxWarnings          int      `json:"post_max_warnings" validate:"gte=0"`
	PostPunishmentType       string   `json:"post_punishment_type" validate:"oneof=mute ban"`
	PostMuteDuration         int      `json:"post_mute_duration" validate:"gte=0"`
	CommentModerationEnabled bool     `json:"comment_moderation_enabled"`
	CommentMaxWarnings       int      `json:"comment_max_warnings" validate:"gte=0"`
	CommentPunishmentType    string   `json:"comment_punishment_type" validate:"oneof=mute ban"`
	CommentMuteDuration      int      `json:"comment_mute_duration" validate:"gte=0"`
	BannedKeywords           []string `json:"banned_keywords" validate:"dive,keyword"`
	SpamProtectionEnabled    bool     `json:"spam_protection_enabled"`
	IgnoreAdmins             bool     `json:"ignore_admins"`
}

// DefaultModerationSettings returns the settings of a freshly created row.
func DefaultModerationSettings() ModerationSettings {
	return ModerationSettings{
		PostModerationEnabled:    constants.DefaultModerationEnabled,
		PostMaxWarnings:          constants.DefaultMaxWarnings,
		PostPunishmentType:       constants.DefaultPunishmentType,
		PostMuteDuration:         constants.DefaultMuteDurationSeconds,
		CommentModerationEnabled: constants.DefaultModerationEnabled,
		CommentMaxWarnings:       constants.DefaultMaxWarnings,
		CommentPunishmentType:    constants.DefaultPunishmentType,
		CommentMuteDuration:      constants.DefaultMuteDurationSeconds,
		BannedKeywords:           []string{},
		SpamProtectionEnabled:    constants.DefaultSpamProtectionEnabled,
		IgnoreAdmins:             constants.DefaultIgnoreAdmins,
	}
}

// Fields returns exactly the columns the moderation form writes.
func (s ModerationSettings) Fields() map[string]interface{} {
	keywords := s.BannedKeywords
	if keywords == nil {
		keywords = []string{}
	}
	return map[string]interface{}{
		constants.ColumnPostModerationEnabled: s.PostModerationEnabled,
		constants.ColumnPostMaxWarnings:       s.PostMaxWarnings,
		constants.ColumnPostPunishmentType:    s.PostPunishmentType,
		constants.ColumnPostMuteDuration:      s.PostMuteDuration,
		constants.ColumnCommentModeration:     s.CommentModerationEnabled,
		constants.ColumnCommentMaxWarnings:    s.CommentMaxWarnings,
		constants.ColumnCommentPunishmentType: s.CommentPunishmentType,
		constants.ColumnCommentMuteDuration:   s.CommentMuteDuration,
		constants.ColumnBannedKeywords:        keywords,
		constants.ColumnSpamProtection:        s.SpamProtectionEnabled,
		constants.ColumnIgnoreAdmins:          s.IgnoreAdmins,
	}
}

// CheckKeyword rejects a keyword that would be too long once normalised.
func CheckKeyword(keyword string) error {
	if utf8.RuneCountInString(utils.NormalizeKeyword(keyword)) > constants.MaxKeywordLength {
		return utils.NewValidationError("keyword", constants.MsgKeywordTooLong)
	}
	return nil
}

// AddKeyword normalises keyword and appends it. It reports false for empty
// or over-long input and for a keyword that is already banned.
func (s *ModerationSettings) AddKeyword(keyword string) bool {
	normalized := utils.NormalizeKeyword(keyword)
	if normalized == "" || CheckKeyword(normalized) != nil || utils.ContainsString(s.BannedKeywords, normalized) {
		return false
	}
	s.BannedKeywords = append(s.BannedKeywords, normalized)
	return true
}

// RemoveKeyword filters keyword out of the list. It reports whether anything was removed.
func (s *ModerationSettings) RemoveKeyword(keyword string) bool {
	if !utils.ContainsString(s.BannedKeywords, keyword) {
		return false
	}
	s.BannedKeywords = utils.RemoveString(s.BannedKeywords, keyword)
	return true
}

// ModerationPatch edits a subset of the moderation draft. Keyword changes go
// through AddKeyword/RemoveKeyword instead.
type ModerationPatch struct {
	PostModerationEnabled    *bool   `json:"post_moderation_enabled"`
	PostMaxWarnings          *int    `json:"post_max_warnings" validate:"omitempty,gte=0"`
	PostPunishmentType       *string `json:"post_punishment_type" validate:"omitempty,oneof=mute ban"`
	PostMuteDuration         *int    `json:"post_mute_duration" validate:"omitempty,gte=0"`
	CommentModerationEnabled *bool   `json:"comment_moderation_enabled"`
	CommentMaxWarnings       *int    `json:"comment_max_warnings" validate:"omitempty,gte=0"`
	CommentPunishmentType    *string `json:"comment_punishment_type" validate:"omitempty,oneof=mute ban"`
	CommentMuteDuration      *int    `json:"comment_mute_duration" validate:"omitempty,gte=0"`
	SpamProtectionEnabled    *bool   `json:"spam_protection_enabled"`
	IgnoreAdmins             *bool   `json:"ignore_admins"`
}

// Apply writes the non-nil patch fields into the draft.
func (p *ModerationPatch) Apply(s *ModerationSettings) {
	if p.PostModerationEnabled != nil {
		s.PostModerationEnabled = *p.PostModerationEnabled
	}
	if p.PostMaxWarnings != nil {
		s.PostMaxWarnings = *p.PostMaxWarnings
	}
	if p.PostPunishmentType != nil {
		s.PostPunishmentType = *p.PostPunishmentType
	}
	if p.PostMuteDuration != nil {
		s.PostMuteDuration = *p.PostMuteDuration
	}
	if p.CommentModerationEnabled != nil {
		s.CommentModerationEnabled = *p.CommentModerationEnabled
	}
	if p.CommentMaxWarnings != nil {
		s.CommentMaxWarnings = *p.CommentMaxWarnings
	}
	if p.CommentPunishmentType != nil {
		s.CommentPunishmentType = *p.CommentPunishmentType
	}
	if p.CommentMuteDuration != nil {
		s.CommentMuteDuration = *p.CommentMuteDuration
	}
	if p.SpamProtectionEnabled != nil {
		s.SpamProtectionEnabled = *p.SpamProtectionEnabled
	}
	if p.IgnoreAdmins != nil {
		s.IgnoreAdmins = *p.IgnoreAdmins
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func stringOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

// Clone returns a copy that shares no slice with s.
func (s ModerationSettings) Clone() ModerationSettings {
	c := s
	c.BannedKeywords = append([]string{}, s.BannedKeywords...)
	return c
}

// KeywordRequest adds one banned keyword to the moderation draft.
type KeywordRequest struct {
	Keyword string `json:"keyword" validate:"required"`
}
