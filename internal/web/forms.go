package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/utils"
)

// Dashboard form actions, sent as the value of the "action" button.
const (
	actionUpdate        = "update"
	actionSave          = "save"
	actionAddKeyword    = "add_keyword"
	actionRemoveKeyword = "remove_keyword"
)

type loginForm struct {
	Email    string
	Password string
	From     string
}

func parseLoginForm(form url.Values) loginForm {
	return loginForm{
		Email:    strings.TrimSpace(form.Get("email")),
		Password: form.Get("password"),
		From:     form.Get(constants.QueryParamFrom),
	}
}

func (f loginForm) validate() string {
	if f.Email == "" || f.Password == "" {
		return constants.MsgFillAllFields
	}
	return ""
}

type signUpForm struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

func parseSignUpForm(form url.Values) signUpForm {
	return signUpForm{
		FirstName:       form.Get("first_name"),
		LastName:        form.Get("last_name"),
		Email:           form.Get("email"),
		Password:        form.Get("password"),
		ConfirmPassword: form.Get("confirm_password"),
	}
}

// validate returns the first problem with the form, checked in the order the
// fields appear on the page.
func (f signUpForm) validate() string {
	switch {
	case strings.TrimSpace(f.FirstName) == "":
		return constants.MsgFirstNameRequired
	case strings.TrimSpace(f.LastName) == "":
		return constants.MsgLastNameRequired
	case strings.TrimSpace(f.Email) == "":
		return constants.MsgEmailRequired
	case !strings.Contains(f.Email, "@"):
		return constants.MsgEmailInvalid
	case f.Password == "":
		return constants.MsgPasswordRequired
	case len(f.Password) < 6:
		return constants.MsgPasswordTooShort
	case f.Password != f.ConfirmPassword:
		return constants.MsgPasswordsDontMatch
	}
	return ""
}

// values returns the fields to refill after a failed submit. Passwords are
// never echoed back.
func (f signUpForm) values() map[string]string {
	return map[string]string{
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"email":      f.Email,
	}
}

// loginErrorMessage turns a sign-in failure into the banner text.
func loginErrorMessage(err error) string {
	message := utils.ParseError(err).Message
	if strings.Contains(message, "Invalid") {
		return constants.MsgInvalidEmailOrPassword
	}
	if message == "" {
		return "Failed to sign in"
	}
	return message
}

// signUpErrorMessage turns a sign-up failure into the banner text.
func signUpErrorMessage(err error) string {
	message := utils.ParseError(err).Message
	if utils.IsDuplicateError(err) || strings.Contains(strings.ToLower(message), "email") {
		return constants.MsgAccountExists
	}
	if message == "" {
		return "Failed to create account"
	}
	return message
}

// parseModerationForm reads the moderation form. It always carries every
// toggle, so an unchecked checkbox means false.
func parseModerationForm(form url.Values) (*models.ModerationPatch, error) {
	patch := &models.ModerationPatch{
		PostModerationEnabled:    checkbox(form, constants.ColumnPostModerationEnabled),
		CommentModerationEnabled: checkbox(form, constants.ColumnCommentModeration),
		SpamProtectionEnabled:    checkbox(form, constants.ColumnSpamProtection),
		IgnoreAdmins:             checkbox(form, constants.ColumnIgnoreAdmins),
		PostPunishmentType:       optionalString(form, constants.ColumnPostPunishmentType),
		CommentPunishmentType:    optionalString(form, constants.ColumnCommentPunishmentType),
	}

	ints := []struct {
		field string
		dst   **int
	}{
		{constants.ColumnPostMaxWarnings, &patch.PostMaxWarnings},
		{constants.ColumnPostMuteDuration, &patch.PostMuteDuration},
		{constants.ColumnCommentMaxWarnings, &patch.CommentMaxWarnings},
		{constants.ColumnCommentMuteDuration, &patch.CommentMuteDuration},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(form.Get(f.field))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, utils.NewValidationError(f.field, "Must be a whole number")
		}
		*f.dst = &n
	}

	if err := utils.ValidateStruct(patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// parseCredentialsForm reads the monitor credentials form.
func parseCredentialsForm(form url.Values) *models.CredentialsPatch {
	return &models.CredentialsPatch{
		AdminEmail:    optionalString(form, constants.ColumnAdminEmail),
		AdminPassword: optionalRaw(form, constants.ColumnAdminPassword),
		CommunityURL:  optionalString(form, constants.ColumnCommunityURL),
	}
}

func checkbox(form url.Values, field string) *bool {
	v := form.Get(field) != ""
	return &v
}

func optionalString(form url.Values, field string) *string {
	if _, ok := form[field]; !ok {
		return nil
	}
	v := strings.TrimSpace(form.Get(field))
	return &v
}

// optionalRaw is optionalString without trimming, for passwords.
func optionalRaw(form url.Values, field string) *string {
	if _, ok := form[field]; !ok {
		return nil
	}
	v := form.Get(field)
	return &v
}
