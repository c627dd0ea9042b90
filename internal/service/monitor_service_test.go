package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/editor"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/supabase"
	"github.com/skout-hq/skout/internal/utils"
)

// MockProfileRepository is a mock implementation of repository.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, token, id string) (*models.Profile, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, token string, profile *models.Profile) error {
	return m.Called(ctx, token, profile).Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, token, id string, update *models.ProfileUpdate) error {
	return m.Called(ctx, token, id, update).Error(0)
}

// MockMonitorConfigRepository is a mock implementation of repository.MonitorConfigRepository
type MockMonitorConfigRepository struct {
	mock.Mock
}

func (m *MockMonitorConfigRepository) GetByUserID(ctx context.Context, token, userID string) (*models.MonitorConfig, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonitorConfig), args.Error(1)
}

func (m *MockMonitorConfigRepository) Create(ctx context.Context, token string, cfg *models.MonitorConfig) error {
	return m.Called(ctx, token, cfg).Error(0)
}

func (m *MockMonitorConfigRepository) UpdateFields(ctx context.Context, token, userID string, fields map[string]interface{}) error {
	return m.Called(ctx, token, userID, fields).Error(0)
}

func newMonitorService() (*MonitorService, *MockProfileRepository, *MockMonitorConfigRepository) {
	profiles := new(MockProfileRepository)
	configs := new(MockMonitorConfigRepository)
	return NewMonitorService(profiles, configs), profiles, configs
}

func strPtr(s string) *string { return &s }

func TestMonitorService_VerifyUser(t *testing.T) {
	svc, profiles, _ := newMonitorService()
	profiles.On("GetByID", mock.Anything, "tok", "u1").Return(&models.Profile{ID: "u1"}, nil).Once()
	profiles.On("GetByID", mock.Anything, "tok", "u2").
		Return(nil, &supabase.APIError{Status: 401, Message: "JWT expired"}).Once()

	require.NoError(t, svc.VerifyUser(context.Background(), "tok", "u1"))

	err := svc.VerifyUser(context.Background(), "tok", "u2")
	require.Error(t, err)
	assert.Equal(t, "User verification failed: JWT expired", err.Error())
	assert.Equal(t, http.StatusUnauthorized, utils.StatusCode(err))
}

func TestMonitorService_FetchOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("existing row", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		row := &models.MonitorConfig{UserID: "u1", AdminEmail: strPtr("mod@example.com")}
		configs.On("GetByUserID", mock.Anything, "tok", "u1").Return(row, nil)

		cfg, err := svc.FetchOrCreate(ctx, "tok", "u1")
		require.NoError(t, err)
		assert.Same(t, row, cfg)
		configs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing row is created with defaults", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		configs.On("GetByUserID", mock.Anything, "tok", "u1").Return(nil, utils.NewNotFoundError("MonitorConfig", "u1"))
		configs.On("Create", mock.Anything, "tok", mock.MatchedBy(func(c *models.MonitorConfig) bool {
			return c.UserID == "u1" &&
				c.Credentials() == models.CredentialsForm{} &&
				c.Moderation().PostMaxWarnings == constants.DefaultMaxWarnings
		})).Return(nil)

		cfg, err := svc.FetchOrCreate(ctx, "tok", "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", cfg.UserID)
		assert.Equal(t, models.DefaultModerationSettings(), cfg.Moderation())
	})

	t.Run("create fails", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		configs.On("GetByUserID", mock.Anything, "tok", "u1").Return(nil, utils.NewNotFoundError("MonitorConfig", "u1"))
		configs.On("Create", mock.Anything, "tok", mock.Anything).
			Return(&supabase.APIError{Status: 403, Message: "new row violates row-level security policy"})

		_, err := svc.FetchOrCreate(ctx, "tok", "u1")
		require.Error(t, err)
		assert.Equal(t, "Failed to create config: new row violates row-level security policy", err.Error())
		assert.Equal(t, http.StatusForbidden, utils.StatusCode(err))
	})

	t.Run("fetch fails", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		configs.On("GetByUserID", mock.Anything, "tok", "u1").
			Return(nil, &supabase.APIError{Status: 500, Message: "database unavailable"})

		_, err := svc.FetchOrCreate(ctx, "tok", "u1")
		require.Error(t, err)
		assert.Equal(t, "Failed to fetch config: database unavailable", err.Error())
		assert.Equal(t, http.StatusBadGateway, utils.StatusCode(err))
	})
}

func TestCredentialsBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("load verifies the user first", func(t *testing.T) {
		svc, profiles, configs := newMonitorService()
		profiles.On("GetByID", mock.Anything, "tok", "u1").Return(nil, utils.NewNotFoundError("Profile", "u1"))

		_, err := svc.CredentialsBackend("tok", "u1").Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "User verification failed: ")
		configs.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("load returns stored credentials", func(t *testing.T) {
		svc, profiles, configs := newMonitorService()
		profiles.On("GetByID", mock.Anything, "tok", "u1").Return(&models.Profile{ID: "u1"}, nil)
		configs.On("GetByUserID", mock.Anything, "tok", "u1").Return(&models.MonitorConfig{
			UserID:       "u1",
			AdminEmail:   strPtr("mod@example.com"),
			CommunityURL: strPtr("https://community.example.com"),
		}, nil)

		form, err := svc.CredentialsBackend("tok", "u1").Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.CredentialsForm{
			AdminEmail:   "mod@example.com",
			CommunityURL: "https://community.example.com",
		}, form)
	})

	t.Run("save writes exactly the form columns", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		form := models.CredentialsForm{AdminEmail: "mod@example.com", AdminPassword: "pw", CommunityURL: "https://c.example.com"}
		configs.On("UpdateFields", mock.Anything, "tok", "u1", map[string]interface{}{
			constants.ColumnAdminEmail:    "mod@example.com",
			constants.ColumnAdminPassword: "pw",
			constants.ColumnCommunityURL:  "https://c.example.com",
		}).Return(nil)

		require.NoError(t, svc.CredentialsBackend("tok", "u1").Save(ctx, form))
		configs.AssertExpectations(t)
	})

	t.Run("save failure message", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		configs.On("UpdateFields", mock.Anything, "tok", "u1", mock.Anything).
			Return(&supabase.APIError{Status: 400, Message: "invalid input"})

		err := svc.CredentialsBackend("tok", "u1").Save(ctx, models.CredentialsForm{})
		require.Error(t, err)
		assert.Equal(t, "Failed to save configuration: Save error: invalid input", err.Error())
	})

	t.Run("invalid form is not sent", func(t *testing.T) {
		svc, _, configs := newMonitorService()

		err := svc.CredentialsBackend("tok", "u1").Save(ctx, models.CredentialsForm{AdminEmail: "not-an-email"})
		require.Error(t, err)
		assert.True(t, utils.IsValidationError(err))
		configs.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestModerationBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("null columns load as defaults", func(t *testing.T) {
		svc, profiles, configs := newMonitorService()
		enabled := true
		configs.On("GetByUserID", mock.Anything, "tok", "u1").Return(&models.MonitorConfig{
			UserID:                "u1",
			PostModerationEnabled: &enabled,
		}, nil)

		settings, err := svc.ModerationBackend("tok", "u1").Load(ctx)
		require.NoError(t, err)

		want := models.DefaultModerationSettings()
		want.PostModerationEnabled = true
		assert.Equal(t, want, settings)
		profiles.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("load failure message", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		configs.On("GetByUserID", mock.Anything, "tok", "u1").Return(nil, errors.New("dial tcp: timeout"))

		_, err := svc.ModerationBackend("tok", "u1").Load(ctx)
		require.Error(t, err)
		assert.Equal(t, constants.MsgLoadConfigFailed, err.Error())
	})

	t.Run("save writes the eleven moderation columns", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		settings := models.DefaultModerationSettings()
		settings.AddKeyword("Spam")

		configs.On("UpdateFields", mock.Anything, "tok", "u1", mock.MatchedBy(func(f map[string]interface{}) bool {
			_, hasCreds := f[constants.ColumnAdminEmail]
			return len(f) == 11 && !hasCreds && assert.ObjectsAreEqual([]string{"spam"}, f[constants.ColumnBannedKeywords])
		})).Return(nil)

		require.NoError(t, svc.ModerationBackend("tok", "u1").Save(ctx, settings))
		configs.AssertExpectations(t)
	})

	t.Run("save failure message", func(t *testing.T) {
		svc, _, configs := newMonitorService()
		configs.On("UpdateFields", mock.Anything, "tok", "u1", mock.Anything).Return(errors.New("boom"))

		err := svc.ModerationBackend("tok", "u1").Save(ctx, models.DefaultModerationSettings())
		require.Error(t, err)
		assert.Equal(t, constants.MsgSaveConfigFailed, err.Error())
	})

	t.Run("invalid punishment type", func(t *testing.T) {
		svc, _, _ := newMonitorService()
		settings := models.DefaultModerationSettings()
		settings.PostPunishmentType = "kick"

		err := svc.ModerationBackend("tok", "u1").Save(ctx, settings)
		assert.True(t, utils.IsValidationError(err))
	})
}

func TestModerationEditorFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, configs := newMonitorService()
	configs.On("GetByUserID", mock.Anything, "tok", "u1").Return(nil, utils.NewNotFoundError("MonitorConfig", "u1"))
	configs.On("Create", mock.Anything, "tok", mock.Anything).Return(nil)
	configs.On("UpdateFields", mock.Anything, "tok", "u1", mock.Anything).Return(nil)

	backend := svc.ModerationBackend("tok", "u1")
	ed := editor.New(constants.EditorModeration, models.DefaultModerationSettings(), models.ModerationSettings.Clone)

	require.NoError(t, ed.Load(ctx, backend))
	require.NoError(t, ed.Edit(func(s *models.ModerationSettings) error {
		s.CommentModerationEnabled = true
		return nil
	}))
	configs.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, ed.Save(ctx, backend))
	assert.Equal(t, constants.MsgConfigSaved, ed.Snapshot().Success)
	configs.AssertNumberOfCalls(t, "UpdateFields", 1)
}
