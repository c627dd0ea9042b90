// Package service provides the business logic behind the dashboard. It
// orchestrates the repositories and turns their failures into the messages the
// dashboard banner shows.
//
// This file implements the monitor configuration service. A user's row is
// created lazily on first load, and the two dashboard editors (credentials and
// moderation) each read and write their own subset of its columns.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/editor"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/repository"
	"github.com/skout-hq/skout/internal/utils"
)

// MonitorService manages the monitor configuration row of a user.
type MonitorService struct {
	profiles repository.ProfileRepository
	configs  repository.MonitorConfigRepository
}

// NewMonitorService creates a new MonitorService with the specified dependencies.
//
// Parameters:
//   - profiles: Repository used to verify that the user row exists
//   - configs: Repository for monitor configuration rows
//
// Returns:
//   - A new MonitorService instance
func NewMonitorService(profiles repository.ProfileRepository, configs repository.MonitorConfigRepository) *MonitorService {
	return &MonitorService{
		profiles: profiles,
		configs:  configs,
	}
}

// VerifyUser checks that the users row of userID exists.
func (s *MonitorService) VerifyUser(ctx context.Context, token, userID string) error {
	if _, err := s.profiles.GetByID(ctx, token, userID); err != nil {
		return utils.Wrap(err, constants.MsgUserVerificationFailed)
	}
	return nil
}

// FetchOrCreate returns the configuration row of userID. A user without a row
// gets one with empty credentials and default moderation settings.
//
// Parameters:
//   - ctx: Context for the operation
//   - token: The user's access token, used by the hosted rows API
//   - userID: The owner of the row
//
// Returns:
//   - The existing or newly created row
//   - "Failed to create config: ..." if the insert fails
//   - "Failed to fetch config: ..." for any other read failure
func (s *MonitorService) FetchOrCreate(ctx context.Context, token, userID string) (*models.MonitorConfig, error) {
	cfg, err := s.configs.GetByUserID(ctx, token, userID)
	if err == nil {
		return cfg, nil
	}
	if !utils.IsNotFoundError(err) {
		return nil, utils.Wrap(err, constants.MsgFetchConfigFailed)
	}

	cfg = models.NewMonitorConfig(userID)
	if err := s.configs.Create(ctx, token, cfg); err != nil {
		return nil, utils.Wrap(err, constants.MsgCreateConfigFailed)
	}

	log.Info().Str(constants.UserIDContextKey, userID).Msg("Created default monitor configuration")
	return cfg, nil
}

// CredentialsBackend returns the backend of the credentials editor for one user.
func (s *MonitorService) CredentialsBackend(token, userID string) editor.Backend[models.CredentialsForm] {
	return &credentialsBackend{svc: s, token: token, userID: userID}
}

// ModerationBackend returns the backend of the moderation editor for one user.
func (s *MonitorService) ModerationBackend(token, userID string) editor.Backend[models.ModerationSettings] {
	return &moderationBackend{svc: s, token: token, userID: userID}
}

type credentialsBackend struct {
	svc    *MonitorService
	token  string
	userID string
}

func (b *credentialsBackend) Load(ctx context.Context) (models.CredentialsForm, error) {
	if err := b.svc.VerifyUser(ctx, b.token, b.userID); err != nil {
		return models.CredentialsForm{}, err
	}
	cfg, err := b.svc.FetchOrCreate(ctx, b.token, b.userID)
	if err != nil {
		return models.CredentialsForm{}, err
	}
	return cfg.Credentials(), nil
}

func (b *credentialsBackend) Save(ctx context.Context, form models.CredentialsForm) error {
	if err := utils.ValidateStruct(form); err != nil {
		return err
	}

	if err := b.svc.configs.UpdateFields(ctx, b.token, b.userID, form.Fields()); err != nil {
		return utils.Wrap(err, fmt.Sprintf("%s: %s", constants.MsgSaveConfigFailed, constants.MsgSaveErrorPrefix))
	}

	log.Info().Str(constants.UserIDContextKey, b.userID).Msg("Monitor credentials saved")
	return nil
}

type moderationBackend struct {
	svc    *MonitorService
	token  string
	userID string
}

func (b *moderationBackend) Load(ctx context.Context) (models.ModerationSettings, error) {
	cfg, err := b.svc.FetchOrCreate(ctx, b.token, b.userID)
	if err != nil {
		return models.DefaultModerationSettings(), withMessage(err, constants.MsgLoadConfigFailed)
	}
	return cfg.Moderation(), nil
}

func (b *moderationBackend) Save(ctx context.Context, settings models.ModerationSettings) error {
	if err := utils.ValidateStruct(settings); err != nil {
		return err
	}

	if err := b.svc.configs.UpdateFields(ctx, b.token, b.userID, settings.Fields()); err != nil {
		return withMessage(err, constants.MsgSaveConfigFailed)
	}

	log.Info().
		Str(constants.UserIDContextKey, b.userID).
		Int("banned_keywords", len(settings.BannedKeywords)).
		Msg("Moderation settings saved")
	return nil
}

// withMessage keeps the status of err but replaces its user-facing message.
func withMessage(err error, message string) *utils.AppError {
	appErr := utils.ParseError(err)
	return utils.NewWithDevInfo(appErr.Err, appErr.StatusCode, message, err.Error())
}
