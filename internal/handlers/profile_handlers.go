package handlers

import (
	"net/http"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/utils"
)

// ProfileHandler handles the signed-in user's profile
type ProfileHandler struct {
	sessions SessionManager
	profiles ProfileStore
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(sessions SessionManager, profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{
		sessions: sessions,
		profiles: profiles,
	}
}

// GetProfile returns the current user's profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	profile, err := h.profiles.GetByID(r.Context(), id.AccessToken, id.UserID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, profile)
}

// UpdateProfile changes the first and last name of the current user.
// Cookie sessions go through the session manager so that subscribers see
// USER_UPDATED; bearer clients write the row directly.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgNoUserLoggedIn)
		return
	}

	var update models.ProfileUpdate
	if err := utils.DecodeAndValidate(r, &update); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	if update.IsEmpty() {
		utils.BadRequest(w, "No profile fields to update", nil)
		return
	}

	var (
		profile *models.Profile
		err     error
	)
	if id.Session != nil {
		profile, err = h.sessions.UpdateProfile(r.Context(), id.SessionID, &update)
	} else {
		err = h.profiles.Update(r.Context(), id.AccessToken, id.UserID, &update)
		if err == nil {
			profile, err = h.profiles.GetByID(r.Context(), id.AccessToken, id.UserID)
		}
	}
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, profile)
}
