package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/editor"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/utils"
)

// queryParamReload forces a draft to be read again from the backend.
const queryParamReload = "reload"

// MonitorHandler handles the credentials and moderation editors. Drafts live
// per session; only the save endpoints and the first load reach the backend.
type MonitorHandler struct {
	backends    MonitorBackends
	credentials DraftStore[models.CredentialsForm]
	moderation  DraftStore[models.ModerationSettings]
}

// NewMonitorHandler creates a new MonitorHandler
func NewMonitorHandler(
	backends MonitorBackends,
	credentials DraftStore[models.CredentialsForm],
	moderation DraftStore[models.ModerationSettings],
) *MonitorHandler {
	return &MonitorHandler{
		backends:    backends,
		credentials: credentials,
		moderation:  moderation,
	}
}

// GetCredentials loads the credentials draft, creating the config row on first access.
func (h *MonitorHandler) GetCredentials(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	loadDraft(w, r, h.credentials.Get(id.DraftKey()), h.backends.CredentialsBackend(id.AccessToken, id.UserID))
}

// PatchCredentials changes fields of the credentials draft without saving.
func (h *MonitorHandler) PatchCredentials(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var patch models.CredentialsPatch
	if err := utils.DecodeAndValidate(r, &patch); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	editDraft(w, h.credentials.Get(id.DraftKey()), func(f *models.CredentialsForm) error {
		patch.Apply(f)
		return nil
	})
}

// PutCredentials replaces the credentials draft and saves it.
func (h *MonitorHandler) PutCredentials(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var form models.CredentialsForm
	if err := utils.DecodeAndValidate(r, &form); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	replaceAndSave(w, r, h.credentials.Get(id.DraftKey()), h.backends.CredentialsBackend(id.AccessToken, id.UserID), form)
}

// SaveCredentials writes the credentials draft.
func (h *MonitorHandler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	saveDraft(w, r, h.credentials.Get(id.DraftKey()), h.backends.CredentialsBackend(id.AccessToken, id.UserID))
}

// GetModeration loads the moderation draft.
func (h *MonitorHandler) GetModeration(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	loadDraft(w, r, h.moderation.Get(id.DraftKey()), h.backends.ModerationBackend(id.AccessToken, id.UserID))
}

// PatchModeration toggles or sets moderation fields in the draft without saving.
func (h *MonitorHandler) PatchModeration(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var patch models.ModerationPatch
	if err := utils.DecodeAndValidate(r, &patch); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	editDraft(w, h.moderation.Get(id.DraftKey()), func(s *models.ModerationSettings) error {
		patch.Apply(s)
		return nil
	})
}

// PutModeration replaces the moderation draft and saves it.
func (h *MonitorHandler) PutModeration(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var settings models.ModerationSettings
	if err := utils.DecodeAndValidate(r, &settings); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	if settings.BannedKeywords == nil {
		settings.BannedKeywords = []string{}
	}

	replaceAndSave(w, r, h.moderation.Get(id.DraftKey()), h.backends.ModerationBackend(id.AccessToken, id.UserID), settings)
}

// AddKeyword adds a banned keyword to the draft. Blank and duplicate keywords
// are ignored.
func (h *MonitorHandler) AddKeyword(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.KeywordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	editDraft(w, h.moderation.Get(id.DraftKey()), func(s *models.ModerationSettings) error {
		if err := models.CheckKeyword(req.Keyword); err != nil {
			return err
		}
		s.AddKeyword(req.Keyword)
		return nil
	})
}

// RemoveKeyword removes a banned keyword from the draft.
func (h *MonitorHandler) RemoveKeyword(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	keyword, err := keywordParam(r)
	if err != nil || keyword == "" {
		utils.BadRequest(w, "Invalid keyword", nil)
		return
	}

	editDraft(w, h.moderation.Get(id.DraftKey()), func(s *models.ModerationSettings) error {
		s.RemoveKeyword(keyword)
		return nil
	})
}

// keywordParam returns the decoded keyword path segment. chi matches on the
// raw path only when the URL carries escapes such as %2F; otherwise the
// parameter is already decoded.
func keywordParam(r *http.Request) (string, error) {
	keyword := chi.URLParam(r, constants.ParamKeyword)
	if r.URL.RawPath == "" {
		return keyword, nil
	}
	return url.PathUnescape(keyword)
}

// SaveModeration writes the moderation draft.
func (h *MonitorHandler) SaveModeration(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	saveDraft(w, r, h.moderation.Get(id.DraftKey()), h.backends.ModerationBackend(id.AccessToken, id.UserID))
}

// loadDraft answers with the draft, loading it on first use or when reload is asked for.
func loadDraft[T any](w http.ResponseWriter, r *http.Request, ed *editor.Editor[T], backend editor.Backend[T]) {
	var err error
	if r.URL.Query().Get(queryParamReload) == "true" {
		err = ed.Load(r.Context(), backend)
	} else {
		err = ed.EnsureLoaded(r.Context(), backend)
	}
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	utils.JSON(w, constants.StatusOK, ed.Snapshot())
}

func editDraft[T any](w http.ResponseWriter, ed *editor.Editor[T], fn func(*T) error) {
	if err := ed.Edit(fn); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	utils.JSON(w, constants.StatusOK, ed.Snapshot())
}

func replaceAndSave[T any](w http.ResponseWriter, r *http.Request, ed *editor.Editor[T], backend editor.Backend[T], value T) {
	if err := ed.EnsureLoaded(r.Context(), backend); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	if err := ed.Replace(value); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	saveDraft(w, r, ed, backend)
}

func saveDraft[T any](w http.ResponseWriter, r *http.Request, ed *editor.Editor[T], backend editor.Backend[T]) {
	if err := ed.Save(r.Context(), backend); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	utils.JSON(w, constants.StatusOK, ed.Snapshot())
}
