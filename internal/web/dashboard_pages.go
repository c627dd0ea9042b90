package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/editor"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/utils"
)

// Overview is the dashboard index.
func (p *Pages) Overview(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "overview", &pageData{
		Title:   "Overview",
		Flash:   p.popFlash(w, r),
		Content: sampleOverview,
	})
}

// Punishments lists punished members.
func (p *Pages) Punishments(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "punishments", &pageData{Title: "Punishments", Content: samplePunishments})
}

// History lists recent moderation actions.
func (p *Pages) History(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "history", &pageData{Title: "History", Content: sampleHistory})
}

// Moderation shows the moderation settings draft. A failed load still renders
// the defaults with the error banner.
func (p *Pages) Moderation(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		http.Redirect(w, r, constants.PageLogin, http.StatusFound)
		return
	}

	ed := p.moderation.Get(id.DraftKey())
	if err := ed.EnsureLoaded(r.Context(), p.backends.ModerationBackend(id.AccessToken, id.UserID)); err != nil {
		log.Debug().Err(err).Str(constants.UserIDContextKey, id.UserID).Msg("Moderation page rendered with defaults")
	}

	state := ed.Snapshot()
	// banners are shown once
	ed.ClearMessages()
	p.render(w, r, http.StatusOK, "moderation", &pageData{
		Title:   "Moderation",
		Flash:   p.popFlash(w, r),
		Content: state,
	})
}

// UpdateModeration applies a moderation form action: change the toggles,
// add or remove a keyword, or save. Only save reaches the backend.
func (p *Pages) UpdateModeration(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		http.Redirect(w, r, constants.PageLogin, http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	ed := p.moderation.Get(id.DraftKey())
	backend := p.backends.ModerationBackend(id.AccessToken, id.UserID)
	if err := ed.EnsureLoaded(r.Context(), backend); err != nil {
		http.Redirect(w, r, constants.PageDashboardModeration, http.StatusSeeOther)
		return
	}

	var err error
	switch r.PostForm.Get("action") {
	case actionUpdate:
		err = applyModerationForm(ed, r)
	case actionAddKeyword:
		keyword := r.PostForm.Get("keyword")
		err = ed.Edit(func(s *models.ModerationSettings) error {
			if err := models.CheckKeyword(keyword); err != nil {
				return err
			}
			s.AddKeyword(keyword)
			return nil
		})
	case actionRemoveKeyword:
		keyword := r.PostForm.Get("keyword")
		err = ed.Edit(func(s *models.ModerationSettings) error {
			s.RemoveKeyword(keyword)
			return nil
		})
	case actionSave:
		if err = applyModerationForm(ed, r); err == nil {
			err = saveDraft(r, ed, backend)
		}
	default:
		err = utils.NewBadRequestError("Unknown action")
	}

	p.flashError(w, err)
	http.Redirect(w, r, constants.PageDashboardModeration, http.StatusSeeOther)
}

// applyModerationForm copies the submitted toggles into the draft. Keyword
// buttons post without the toggles, so a form without them is left alone.
func applyModerationForm(ed *editor.Editor[models.ModerationSettings], r *http.Request) error {
	if _, ok := r.PostForm[constants.ColumnPostPunishmentType]; !ok {
		return nil
	}
	patch, err := parseModerationForm(r.PostForm)
	if err != nil {
		return err
	}
	return ed.Edit(func(s *models.ModerationSettings) error {
		patch.Apply(s)
		return nil
	})
}

// Config shows the monitor credentials draft.
func (p *Pages) Config(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		http.Redirect(w, r, constants.PageLogin, http.StatusFound)
		return
	}

	ed := p.credentials.Get(id.DraftKey())
	if err := ed.EnsureLoaded(r.Context(), p.backends.CredentialsBackend(id.AccessToken, id.UserID)); err != nil {
		log.Debug().Err(err).Str(constants.UserIDContextKey, id.UserID).Msg("Config page rendered without stored credentials")
	}

	state := ed.Snapshot()
	ed.ClearMessages()
	p.render(w, r, http.StatusOK, "config", &pageData{
		Title:   "Configuration",
		Flash:   p.popFlash(w, r),
		Content: state,
	})
}

// UpdateConfig applies the credentials form to the draft and saves it when
// the save button was used.
func (p *Pages) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentity(r)
	if !ok {
		http.Redirect(w, r, constants.PageLogin, http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	ed := p.credentials.Get(id.DraftKey())
	backend := p.backends.CredentialsBackend(id.AccessToken, id.UserID)
	if err := ed.EnsureLoaded(r.Context(), backend); err != nil {
		http.Redirect(w, r, constants.PageDashboardConfig, http.StatusSeeOther)
		return
	}

	patch := parseCredentialsForm(r.PostForm)
	err := ed.Edit(func(f *models.CredentialsForm) error {
		patch.Apply(f)
		return nil
	})
	if err == nil {
		switch r.PostForm.Get("action") {
		case actionUpdate:
		case actionSave:
			err = saveDraft(r, ed, backend)
		default:
			err = utils.NewBadRequestError("Unknown action")
		}
	}

	p.flashError(w, err)
	http.Redirect(w, r, constants.PageDashboardConfig, http.StatusSeeOther)
}

// saveDraft saves the draft. A failed save is kept in the editor state and
// shown by the page, so only a save that never started is returned.
func saveDraft[T any](r *http.Request, ed *editor.Editor[T], backend editor.Backend[T]) error {
	err := ed.Save(r.Context(), backend)
	if err != nil && (editor.IsSaveInProgress(err) || errors.Is(err, editor.ErrNotLoaded)) {
		return err
	}
	return nil
}

// flashError shows err on the next page.
func (p *Pages) flashError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	p.setFlash(w, utils.ParseError(err).Message)
}
