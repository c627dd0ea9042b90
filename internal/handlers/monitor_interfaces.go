package handlers

import (
	"github.com/skout-hq/skout/internal/editor"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/service"
)

// MonitorBackends builds the per-request backends of the two config editors.
type MonitorBackends interface {
	CredentialsBackend(token, userID string) editor.Backend[models.CredentialsForm]
	ModerationBackend(token, userID string) editor.Backend[models.ModerationSettings]
}

// DraftStore hands out the editor of a session.
type DraftStore[T any] interface {
	Get(sessionID string) *editor.Editor[T]
}

var (
	_ MonitorBackends                       = (*service.MonitorService)(nil)
	_ DraftStore[models.CredentialsForm]    = (*editor.Registry[models.CredentialsForm])(nil)
	_ DraftStore[models.ModerationSettings] = (*editor.Registry[models.ModerationSettings])(nil)
)
