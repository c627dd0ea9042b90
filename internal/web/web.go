// Package web serves the server-rendered site: marketing and docs pages, the
// login and sign-up forms and the dashboard. Forms post back to the same path
// and redirect afterwards, so a reload never resubmits.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/editor"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sessions is the part of the session manager the pages use.
type Sessions interface {
	SignUp(ctx context.Context, in session.SignUpInput) (*models.AuthState, error)
	SignIn(ctx context.Context, email, password string) (*models.AuthState, error)
	SignOut(ctx context.Context, sid string) error
	ExchangeCode(ctx context.Context, code, verifier string) (*models.AuthState, error)
}

// Backends builds the per-request backends of the two config editors.
type Backends interface {
	CredentialsBackend(token, userID string) editor.Backend[models.CredentialsForm]
	ModerationBackend(token, userID string) editor.Backend[models.ModerationSettings]
}

// Drafts hands out the editor of a session.
type Drafts[T any] interface {
	Get(sessionID string) *editor.Editor[T]
}

var _ Sessions = (*session.Manager)(nil)

// Options controls cookies set by the pages.
type Options struct {
	SessionTTL    time.Duration
	SecureCookies bool
}

// Pages renders the site.
type Pages struct {
	sessions    Sessions
	backends    Backends
	credentials Drafts[models.CredentialsForm]
	moderation  Drafts[models.ModerationSettings]
	templates   map[string]*template.Template
	opts        Options
}

// pageNames lists every template under templates/ that renders a full page.
var pageNames = []string{
	"home", "features", "pricing", "about", "privacy", "terms",
	"docs", "docs_quick_start", "docs_api_auth", "docs_auto_mod", "docs_best_practices",
	"login", "signup",
	"overview", "punishments", "history", "moderation", "config",
}

// New parses the embedded templates.
func New(sessions Sessions, backends Backends, credentials Drafts[models.CredentialsForm], moderation Drafts[models.ModerationSettings], opts Options) (*Pages, error) {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = constants.DefaultSessionTTL
	}

	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &Pages{
		sessions:    sessions,
		backends:    backends,
		credentials: credentials,
		moderation:  moderation,
		templates:   templates,
		opts:        opts,
	}, nil
}

var templateFuncs = template.FuncMap{
	"year": func() int { return time.Now().Year() },
}

// pageData is what every template receives.
type pageData struct {
	Title       string
	Path        string
	User        *auth.Identity
	DisplayName string
	Flash       string
	Error       string
	From        string
	Form        map[string]string
	Content     interface{}
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data *pageData) {
	tmpl, ok := p.templates[name]
	if !ok {
		log.Error().Str("template", name).Msg("Unknown page template")
		http.Error(w, constants.MsgInternalServerError, http.StatusInternalServerError)
		return
	}

	data.Path = r.URL.Path
	if id, ok := auth.GetIdentity(r); ok {
		data.User = id
		data.DisplayName = displayName(id)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, constants.MsgInternalServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeHTML)
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Str("template", name).Msg("Client went away while rendering")
	}
}

// displayName prefers the profile name and falls back to the email.
func displayName(id *auth.Identity) string {
	if id.Session != nil && id.Session.Profile != nil {
		if name := id.Session.Profile.FullName(); name != "" {
			return name
		}
	}
	return id.Email
}

// NotFound sends unknown paths to the home page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, constants.PageHome, http.StatusFound)
}
