// Package editor holds the per-session drafts behind the dashboard forms.
// A draft is loaded once, edited locally without touching the hosted backend
// and written back wholesale when the user saves.
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/metrics"
	"github.com/skout-hq/skout/internal/utils"
)

// ErrSaveInProgress is returned by Save while another save of the same draft runs.
var ErrSaveInProgress = utils.NewConflictError(constants.MsgSaveInProgress)

// ErrNotLoaded is returned when a draft is edited or saved before it was loaded.
var ErrNotLoaded = utils.NewConflictError("Configuration has not been loaded yet")

// Backend loads and saves one kind of draft for one user.
type Backend[T any] interface {
	Load(ctx context.Context) (T, error)
	Save(ctx context.Context, draft T) error
}

// State is a point-in-time view of an editor, as rendered by the pages and
// returned by the API.
type State[T any] struct {
	Draft   T      `json:"draft"`
	Loading bool   `json:"loading"`
	Saving  bool   `json:"saving"`
	Loaded  bool   `json:"loaded"`
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

// Editor is a draft of T plus its loading and saving flags.
type Editor[T any] struct {
	mu    sync.Mutex
	kind  string
	state State[T]
	clone func(T) T

	// savedMessage is shown after a successful save.
	savedMessage string

	// detached is set once the owning session is gone; results of calls
	// still in flight are discarded.
	detached bool
}

// New creates an editor whose draft starts as initial. clone copies a draft;
// nil means plain assignment, which is enough for types without slices or maps.
func New[T any](kind string, initial T, clone func(T) T) *Editor[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Editor[T]{
		kind:         kind,
		state:        State[T]{Draft: clone(initial)},
		clone:        clone,
		savedMessage: constants.MsgConfigSaved,
	}
}

// Kind names the editor in logs and metrics.
func (e *Editor[T]) Kind() string {
	return e.kind
}

// Load replaces the draft with the stored value. On failure the draft keeps
// its previous value and Error carries the backend message.
func (e *Editor[T]) Load(ctx context.Context, backend Backend[T]) error {
	e.mu.Lock()
	e.state.Loading = true
	e.state.Error = ""
	e.mu.Unlock()

	value, err := backend.Load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		log.Debug().Str("editor", e.kind).Msg("Discarded load result of a detached draft")
		return err
	}
	e.state.Loading = false
	if err != nil {
		e.state.Error = utils.ParseError(err).Message
		log.Warn().Err(err).Str("editor", e.kind).Msg("Failed to load draft")
		return err
	}
	e.state.Draft = e.clone(value)
	e.state.Loaded = true
	return nil
}

// EnsureLoaded loads the draft unless an earlier Load succeeded.
func (e *Editor[T]) EnsureLoaded(ctx context.Context, backend Backend[T]) error {
	e.mu.Lock()
	loaded := e.state.Loaded
	e.mu.Unlock()

	if loaded {
		return nil
	}
	return e.Load(ctx, backend)
}

// Edit changes the draft in place. Nothing is sent to the backend. If fn
// returns an error the draft is left unchanged.
func (e *Editor[T]) Edit(fn func(*T) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Loaded {
		return ErrNotLoaded
	}
	draft := e.clone(e.state.Draft)
	if err := fn(&draft); err != nil {
		return err
	}
	e.state.Draft = draft
	return nil
}

// Replace sets the whole draft.
func (e *Editor[T]) Replace(value T) error {
	return e.Edit(func(d *T) error {
		*d = value
		return nil
	})
}

// Save writes the current draft wholesale. Only one save runs at a time; a
// second caller gets ErrSaveInProgress.
func (e *Editor[T]) Save(ctx context.Context, backend Backend[T]) error {
	e.mu.Lock()
	if !e.state.Loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if e.state.Saving {
		e.mu.Unlock()
		return ErrSaveInProgress
	}
	e.state.Saving = true
	e.state.Error = ""
	e.state.Success = ""
	draft := e.clone(e.state.Draft)
	e.mu.Unlock()

	start := time.Now()
	err := backend.Save(ctx, draft)
	metrics.EditorSavesTotal.WithLabelValues(e.kind, metrics.Outcome(err)).Inc()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		log.Debug().Str("editor", e.kind).Msg("Discarded save result of a detached draft")
		return err
	}
	e.state.Saving = false
	if err != nil {
		e.state.Error = utils.ParseError(err).Message
		log.Warn().Err(err).Str("editor", e.kind).Dur("duration", time.Since(start)).Msg("Failed to save draft")
		return err
	}
	e.state.Success = e.savedMessage
	log.Debug().Str("editor", e.kind).Dur("duration", time.Since(start)).Msg("Draft saved")
	return nil
}

// ClearMessages resets Error and Success.
func (e *Editor[T]) ClearMessages() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Error = ""
	e.state.Success = ""
}

// Snapshot returns a copy of the editor state.
func (e *Editor[T]) Snapshot() State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	s.Draft = e.clone(e.state.Draft)
	return s
}

func (e *Editor[T]) detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
}

func (e *Editor[T]) busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Saving || e.state.Loading
}

// IsSaveInProgress reports whether err came from a concurrent Save.
func IsSaveInProgress(err error) bool {
	return errors.Is(err, ErrSaveInProgress)
}
