package editor

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type entry[T any] struct {
	editor   *Editor[T]
	lastUsed time.Time
}

// Registry keeps one editor of a kind per session.
type Registry[T any] struct {
	mu      sync.Mutex
	kind    string
	entries map[string]*entry[T]
	idleTTL time.Duration
	factory func() *Editor[T]
	now     func() time.Time
}

// NewRegistry creates a registry whose editors come from factory and are
// forgotten after idleTTL without use.
func NewRegistry[T any](kind string, idleTTL time.Duration, factory func() *Editor[T]) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[string]*entry[T]),
		idleTTL: idleTTL,
		factory: factory,
		now:     time.Now,
	}
}

// Get returns the editor of sessionID, creating it on first use.
func (r *Registry[T]) Get(sessionID string) *Editor[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry[T]{editor: r.factory()}
		r.entries[sessionID] = e
	}
	e.lastUsed = r.now()
	return e.editor
}

// Drop forgets the editor of sessionID. A load or save still running on it
// finishes against the backend but no longer updates the draft.
func (r *Registry[T]) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		e.editor.detach()
		delete(r.entries, sessionID)
	}
}

// Sweep forgets editors idle for longer than the idle TTL and returns how
// many were removed. Editors with a load or save in flight are kept.
func (r *Registry[T]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	for sid, e := range r.entries {
		if e.lastUsed.After(cutoff) || e.editor.busy() {
			continue
		}
		delete(r.entries, sid)
		removed++
	}
	if removed > 0 {
		log.Debug().Str("editor", r.kind).Int("removed", removed).Msg("Swept idle drafts")
	}
	return removed
}

// Len returns the number of live editors.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweeper is a registry of any kind.
type Sweeper interface {
	Drop(sessionID string)
	Sweep() int
}

// Group fans Drop and Sweep out to several registries.
type Group []Sweeper

// Drop forgets the drafts of sessionID in every registry.
func (g Group) Drop(sessionID string) {
	for _, s := range g {
		s.Drop(sessionID)
	}
}

// Sweep sweeps every registry and returns the total removed.
func (g Group) Sweep() int {
	total := 0
	for _, s := range g {
		total += s.Sweep()
	}
	return total
}
