package session

import (
	"sync"

	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

// Registry hands out one synchronizer per access session, so every signed-in
// connection tracks its own profile cache and lifecycle state.
type Registry struct {
	fetcher ProfileFetcher
	revoker SessionRevoker
	logg    *logger.Logger
	opts    []Option

	mu       sync.Mutex
	sessions map[string]*Synchronizer
}

// NewRegistry wires the shared synchronizer dependencies. Options apply to
// every synchronizer the registry creates.
func NewRegistry(fetcher ProfileFetcher, revoker SessionRevoker, logg *logger.Logger, opts ...Option) (*Registry, error) {
	if fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profile fetcher required")
	}
	if revoker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session revoker required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Registry{
		fetcher:  fetcher,
		revoker:  revoker,
		logg:     logg,
		opts:     opts,
		sessions: make(map[string]*Synchronizer),
	}, nil
}

// ForSession returns the synchronizer bound to the access session, creating
// it on first use.
func (r *Registry) ForSession(accessID string) *Synchronizer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[accessID]; ok {
		return existing
	}
	// Dependencies were validated in NewRegistry.
	created, _ := NewSynchronizer(r.fetcher, r.revoker, r.logg, r.opts...)
	r.sessions[accessID] = created
	return created
}

// Clear drops the session's synchronizer, clearing its cached profile first.
// Clearing an unknown session is a no-op.
func (r *Registry) Clear(accessID string) {
	r.mu.Lock()
	existing, ok := r.sessions[accessID]
	delete(r.sessions, accessID)
	r.mu.Unlock()

	if ok {
		existing.OnSessionCleared()
	}
}

// Len reports the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
