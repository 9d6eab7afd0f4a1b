package negotiation

import (
	"sort"
	"sync"

	"github.com/parleyhq/parley/internal/errors"
)

// Registry is the process-wide table of sessions. Sessions stay
// registered after they finish so history and logs remain retrievable;
// there is no automatic expiry.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session under its id. A duplicate id is rejected with
// ErrSessionExists.
func (r *Registry) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID()]; ok {
		return errors.ErrSessionExists
	}
	r.sessions[s.ID()] = s
	return nil
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.ErrNoSuchSession
	}
	return s, nil
}

// Stop stops the named session. Stopping an absent or already-stopped
// session succeeds silently.
func (r *Registry) Stop(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if ok {
		s.Stop()
	}
}

// StopAll stops every registered session. Used on server shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.Stop()
	}
}

// List returns the registered session ids, sorted.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
