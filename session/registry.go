package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks the creation time of every live session. Registration
// happens exactly once per session, at creation; removal happens on sweep
// or on ingestion teardown. All access goes through the mutex: the sweeper
// enumerates while handlers insert.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]time.Time

	now func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]time.Time),
		now:      time.Now,
	}
}

func (r *Registry) Register(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = r.now()
}

func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Contains(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Expired returns the ids whose age at now strictly exceeds ttl.
func (r *Registry) Expired(ttl time.Duration, now time.Time) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []uuid.UUID
	for id, createdAt := range r.sessions {
		if now.Sub(createdAt) > ttl {
			expired = append(expired, id)
		}
	}
	return expired
}
