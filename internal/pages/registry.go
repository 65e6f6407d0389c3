package pages

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/platform/apierr"
	"github.com/yungbote/learnpages/internal/platform/clock"
)

// ErrSessionOwner is returned when a session id is presented by a learner
// other than the one the session was created for.
var ErrSessionOwner = fmt.Errorf("session belongs to another learner: %w", apierr.ErrForbidden)

// Registry keeps one Store per session id. A session is bound to the learner
// (uuid.Nil for anonymous callers) that first used it.
type Registry struct {
	clock clock.Source

	mu     sync.Mutex
	stores map[uuid.UUID]*sessionStore
	onNew  []func(sessionID uuid.UUID, st *Store)
}

type sessionStore struct {
	owner uuid.UUID
	store *Store
}

func NewRegistry(clk clock.Source) *Registry {
	if clk == nil {
		clk = clock.System{}
	}
	return &Registry{clock: clk, stores: map[uuid.UUID]*sessionStore{}}
}

// OnNewStore registers fn to run whenever a session store is created.
func (r *Registry) OnNewStore(fn func(sessionID uuid.UUID, st *Store)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onNew = append(r.onNew, fn)
}

// For returns the store for sess.SessionID, creating it if needed, and keeps
// its session info current. A nil SessionID yields a fresh, unregistered
// store. A session bound to a different learner yields ErrSessionOwner and
// leaves that session's store untouched.
func (r *Registry) For(sess Session) (*Store, error) {
	if sess.SessionID == uuid.Nil {
		st := NewStore(r.clock)
		st.Dispatch(Unscoped, SetSession(sess))
		return st, nil
	}

	r.mu.Lock()
	entry, ok := r.stores[sess.SessionID]
	var hooks []func(uuid.UUID, *Store)
	if !ok {
		entry = &sessionStore{owner: sess.LearnerID, store: NewStore(r.clock)}
		r.stores[sess.SessionID] = entry
		hooks = append(hooks, r.onNew...)
	}
	r.mu.Unlock()

	if entry.owner != sess.LearnerID {
		return nil, ErrSessionOwner
	}
	st := entry.store

	for _, fn := range hooks {
		fn(sess.SessionID, st)
	}
	if st.Snapshot().Session != sess {
		st.Dispatch(Unscoped, SetSession(sess))
	}
	return st, nil
}

// Get returns the store for sessionID without creating one.
func (r *Registry) Get(sessionID uuid.UUID) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.stores[sessionID]
	if !ok {
		return nil, false
	}
	return entry.store, true
}

// Sweep drops stores that have not changed for longer than idle and returns
// how many were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.clock.Now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.stores {
		if entry.store.Snapshot().UpdatedAt.Before(cutoff) {
			delete(r.stores, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
