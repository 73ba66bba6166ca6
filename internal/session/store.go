// Package session holds the per-page-load identity store and the route guard built on it.
package session

import (
	"context"
	"sync"

	"github.com/noah-isme/grading-portal/internal/models"
)

// State is the resolution state of a Store.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is an immutable view of a Store.
type Snapshot struct {
	State State        `json:"state"`
	User  *models.User `json:"user"`
}

// Loading reports whether identity is still unknown.
func (s Snapshot) Loading() bool { return s.State == StateLoading }

// Authenticated reports whether a user is known.
func (s Snapshot) Authenticated() bool { return s.State == StateAuthenticated }

// IsAdmin reports whether the resolved user is an administrator.
func (s Snapshot) IsAdmin() bool { return s.Authenticated() && s.User.IsAdmin() }

// Fetcher asks the backend who the caller is.
type Fetcher func(ctx context.Context) (*models.User, error)

// Store resolves identity exactly once. Leaving the loading state is final.
type Store struct {
	once sync.Once
	mu   sync.RWMutex
	snap Snapshot
	done chan struct{}
}

// NewStore returns a store in the loading state.
func NewStore() *Store {
	return &Store{done: make(chan struct{})}
}

// Load issues the identity request on first call and is a no-op afterwards. Any fetch
// error, including 401 and 403, resolves to unauthenticated and is otherwise dropped.
func (s *Store) Load(ctx context.Context, fetch Fetcher) {
	s.once.Do(func() {
		go func() {
			user, err := fetch(ctx)
			s.resolve(user, err)
		}()
	})
}

func (s *Store) resolve(user *models.User, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.State != StateLoading {
		return
	}
	if err != nil || user == nil {
		s.snap = Snapshot{State: StateUnauthenticated}
	} else {
		u := *user
		s.snap = Snapshot{State: StateAuthenticated, User: &u}
	}
	close(s.done)
}

// Snapshot returns the current state without blocking.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Done is closed once the store has left the loading state.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the store resolves or ctx ends, then returns the current snapshot,
// which is still loading in the latter case.
func (s *Store) Wait(ctx context.Context) Snapshot {
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return s.Snapshot()
}
