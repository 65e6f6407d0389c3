package pages

import (
	"sync"

	"github.com/yungbote/learnpages/internal/platform/clock"
)

// Unscoped dispatches are applied regardless of the current generation.
const Unscoped uint64 = 0

// Listener observes every applied action together with the resulting state.
// Listeners run with the store locked and must not call back into it.
type Listener func(a Action, s State)

// Store is the page state container for one learner session.
type Store struct {
	clock clock.Source

	mu        sync.Mutex
	state     State
	gen       uint64
	nextID    int
	listeners map[int]Listener
}

func NewStore(clk clock.Source) *Store {
	if clk == nil {
		clk = clock.System{}
	}
	return &Store{
		clock:     clk,
		listeners: map[int]Listener{},
		state:     State{UpdatedAt: clk.Now()},
	}
}

// Begin starts a new pipeline generation and returns its token. Dispatches
// carrying an older token are dropped from then on.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Dispatch applies a if gen is current (or Unscoped) and reports whether it
// was applied.
func (s *Store) Dispatch(gen uint64, a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != Unscoped && gen != s.gen {
		return false
	}
	version := s.state.Version + 1
	s.state = Reduce(s.state, a)
	s.state.Version = version
	s.state.UpdatedAt = s.clock.Now()
	for _, l := range s.listeners {
		l(a, s.state)
	}
	return true
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
