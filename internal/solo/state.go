// Package solo keeps the ephemeral per-process state of solo (no-login)
// listening rounds: the active work, the current take draw, played markers and
// locally saved questionnaire notes. Nothing here survives a restart.
package solo

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cariocaphil/blind-aria/internal/notes"
)

// State is one solo listener's round.
type State struct {
	ID         string
	WorkID     string
	TakeIDs    []string
	TakeCount  int
	Generation uint64

	// notes persist across work changes (keyed by work::take), played
	// markers are reset whenever the active work changes.
	notes  map[string]notes.Payload
	played map[string]map[string]bool

	touched time.Time
	mu      sync.Mutex
}

// SetWork switches the state to a new work and take draw. The played markers
// of the new work start empty; saved notes are kept so a listener can return
// to an earlier work without losing annotations.
func (s *State) SetWork(workID string, takeIDs []string, takeCount int, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.WorkID = workID
	s.TakeIDs = takeIDs
	s.TakeCount = takeCount
	s.Generation = generation
	s.played[workID] = map[string]bool{}
	s.touched = time.Now()
}

// SetTakes replaces only the take draw (reshuffle of the same work).
func (s *State) SetTakes(takeIDs []string, takeCount int, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TakeIDs = takeIDs
	s.TakeCount = takeCount
	s.Generation = generation
	s.played[s.WorkID] = map[string]bool{}
	s.touched = time.Now()
}

// HasTake reports whether takeID is part of the current draw.
func (s *State) HasTake(takeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.TakeIDs {
		if id == takeID {
			return true
		}
	}
	return false
}

// SaveNote stores the questionnaire payload for a take, replacing any
// previous save for the same (work, take) pair.
func (s *State) SaveNote(workID, takeID string, p notes.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes[notes.Key(workID, takeID)] = p
	s.touched = time.Now()
}

// Note returns the saved payload for a take, if any.
func (s *State) Note(workID, takeID string) (notes.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.notes[notes.Key(workID, takeID)]
	return p, ok
}

// MarkPlayed records that the listener started playback of a take.
func (s *State) MarkPlayed(workID, takeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.played[workID]
	if !ok {
		set = map[string]bool{}
		s.played[workID] = set
	}
	set[takeID] = true
	s.touched = time.Now()
}

// Played returns the take ids of the work the listener has already started.
func (s *State) Played(workID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []string{}
	for id := range s.played[workID] {
		out = append(out, id)
	}
	return out
}

// Snapshot returns the current work and draw under the lock.
func (s *State) Snapshot() (workID string, takeIDs []string, takeCount int, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(s.TakeIDs))
	copy(ids, s.TakeIDs)
	return s.WorkID, ids, s.TakeCount, s.Generation
}

// Store is the in-memory registry of solo states.
type Store struct {
	states map[string]*State
	mu     sync.RWMutex
}

func NewStore() *Store {
	return &Store{states: make(map[string]*State)}
}

// Create registers a fresh empty state and returns it.
func (st *Store) Create() *State {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := &State{
		ID:      uuid.New().String(),
		notes:   make(map[string]notes.Payload),
		played:  make(map[string]map[string]bool),
		touched: time.Now(),
	}
	st.states[s.ID] = s
	return s
}

// Get returns the state with the given id.
func (st *Store) Get(id string) (*State, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.states[id]
	return s, ok
}

// Sweep drops states untouched for longer than maxAge and reports how many
// were removed.
func (st *Store) Sweep(maxAge time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, s := range st.states {
		s.mu.Lock()
		stale := s.touched.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(st.states, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live states.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.states)
}
