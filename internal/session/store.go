// Package session manages per-conversation state records.
package session

import (
	"sync"
	"time"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

// Store manages conversation sessions. Get creates a session on first
// use of an ID; Lock hands out the per-session turn lock that enforces
// the single-writer-per-session discipline.
type Store interface {
	// Get returns the session for the ID, creating it if absent.
	Get(id string) *domain.Session

	// Lock acquires the session's turn lock and returns the release
	// func. A new turn for a session with an in-flight turn queues
	// behind it rather than running concurrently.
	Lock(id string) func()

	// Touch updates the session's last-activity timestamp.
	Touch(id string)

	// Save flushes the session's current state. In-memory stores treat
	// this as a timestamp update; durable stores write through.
	Save(sess *domain.Session)

	// Expire removes sessions idle longer than maxAge, returning the
	// number removed.
	Expire(now time.Time, maxAge time.Duration) int

	// List returns all session IDs.
	List() []string
}

type entry struct {
	sess *domain.Session
	turn sync.Mutex
}

// MemoryStore is the in-memory Store implementation. Conversation state
// is non-durable by design; process lifetime bounds session lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry)}
}

func (s *MemoryStore) Get(id string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		return e.sess
	}

	sess := &domain.Session{
		ID:        id,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.entries[id] = &entry{sess: sess}
	return sess
}

func (s *MemoryStore) Lock(id string) func() {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{sess: &domain.Session{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()}}
		s.entries[id] = e
	}
	s.mu.Unlock()

	e.turn.Lock()
	return e.turn.Unlock
}

func (s *MemoryStore) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.sess.UpdatedAt = time.Now()
	}
}

func (s *MemoryStore) Save(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = time.Now()
	if e, ok := s.entries[sess.ID]; ok {
		e.sess = sess
	}
}

func (s *MemoryStore) Expire(now time.Time, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.sess.UpdatedAt) > maxAge {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// Sweeper runs Expire on an interval until the stop channel closes.
type Sweeper struct {
	store    Store
	maxAge   time.Duration
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper creates a background expiry sweeper.
func NewSweeper(store Store, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (w *Sweeper) Start() {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.store.Expire(time.Now(), w.maxAge)
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit.
func (w *Sweeper) Stop() {
	close(w.stop)
	<-w.done
}
