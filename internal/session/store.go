package session

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultMaxEntries = 10_000
	DefaultIdleTTL    = 24 * time.Hour
)

// Store owns the sessions of every chat. Sessions idle for longer than the TTL
// are swept, and when the store is full the least recently used one is evicted.
type Store struct {
	mu         sync.Mutex
	entries    map[int64]*list.Element
	order      *list.List
	maxEntries int
	idleTTL    time.Duration
	now        func() time.Time
}

type storeEntry struct {
	chatID  int64
	session *Session
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(maxEntries int, idleTTL time.Duration, opts ...Option) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}

	s := &Store{
		entries:    make(map[int64]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		idleTTL:    idleTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the session of chatID, creating an empty one on first use.
func (s *Store) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[chatID]; ok {
		entry, castOk := elem.Value.(*storeEntry)
		if castOk {
			s.order.MoveToFront(elem)

			return entry.session
		}
		s.removeElement(elem)
	}

	entry := &storeEntry{chatID: chatID, session: newSession(s.now)}
	s.entries[chatID] = s.order.PushFront(entry)

	s.enforceSizeLimitLocked()

	return entry.session
}

// Reset drops the session of chatID so the next Get starts from scratch.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[chatID]; ok {
		s.removeElement(elem)
	}
}

// Sweep removes sessions idle since before now minus the TTL and returns how
// many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.idleTTL)
	removed := 0

	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()

		entry, ok := elem.Value.(*storeEntry)
		if !ok || entry.session.TouchedAt().Before(cutoff) {
			s.removeElement(elem)
			removed++
		}
		elem = prev
	}

	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *Store) enforceSizeLimitLocked() {
	for len(s.entries) > s.maxEntries {
		elem := s.order.Back()
		if elem == nil {
			return
		}
		s.removeElement(elem)
	}
}

func (s *Store) removeElement(elem *list.Element) {
	if entry, ok := elem.Value.(*storeEntry); ok {
		delete(s.entries, entry.chatID)
	}
	s.order.Remove(elem)
}
