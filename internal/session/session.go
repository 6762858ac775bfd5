package session

import (
	"sync"
	"time"
)

// Session holds the document text of one chat. It starts empty, is replaced
// wholesale on every new extraction and wiped on reset.
type Session struct {
	mu        sync.Mutex
	text      string
	touchedAt time.Time
	now       func() time.Time
}

func newSession(now func() time.Time) *Session {
	return &Session{touchedAt: now(), now: now}
}

// Set replaces the stored text unconditionally.
func (s *Session) Set(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	s.touchedAt = s.now()
}

// Get returns the stored text or "" when nothing was set.
func (s *Session) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touchedAt = s.now()

	return s.text
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = ""
	s.touchedAt = s.now()
}

func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.touchedAt
}
