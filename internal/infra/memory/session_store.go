package memory

import (
	"context"
	"sync"
	"time"

	"quiz-portal/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. Sessions
// die with the process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	clock    func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		clock:    time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if !session.ExpiresAt.After(s.clock()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) sweepLocked() {
	now := s.clock()
	for id, session := range s.sessions {
		if !session.ExpiresAt.After(now) {
			delete(s.sessions, id)
		}
	}
}
