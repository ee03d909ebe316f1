package chat

import (
	"context"
	"sync"
)

// Store persists conversation sessions between webhook deliveries.
type Store interface {
	Get(ctx context.Context, phone string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, phone string) error
}

// MemoryStore keeps sessions in-process behind a mutex. Used in tests
// and single-instance dev setups; sessions die with the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(ctx context.Context, phone string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[phone]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (s *MemoryStore) Save(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.Phone] = &copied
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, phone)
	return nil
}
