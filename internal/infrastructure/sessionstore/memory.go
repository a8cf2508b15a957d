package sessionstore

import (
	"context"
	"encoding/json"
	"sync"
)

type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(ctx context.Context, s Session) error {
	if !s.complete() {
		return ErrIncomplete
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &Session{Token: s.Token, User: append(json.RawMessage(nil), s.User...)}
	return nil
}

func (m *MemoryStore) Load(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	cp := *m.session
	return &cp, nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
