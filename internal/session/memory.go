package session

import (
	"context"
	"sync"
	"time"
)

// Memory is the default in-process session store. Expired entries are
// swept lazily on access and opportunistically on Create.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// SetClock overrides the time source for tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Memory) Create(_ context.Context, ttl time.Duration) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := newSession(ttl, m.now())
	if err != nil {
		return nil, err
	}
	m.sweepLocked()
	m.sessions[s.Token] = s
	return s, nil
}

// Get returns the session for token, or (nil, nil) when absent or expired.
func (m *Memory) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, token)
		return nil, nil
	}
	return s, nil
}

func (m *Memory) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

func (m *Memory) sweepLocked() {
	now := m.now()
	for token, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
}
