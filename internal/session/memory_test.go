package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s, err := m.Create(ctx, time.Hour)
	if err != nil {
		t.Fatalf("creating: %v", err)
	}
	if len(s.Token) != 64 || len(s.CSRFToken) != 64 {
		t.Errorf("tokens should be 32 random bytes hex-encoded, got %d/%d chars", len(s.Token), len(s.CSRFToken))
	}
	if s.Token == s.CSRFToken {
		t.Error("session and CSRF tokens must differ")
	}

	got, err := m.Get(ctx, s.Token)
	if err != nil || got == nil {
		t.Fatalf("fetching: %v, %v", got, err)
	}
	if got.CSRFToken != s.CSRFToken {
		t.Error("CSRF token not round-tripped")
	}

	if err := m.Delete(ctx, s.Token); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if got, _ := m.Get(ctx, s.Token); got != nil {
		t.Error("session survived delete")
	}
}

func TestMemoryUnknownToken(t *testing.T) {
	m := NewMemory()

	got, err := m.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	if got != nil {
		t.Error("unknown token should resolve to nil, not an error")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	s, err := m.Create(ctx, time.Minute)
	if err != nil {
		t.Fatalf("creating: %v", err)
	}

	now = now.Add(59 * time.Second)
	if got, _ := m.Get(ctx, s.Token); got == nil {
		t.Error("session expired early")
	}

	now = now.Add(time.Second)
	if got, _ := m.Get(ctx, s.Token); got != nil {
		t.Error("session should expire at its TTL")
	}

	// Expired entries are swept on the next create.
	if _, err := m.Create(ctx, time.Minute); err != nil {
		t.Fatalf("creating: %v", err)
	}
	m.mu.Lock()
	n := len(m.sessions)
	m.mu.Unlock()
	if n != 1 {
		t.Errorf("expected only the live session retained, got %d", n)
	}
}
