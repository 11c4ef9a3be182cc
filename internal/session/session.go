// Package session issues and resolves opaque bearer sessions for the single
// admin account. Each session carries its own CSRF token, checked on
// mutating requests.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Session is one authenticated login.
type Session struct {
	Token     string    `json:"token"`
	CSRFToken string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists sessions. Implementations expire sessions on their own;
// Get never returns an expired session.
type Store interface {
	Create(ctx context.Context, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

func newSession(ttl time.Duration, now time.Time) (*Session, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	csrf, err := randomToken()
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, CSRFToken: csrf, ExpiresAt: now.Add(ttl)}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
