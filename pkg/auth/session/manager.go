// Package session tracks active access-token sessions in Redis so tokens
// can be revoked before they expire.
package session

import (
	"context"
	"errors"
	"time"
)

type sessionStore interface {
	StoreSession(ctx context.Context, userID, tokenID string, ttl time.Duration) error
	SessionExists(ctx context.Context, userID, tokenID string) (bool, error)
	RevokeSession(ctx context.Context, userID, tokenID string) error
}

// Checker is the read-only surface used by auth middleware.
type Checker interface {
	HasSession(ctx context.Context, userID, tokenID string) (bool, error)
}

// Manager registers and revokes sessions keyed by user id and token id.
type Manager struct {
	store sessionStore
	ttl   time.Duration
}

// NewManager wires a session manager over a redis-backed store.
func NewManager(store sessionStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Register records a freshly minted token as an active session.
func (m *Manager) Register(ctx context.Context, userID, tokenID string) error {
	if userID == "" || tokenID == "" {
		return errors.New("user id and token id are required")
	}
	return m.store.StoreSession(ctx, userID, tokenID, m.ttl)
}

// HasSession reports whether the token is still registered.
func (m *Manager) HasSession(ctx context.Context, userID, tokenID string) (bool, error) {
	if userID == "" || tokenID == "" {
		return false, nil
	}
	return m.store.SessionExists(ctx, userID, tokenID)
}

// Revoke removes the session so the token stops being accepted.
func (m *Manager) Revoke(ctx context.Context, userID, tokenID string) error {
	if userID == "" || tokenID == "" {
		return errors.New("user id and token id are required")
	}
	return m.store.RevokeSession(ctx, userID, tokenID)
}
