// Package session keeps signed-in sessions and tells listeners when a
// session is established, resolves its profile, or ends.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TTL is how long a session stays valid after sign-in.
const TTL = 24 * time.Hour

// ErrNoSession is returned by backends for unknown or expired tokens.
var ErrNoSession = errors.New("session not found")

// Record is what a backend keeps per token. Role stays empty until the
// account's profile has been read.
type Record struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the record is past TTL at now.
func (r Record) Expired(now time.Time) bool {
	return now.Sub(r.CreatedAt) > TTL
}

// Backend stores session records by token.
type Backend interface {
	Put(ctx context.Context, token string, rec Record) error
	Get(ctx context.Context, token string) (Record, error)
	Delete(ctx context.Context, token string) error
}

// MemoryBackend is an in-process session store.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]Record
	now      func() time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		sessions: make(map[string]Record),
		now:      time.Now,
	}
}

// Put stores rec under token, replacing any previous record.
// PRE: token is non-empty
// POST: Get(token) returns rec until it expires
func (m *MemoryBackend) Put(_ context.Context, token string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = rec
	return nil
}

// Get retrieves the record for token.
// PRE: token is non-empty
// POST: Returns ErrNoSession for unknown tokens; expired records are dropped
func (m *MemoryBackend) Get(_ context.Context, token string) (Record, error) {
	m.mu.RLock()
	rec, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return Record{}, ErrNoSession
	}
	if rec.Expired(m.now()) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return Record{}, ErrNoSession
	}
	return rec, nil
}

// Delete removes a session by token.
// POST: Session with given token is removed
func (m *MemoryBackend) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
