package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lawoffice/internal/adapters/monitoring"
	"lawoffice/internal/domain/access"
	"lawoffice/internal/domain/profile"
)

// EventKind names a session lifecycle change.
type EventKind string

const (
	SignedIn      EventKind = "signed_in"
	ProfileLoaded EventKind = "profile_loaded"
	SignedOut     EventKind = "signed_out"
)

// Event is delivered to subscribers after a lifecycle change.
type Event struct {
	Kind     EventKind
	Snapshot access.Snapshot
}

// Authenticator verifies credentials and returns the account identity.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (accountID, normalizedEmail string, err error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, email, password string) (string, string, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, email, password string) (string, string, error) {
	return f(ctx, email, password)
}

// ProfileReader loads the profile that carries an account's role.
type ProfileReader interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
}

// Provider is the session authority: it signs visitors in and out,
// resolves profiles and notifies subscribers.
type Provider struct {
	backend  Backend
	auth     Authenticator
	profiles ProfileReader
	now      func() time.Time

	mu        sync.RWMutex
	listeners map[int]func(Event)
	nextID    int
}

// NewProvider wires a provider over backend.
func NewProvider(backend Backend, auth Authenticator, profiles ProfileReader) *Provider {
	return &Provider{
		backend:   backend,
		auth:      auth,
		profiles:  profiles,
		now:       time.Now,
		listeners: make(map[int]func(Event)),
	}
}

// SignIn authenticates the credentials and opens a session.
// PRE: email and password come from the login form
// POST: on success returns the session token and its snapshot, which is
// loading when the profile could not be read yet; on failure no session
// exists and the authenticator's error is returned unchanged
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, access.Snapshot, error) {
	accountID, normalized, err := p.auth.Authenticate(ctx, email, password)
	if err != nil {
		return "", access.Anonymous, err
	}
	token, err := generateToken()
	if err != nil {
		return "", access.Anonymous, err
	}
	rec := Record{AccountID: accountID, Email: normalized, CreatedAt: p.now()}
	if err := p.backend.Put(ctx, token, rec); err != nil {
		return "", access.Anonymous, err
	}
	p.emit(Event{Kind: SignedIn, Snapshot: snapshotOf(rec)})

	snap, err := p.RefreshProfile(ctx, token)
	if err != nil {
		slog.Warn("session_profile_pending", "account_id", accountID, "error", err)
	}
	return token, snap, nil
}

// Current returns the snapshot for token without side effects.
// POST: unknown, expired or empty tokens yield access.Anonymous
func (p *Provider) Current(ctx context.Context, token string) access.Snapshot {
	if token == "" {
		return access.Anonymous
	}
	rec, err := p.backend.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			slog.Error("session_lookup_failed", "error", err)
		}
		return access.Anonymous
	}
	return snapshotOf(rec)
}

// RefreshProfile re-reads the profile behind token.
// PRE: token names a live session
// POST: a readable profile moves the session to ready and, when the role
// changed, notifies subscribers with ProfileLoaded; an unreadable profile
// leaves the session loading and returns the read error
func (p *Provider) RefreshProfile(ctx context.Context, token string) (access.Snapshot, error) {
	rec, err := p.backend.Get(ctx, token)
	if err != nil {
		return access.Anonymous, err
	}
	prof, err := p.profiles.GetByID(ctx, rec.AccountID)
	if err != nil {
		return snapshotOf(rec), err
	}
	if prof.Role == rec.Role {
		return snapshotOf(rec), nil
	}
	rec.Role = prof.Role
	if err := p.backend.Put(ctx, token, rec); err != nil {
		return snapshotOf(rec), err
	}
	snap := snapshotOf(rec)
	p.emit(Event{Kind: ProfileLoaded, Snapshot: snap})
	return snap, nil
}

// SignOut ends the session behind token.
// POST: the session is gone before subscribers hear about it; signing out
// an unknown token is not an error and notifies nobody
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	rec, getErr := p.backend.Get(ctx, token)
	if err := p.backend.Delete(ctx, token); err != nil {
		return err
	}
	if getErr == nil {
		slog.Info("auth_event", "event", "signed_out", "account_id", rec.AccountID)
		p.emit(Event{Kind: SignedOut, Snapshot: snapshotOf(rec)})
	}
	return nil
}

// Subscribe registers fn for lifecycle events.
// POST: returns a function that removes fn; calling it twice is harmless
func (p *Provider) Subscribe(fn func(Event)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// emit delivers ev to every listener outside the lock. A panicking
// listener is logged and does not stop delivery to the others.
func (p *Provider) emit(ev Event) {
	monitoring.SessionEvents.WithLabelValues(string(ev.Kind)).Inc()

	p.mu.RLock()
	fns := make([]func(Event), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.RUnlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("session_listener_panic", "event", ev.Kind, "panic", r)
				}
			}()
			fn(ev)
		}()
	}
}

func snapshotOf(rec Record) access.Snapshot {
	if rec.Role == "" {
		return access.Snapshot{State: access.StateLoading, AccountID: rec.AccountID, Email: rec.Email}
	}
	return access.Snapshot{State: access.StateReady, AccountID: rec.AccountID, Email: rec.Email, Role: rec.Role}
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
