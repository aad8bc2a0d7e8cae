package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"lawoffice/internal/domain/access"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const (
	snapshotContextKey contextKey = "snapshot"
	tokenContextKey    contextKey = "session_token"
)

// CookieName is the session cookie.
const CookieName = "lawoffice_session"

// SecureCookies marks the session cookie Secure. Set in production.
var SecureCookies = false

// RetryAfterSeconds is sent with the loading placeholder.
const RetryAfterSeconds = "2"

// SessionResolver turns a session token into a snapshot.
type SessionResolver interface {
	Current(ctx context.Context, token string) access.Snapshot
	RefreshProfile(ctx context.Context, token string) (access.Snapshot, error)
}

// Session returns middleware that resolves the session cookie into a
// snapshot on the request context. The profile is re-read on every
// request so a role change reaches the gate on the next navigation; when
// the read fails the stored snapshot is used. It never blocks a request;
// Gate does that.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := access.Anonymous
			token := ""
			if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
				snap = resolver.Current(r.Context(), token)
				if snap.State != access.StateNone {
					refreshed, err := resolver.RefreshProfile(r.Context(), token)
					if err != nil {
						slog.Warn("profile_refresh_failed", "account_id", snap.AccountID, "error", err)
					} else {
						snap = refreshed
					}
				}
			}
			ctx := context.WithValue(r.Context(), snapshotContextKey, snap)
			ctx = context.WithValue(ctx, tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Gate returns middleware enforcing req over the request's snapshot.
// Loading sessions get wait with 503 and Retry-After; missing identities
// and role mismatches are redirected.
func Gate(req access.Requirement, wait http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := SnapshotFromContext(r.Context())
			decision := access.Evaluate(snap, req, r.URL.RequestURI())
			switch decision.Outcome {
			case access.Wait:
				w.Header().Set("Retry-After", RetryAfterSeconds)
				w.Header().Set("Cache-Control", "no-store")
				wait.ServeHTTP(w, r)
			case access.Redirect:
				slog.Info("auth_event", "event", "gate_redirect", "path", r.URL.Path, "target", decision.Target, "state", snap.State.String())
				http.Redirect(w, r, decision.Target, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SnapshotFromContext returns the request's session snapshot, Anonymous
// when none was resolved.
func SnapshotFromContext(ctx context.Context) access.Snapshot {
	if snap, ok := ctx.Value(snapshotContextKey).(access.Snapshot); ok {
		return snap
	}
	return access.Anonymous
}

// TokenFromContext returns the request's session token, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// ContextWithSnapshot returns a context carrying snap.
// Intended for use in tests.
func ContextWithSnapshot(ctx context.Context, snap access.Snapshot) context.Context {
	return context.WithValue(ctx, snapshotContextKey, snap)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   86400, // 24 hours
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
