// Package access decides whether a protected page renders, waits for the
// session to settle, or redirects.
package access

import (
	"net/url"
	"strings"

	"lawoffice/internal/domain/profile"
)

// Paths the gate redirects to.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// State is the coarse state of a session snapshot.
type State int

const (
	// StateNone means no authenticated identity.
	StateNone State = iota
	// StateLoading means the identity is known but its profile is not.
	StateLoading
	// StateReady means identity and profile are both known.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "none"
	}
}

// Snapshot is a read-only view of the current session.
type Snapshot struct {
	State     State
	AccountID string
	Email     string
	Role      string // set only when State == StateReady
}

// Anonymous is the snapshot of a visitor without a session.
var Anonymous = Snapshot{State: StateNone}

// IsAdmin reports a ready admin session.
func (s Snapshot) IsAdmin() bool {
	return s.State == StateReady && s.Role == profile.RoleAdmin
}

// IsClient reports a ready client session.
func (s Snapshot) IsClient() bool {
	return s.State == StateReady && s.Role == profile.RoleClient
}

// Requirement lists the role checks a protected subtree needs.
type Requirement struct {
	Admin  bool
	Client bool
}

// Outcome is the kind of gate decision.
type Outcome int

const (
	// Allow renders the protected content.
	Allow Outcome = iota
	// Wait renders a loading placeholder and performs no redirect.
	Wait
	// Redirect sends the visitor to Decision.Target.
	Redirect
)

// Decision is the result of Evaluate.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Evaluate applies the gate rules in order: loading first, then missing
// identity, then the admin and client role checks. from is the original
// destination preserved for the post-login return.
func Evaluate(s Snapshot, req Requirement, from string) Decision {
	switch {
	case s.State == StateLoading:
		return Decision{Outcome: Wait}
	case s.State == StateNone:
		return Decision{Outcome: Redirect, Target: LoginRedirect(from)}
	case req.Admin && s.Role != profile.RoleAdmin:
		return Decision{Outcome: Redirect, Target: UnauthorizedPath}
	case req.Client && s.Role != profile.RoleClient:
		return Decision{Outcome: Redirect, Target: UnauthorizedPath}
	}
	return Decision{Outcome: Allow}
}

// LoginRedirect returns the sign-in path carrying from as the return
// destination. Non-local destinations are dropped.
func LoginRedirect(from string) string {
	next, ok := SafeNext(from)
	if !ok {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext accepts only local absolute paths so the post-login redirect
// cannot leave the site.
func SafeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	if next == LoginPath || strings.HasPrefix(next, LoginPath+"?") {
		return "", false
	}
	return next, true
}

// HomeFor is the landing page after sign-in when no destination was kept.
func HomeFor(role string) string {
	if role == profile.RoleAdmin {
		return "/admin"
	}
	return "/client"
}
