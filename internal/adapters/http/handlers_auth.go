package web

import (
	"errors"
	"log/slog"
	"net/http"

	"lawoffice/internal/adapters/http/middleware"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/domain/access"
	"lawoffice/internal/domain/apperror"
)

// Messages shown on the login form.
const (
	loginFailedMessage = "Email o contraseña incorrectos"
	loginLockedMessage = "Cuenta bloqueada temporalmente por demasiados intentos. Inténtelo más tarde."
)

// afterLogin picks the post-login destination: the preserved local path
// when there is one, otherwise the role's home. A session still loading
// its profile lands on the home page.
func afterLogin(next string, snap access.Snapshot) string {
	if dest, ok := access.SafeNext(next); ok {
		return dest
	}
	if snap.State != access.StateReady {
		return "/"
	}
	return access.HomeFor(snap.Role)
}

func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if snap := middleware.SnapshotFromContext(r.Context()); snap.State == access.StateReady {
		http.Redirect(w, r, afterLogin(next, snap), http.StatusSeeOther)
		return
	}
	renderPage(w, r, "login.html", map[string]any{"Next": next})
}

// handleLogin serves POST /login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	email := r.FormValue("email")
	next := r.FormValue("next")

	token, snap, err := services.Sessions.SignIn(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if !apperror.IsAuthError(err) {
			internalError(w, r, err)
			return
		}
		msg := loginFailedMessage
		if errors.Is(err, apperror.ErrAccountLocked) {
			msg = loginLockedMessage
		}
		renderTemplate(w, r, http.StatusUnauthorized, "login.html", map[string]any{
			"Email": email,
			"Next":  next,
			"Error": msg,
		})
		return
	}

	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, afterLogin(next, snap), http.StatusSeeOther)
}

// handleLogout serves POST /logout. The local session is cleared even if
// the backend delete fails.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromContext(r.Context()); token != "" {
		if err := services.Sessions.SignOut(r.Context(), token); err != nil {
			slog.Warn("auth_event", "event", "sign_out_failed", "error", err)
		}
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func handleSignUpForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "signup.html", map[string]any{})
}

// handleSignUp serves POST /signup: it creates a client account and signs
// it in.
func handleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	email := r.FormValue("email")
	password := r.FormValue("password")
	data := map[string]any{"Email": email}

	if password != r.FormValue("password_confirm") {
		renderInvalid(w, r, "signup.html", data, &apperror.ValidationError{
			Fields: apperror.Violations{"password_confirm": "Las contraseñas no coinciden"},
		})
		return
	}

	_, err := orchestrators.ExecuteSignUp(r.Context(), email, password, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		ProfileStore: stores.ProfileStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		renderFormError(w, r, "signup.html", data, err)
		return
	}

	token, snap, err := services.Sessions.SignIn(r.Context(), email, password)
	if err != nil {
		slog.Warn("auth_event", "event", "sign_in_after_signup_failed", "error", err)
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return
	}
	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, afterLogin("", snap), http.StatusSeeOther)
}

// handleClientPortal serves the client area placeholder.
func handleClientPortal(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "client_portal.html", nil)
}

func handlePasswordForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "change_password.html", map[string]any{"Changed": r.URL.Query().Get("changed") == "1"})
}

// handlePasswordChange serves POST /account/password for any signed-in
// role.
func handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	snap := middleware.SnapshotFromContext(r.Context())
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       snap.AccountID,
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		renderFormError(w, r, "change_password.html", map[string]any{"Changed": false}, err)
		return
	}
	http.Redirect(w, r, "/account/password?changed=1", http.StatusSeeOther)
}
