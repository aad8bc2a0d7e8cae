package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lawoffice/internal/domain/account"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/profile"
)

// AccountStoreForCreate defines the store interface needed by SignUp and SeedAdmin.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Delete(ctx context.Context, id string) error
}

// ProfileStoreForCreate defines the profile store interface needed by SignUp and SeedAdmin.
type ProfileStoreForCreate interface {
	Save(ctx context.Context, p profile.Profile) error
	CountByRole(ctx context.Context, role string) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email    string
	Password string
	Role     string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	ProfileStore ProfileStoreForCreate
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateAccount creates an account and its profile.
// PRE: Role is admin or client
// POST: on success both rows exist, on failure neither does; a field-scoped
// *apperror.ValidationError reports a bad email, a short password or an
// email already in use
// INVARIANT: Email is unique (case-insensitive)
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	if !profile.IsValidRole(input.Role) {
		return "", profile.ErrInvalidRole
	}
	now := deps.Now()
	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     account.NormalizeEmail(input.Email),
		CreatedAt: now,
	}

	v := apperror.Violations{}
	if err := acct.Validate(); err != nil {
		v.Add("email", err.Error())
	}
	if err := acct.SetPassword(input.Password); err != nil {
		v.Add("password", err.Error())
	}
	if err := v.Err(); err != nil {
		return "", err
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, acct.Email); err == nil {
		return "", &apperror.ValidationError{Fields: apperror.Violations{"email": ErrEmailAlreadyExists.Error()}}
	} else if !apperror.IsNotFound(err) {
		return "", err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		if apperror.IsConflict(err) {
			return "", &apperror.ValidationError{Fields: apperror.Violations{"email": ErrEmailAlreadyExists.Error()}}
		}
		return "", err
	}
	if err := deps.ProfileStore.Save(ctx, profile.Profile{ID: acct.ID, Role: input.Role, CreatedAt: now, UpdatedAt: now}); err != nil {
		// An account without a profile could sign in but never leave the
		// loading state, so the account row goes too.
		if delErr := deps.AccountStore.Delete(ctx, acct.ID); delErr != nil {
			slog.Error("account_rollback_failed", "account_id", acct.ID, "error", delErr)
		}
		return "", fmt.Errorf("create profile: %w", err)
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", input.Role)
	return acct.ID, nil
}

// ErrEmailAlreadyExists is reported on the email field at sign-up.
var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteSignUp creates a client account from the public sign-up form.
func ExecuteSignUp(ctx context.Context, email, password string, deps CreateAccountDeps) (string, error) {
	return ExecuteCreateAccount(ctx, CreateAccountInput{Email: email, Password: password, Role: profile.RoleClient}, deps)
}

// ExecuteSeedAdmin creates the admin account when no admin profile exists.
// PRE: Database is migrated
// POST: at least one admin profile exists; running it again is a no-op
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.ProfileStore.CountByRole(ctx, profile.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if email == "" || password == "" {
		slog.Warn("auth_event", "event", "admin_seed_skipped", "reason", "no credentials configured")
		return nil
	}

	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Password: password,
		Role:     profile.RoleAdmin,
	}, deps)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
