package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"lawoffice/internal/domain/account"
	"lawoffice/internal/domain/apperror"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

// ExecuteChangePassword checks the current password and replaces it.
// PRE: AccountID belongs to the signed-in session
// POST: PasswordHash is replaced and the failed-login counter cleared, or
// a *apperror.ValidationError names the offending field
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	v := apperror.Violations{}
	v.Required("current_password", input.CurrentPassword, "Indique su contraseña actual")
	v.Required("new_password", input.NewPassword, "Indique la nueva contraseña")
	if input.NewPassword != input.ConfirmPassword {
		v.Add("confirm_password", "Las contraseñas no coinciden")
	}
	if err := v.Err(); err != nil {
		return err
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		return &apperror.ValidationError{Fields: apperror.Violations{"current_password": "La contraseña actual no es correcta"}}
	}
	if input.CurrentPassword == input.NewPassword {
		return &apperror.ValidationError{Fields: apperror.Violations{"new_password": "La nueva contraseña debe ser distinta de la actual"}}
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		if errors.Is(err, account.ErrPasswordTooShort) {
			return &apperror.ValidationError{Fields: apperror.Violations{"new_password": "La contraseña debe tener al menos 12 caracteres"}}
		}
		return err
	}
	acct.ResetFailedLogins()

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "password_changed", "account_id", input.AccountID)
	return nil
}
