package account_test

import (
	"testing"
	"time"

	"lawoffice/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{"valid", account.Account{ID: "1", Email: "abogada@bufete.es"}, nil},
		{"empty email", account.Account{ID: "2", Email: "  "}, account.ErrEmptyEmail},
		{"no tld", account.Account{ID: "3", Email: "abogada@bufete"}, account.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccount_Password(t *testing.T) {
	var a account.Account
	if err := a.SetPassword("short"); err != account.ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if err := a.CheckPassword("correct horse battery"); err != nil {
		t.Errorf("expected password to match: %v", err)
	}
	if err := a.CheckPassword("wrong password!!"); err != account.ErrWrongPassword {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var a account.Account
	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
	}
	if a.IsLocked(now) {
		t.Fatal("account locked too early")
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now.Add(time.Minute)) {
		t.Fatal("expected account to be locked")
	}
	if a.IsLocked(now.Add(account.LockoutDuration + time.Second)) {
		t.Error("lock should expire after the lockout duration")
	}
	a.ResetFailedLogins()
	if a.FailedLogins != 0 || !a.LockedUntil.IsZero() {
		t.Error("reset did not clear lockout state")
	}
}
