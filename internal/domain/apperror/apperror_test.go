package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"lawoffice/internal/domain/apperror"
)

// TestIsValidEmail covers the local@domain.tld shape check.
func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.com", true},
		{"maria.lopez@bufete.es", true},
		{"not-an-email", false},
		{"", false},
		{"a@b", false},
		{"a b@c.com", false},
		{"a@@b.com", false},
		{"@b.com", false},
	}
	for _, tt := range tests {
		if got := apperror.IsValidEmail(tt.in); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestViolations_Err(t *testing.T) {
	v := apperror.Violations{}
	if v.Err() != nil {
		t.Fatal("expected nil error for empty violations")
	}
	v.Required("title", "   ", "El título es requerido")
	v.Required("content", "texto", "El contenido es requerido")
	err := v.Err()
	if err == nil {
		t.Fatal("expected validation error")
	}
	fields := apperror.FieldErrors(fmt.Errorf("save: %w", err))
	if fields["title"] == "" {
		t.Errorf("expected title violation, got %v", fields)
	}
	if _, ok := fields["content"]; ok {
		t.Errorf("content should not be flagged")
	}
}

func TestStoreError_Conflict(t *testing.T) {
	base := errors.New("UNIQUE constraint failed: blog_posts.slug")
	err := fmt.Errorf("insert: %w", apperror.NewStoreError("insert", "blog_posts", "2067", true, base))
	if !apperror.IsConflict(err) {
		t.Error("expected conflict")
	}
	if !errors.Is(err, base) {
		t.Error("expected StoreError to unwrap to the driver error")
	}
	if apperror.IsNotFound(err) {
		t.Error("conflict must not read as not found")
	}
}

func TestIsAuthError(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", apperror.ErrInvalidCredentials)
	if !apperror.IsAuthError(wrapped) {
		t.Error("wrapped credentials error not recognised")
	}
	if !errors.Is(wrapped, apperror.ErrInvalidCredentials) {
		t.Error("errors.Is lost the sentinel")
	}
	if errors.Is(apperror.ErrAccountLocked, apperror.ErrInvalidCredentials) {
		t.Error("locked and invalid credentials must stay distinct")
	}
	if apperror.IsAuthError(errors.New("boom")) {
		t.Error("plain error reported as auth error")
	}
}
