package inquiry_test

import (
	"testing"
	"time"

	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/inquiry"
)

func TestForm_Build(t *testing.T) {
	now := time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		form       inquiry.Form
		wantFields []string
	}{
		{"valid", inquiry.Form{Name: "Eva", Email: "eva@x.com", Message: "Hola"}, nil},
		{"all missing", inquiry.Form{}, []string{"name", "email", "message"}},
		{"bad email", inquiry.Form{Name: "Eva", Email: "eva", Message: "Hola"}, []string{"email"}},
		{"bad channel", inquiry.Form{Name: "Eva", Email: "eva@x.com", Message: "Hola", PreferredContact: "fax"}, []string{"preferred_contact"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.Build("i1", now)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Status != inquiry.StatusPending || got.Subject != inquiry.DefaultSubject {
					t.Errorf("unexpected inquiry %+v", got)
				}
				if got.PreferredContact != inquiry.ContactEmail || got.ConsultationType != "general" {
					t.Errorf("defaults not applied: %+v", got)
				}
				return
			}
			fields := apperror.FieldErrors(err)
			for _, f := range tt.wantFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("expected %s violation, got %v", f, err)
				}
			}
		})
	}
}
