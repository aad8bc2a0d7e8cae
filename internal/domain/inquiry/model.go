package inquiry

import (
	"strings"
	"time"

	"lawoffice/internal/domain/apperror"
)

// Status constants. New inquiries start as pending.
const (
	StatusPending   = "pending"
	StatusContacted = "contacted"
	StatusConverted = "converted"
	StatusClosed    = "closed"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPending, StatusContacted, StatusConverted, StatusClosed}

// Preferred contact channels.
const (
	ContactEmail = "email"
	ContactPhone = "phone"
)

// DefaultSubject is used when the visitor leaves the subject empty.
const DefaultSubject = "Consulta desde sitio web"

// MaxMessageLength bounds the free-text message.
const MaxMessageLength = 5000

// ConsultationTypes offered by the public form.
var ConsultationTypes = []ConsultationType{
	{"general", "Consulta General"},
	{"civil", "Derecho Civil"},
	{"penal", "Derecho Penal"},
	{"familiar", "Derecho Familiar"},
	{"laboral", "Derecho Laboral"},
	{"empresarial", "Derecho Empresarial"},
	{"migratorio", "Derecho Migratorio"},
}

// ConsultationType is a value/label pair.
type ConsultationType struct {
	Value string
	Label string
}

// Inquiry is a persisted contact form submission.
type Inquiry struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	Subject          string
	ConsultationType string
	Message          string
	PreferredContact string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Form is the public contact form state.
type Form struct {
	Name             string
	Email            string
	Phone            string
	Subject          string
	ConsultationType string
	Message          string
	PreferredContact string
}

// NewForm returns the defaults of an empty contact form.
func NewForm() Form {
	return Form{ConsultationType: "general", PreferredContact: ContactEmail}
}

// Validate reports field-scoped violations.
// POST: returns *apperror.ValidationError or nil
func (f *Form) Validate() error {
	v := apperror.Violations{}
	v.Required("name", f.Name, "El nombre es requerido")
	v.Required("message", f.Message, "El mensaje es requerido")
	email := strings.TrimSpace(f.Email)
	if email == "" {
		v.Add("email", "El email es requerido")
	} else if !apperror.IsValidEmail(email) {
		v.Add("email", "Por favor ingresa un email válido")
	}
	if len(f.Message) > MaxMessageLength {
		v.Add("message", "El mensaje es demasiado largo")
	}
	if f.PreferredContact != "" && f.PreferredContact != ContactEmail && f.PreferredContact != ContactPhone {
		v.Add("preferred_contact", "Medio de contacto no válido")
	}
	return v.Err()
}

// Build validates the form and produces a pending inquiry.
// POST: Status is pending; Subject defaults to DefaultSubject
func (f Form) Build(id string, now time.Time) (Inquiry, error) {
	if err := f.Validate(); err != nil {
		return Inquiry{}, err
	}
	subject := strings.TrimSpace(f.Subject)
	if subject == "" {
		subject = DefaultSubject
	}
	preferred := f.PreferredContact
	if preferred == "" {
		preferred = ContactEmail
	}
	consultation := f.ConsultationType
	if consultation == "" {
		consultation = "general"
	}
	return Inquiry{
		ID:               id,
		Name:             strings.TrimSpace(f.Name),
		Email:            strings.TrimSpace(f.Email),
		Phone:            strings.TrimSpace(f.Phone),
		Subject:          subject,
		ConsultationType: consultation,
		Message:          strings.TrimSpace(f.Message),
		PreferredContact: preferred,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
