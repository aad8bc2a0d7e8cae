package appointment

import (
	"strings"
	"time"

	"lawoffice/internal/domain/apperror"
)

// Type constants
const (
	TypeConsultation = "consultation"
	TypeCourt        = "court"
	TypeMeeting      = "meeting"
	TypeDeadline     = "deadline"
)

// ValidTypes contains all valid appointment types.
var ValidTypes = []string{TypeConsultation, TypeCourt, TypeMeeting, TypeDeadline}

// Status constants
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusScheduled, StatusCompleted, StatusCancelled}

// FormLayout is the HTML datetime-local layout used by the editor.
const FormLayout = "2006-01-02T15:04"

// Appointment is the persisted appointment row.
type Appointment struct {
	ID           string
	ClientID     string
	CaseID       string
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	Type         string
	Status       string
	Location     string
	ReminderSent bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WithClient is an appointment joined with the client's name.
type WithClient struct {
	Appointment
	ClientName string
}

// Draft is the editor form state for an appointment.
type Draft struct {
	ClientID    string
	CaseID      string
	Title       string
	Description string
	StartTime   string
	EndTime     string
	Type        string
	Status      string
	Location    string
}

// Validate reports field-scoped violations. loc interprets the
// datetime-local inputs.
// POST: returns *apperror.ValidationError or nil
func (d *Draft) Validate(loc *time.Location) error {
	v := apperror.Violations{}
	v.Required("title", d.Title, "El título es requerido")
	start, startErr := time.ParseInLocation(FormLayout, d.StartTime, loc)
	if startErr != nil {
		v.Add("start_time", "La hora de inicio es requerida")
	}
	end, endErr := time.ParseInLocation(FormLayout, d.EndTime, loc)
	if endErr != nil {
		v.Add("end_time", "La hora de fin es requerida")
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		v.Add("end_time", "La hora de fin debe ser posterior al inicio")
	}
	if !contains(ValidTypes, d.Type) {
		v.Add("type", "Tipo no válido")
	}
	if d.Status != "" && !contains(ValidStatuses, d.Status) {
		v.Add("status", "Estado no válido")
	}
	return v.Err()
}

// Build validates the draft and produces the row to persist on top of
// base (zero Appointment when creating).
func (d Draft) Build(base Appointment, loc *time.Location, now time.Time) (Appointment, error) {
	if err := d.Validate(loc); err != nil {
		return Appointment{}, err
	}
	a := base
	a.ClientID = d.ClientID
	a.CaseID = d.CaseID
	a.Title = strings.TrimSpace(d.Title)
	a.Description = strings.TrimSpace(d.Description)
	a.StartTime, _ = time.ParseInLocation(FormLayout, d.StartTime, loc)
	a.EndTime, _ = time.ParseInLocation(FormLayout, d.EndTime, loc)
	a.Type = d.Type
	a.Status = d.Status
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	a.Location = strings.TrimSpace(d.Location)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return a, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
