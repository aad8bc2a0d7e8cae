package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"lawoffice/internal/domain/appointment"
)

// AppointmentStoreForOrchestrator defines the store interface needed by SaveAppointment.
type AppointmentStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (appointment.WithClient, error)
	Insert(ctx context.Context, a appointment.Appointment) error
	Save(ctx context.Context, a appointment.Appointment) error
}

// AppointmentDeps holds dependencies for SaveAppointment. Location
// interprets the editor's local date-times.
type AppointmentDeps struct {
	AppointmentStore AppointmentStoreForOrchestrator
	Location         *time.Location
	GenerateID       func() string
	Now              func() time.Time
}

// SaveAppointmentInput carries the editor state. An empty ID creates one.
type SaveAppointmentInput struct {
	ID    string
	Draft appointment.Draft
}

// ExecuteSaveAppointment creates or updates an appointment.
// POST: end_time is after start_time; new appointments default to scheduled
func ExecuteSaveAppointment(ctx context.Context, input SaveAppointmentInput, deps AppointmentDeps) (appointment.Appointment, error) {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	creating := input.ID == ""
	base := appointment.Appointment{}
	if creating {
		base.ID = deps.GenerateID()
	} else {
		existing, err := deps.AppointmentStore.GetByID(ctx, input.ID)
		if err != nil {
			return appointment.Appointment{}, err
		}
		base = existing.Appointment
	}

	a, err := input.Draft.Build(base, loc, deps.Now())
	if err != nil {
		return appointment.Appointment{}, err
	}
	if creating {
		err = deps.AppointmentStore.Insert(ctx, a)
	} else {
		err = deps.AppointmentStore.Save(ctx, a)
	}
	if err != nil {
		return appointment.Appointment{}, err
	}
	slog.Info("appointment_event", "event", "appointment_saved", "id", a.ID, "start", a.StartTime, "created", creating)
	return a, nil
}
