package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"lawoffice/internal/adapters/email"
	"lawoffice/internal/adapters/events"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/inquiry"
)

// InquiryStoreForOrchestrator defines the store interface needed by inquiry orchestrators.
type InquiryStoreForOrchestrator interface {
	Insert(ctx context.Context, i inquiry.Inquiry) error
	Update(ctx context.Context, id string, patch dal.Patch) error
}

// ContactDeps holds dependencies for the contact form. Sender and Events
// are optional; OfficeEmail empty disables the notification.
type ContactDeps struct {
	InquiryStore InquiryStoreForOrchestrator
	Sender       email.Sender
	OfficeEmail  string
	Events       EventPublisher
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSubmitInquiry records a contact form submission.
// POST: the inquiry is stored as pending; the office notification and the
// inquiry.created event are attempted afterwards and their failures are
// only logged
func ExecuteSubmitInquiry(ctx context.Context, form inquiry.Form, deps ContactDeps) (inquiry.Inquiry, error) {
	inq, err := form.Build(deps.GenerateID(), deps.Now())
	if err != nil {
		return inquiry.Inquiry{}, err
	}
	if err := deps.InquiryStore.Insert(ctx, inq); err != nil {
		return inquiry.Inquiry{}, err
	}
	slog.Info("contact_event", "event", "inquiry_received", "id", inq.ID, "consultation_type", inq.ConsultationType)

	notifyOffice(ctx, inq, deps)
	if deps.Events != nil {
		err := deps.Events.Publish(ctx, events.Envelope{
			Name:       events.InquiryCreated,
			EntityID:   inq.ID,
			OccurredAt: inq.CreatedAt,
			Data: map[string]string{
				"consultation_type": inq.ConsultationType,
				"preferred_contact": inq.PreferredContact,
			},
		})
		if err != nil {
			slog.Warn("event_publish_failed", "name", events.InquiryCreated, "id", inq.ID, "error", err)
		}
	}
	return inq, nil
}

func notifyOffice(ctx context.Context, inq inquiry.Inquiry, deps ContactDeps) {
	if deps.Sender == nil || deps.OfficeEmail == "" {
		return
	}
	req, err := email.InquiryNotification(inq, deps.OfficeEmail)
	if err == nil {
		_, err = deps.Sender.Send(ctx, req)
	}
	if err != nil {
		slog.Warn("inquiry_notification_failed", "id", inq.ID, "error", err)
	}
}

// ExecuteUpdateInquiryStatus sets an inquiry's status. Any status may
// follow any other.
// POST: an unknown status is a field error on status and nothing is written
func ExecuteUpdateInquiryStatus(ctx context.Context, id, status string, store InquiryStoreForOrchestrator) error {
	if !inquiry.IsValidStatus(status) {
		return &apperror.ValidationError{Fields: apperror.Violations{"status": "Estado no válido"}}
	}
	if err := store.Update(ctx, id, dal.Patch{"status": status}); err != nil {
		return err
	}
	slog.Info("contact_event", "event", "inquiry_status_changed", "id", id, "status", status)
	return nil
}
