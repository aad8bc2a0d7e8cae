package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"lawoffice/internal/adapters/events"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/legalcase"
)

// CaseStoreForOrchestrator defines the store interface needed by case orchestrators.
type CaseStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (legalcase.WithClient, error)
	Insert(ctx context.Context, c legalcase.Case) error
	Save(ctx context.Context, c legalcase.Case) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
}

// ClientLister lists clients for the case editor.
type ClientLister interface {
	List(ctx context.Context, q dal.Query) ([]client.Client, error)
}

// DocumentDetacher clears the case reference on documents.
type DocumentDetacher interface {
	DetachCase(ctx context.Context, caseID string) (int, error)
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Envelope) error
}

// CaseDeps holds dependencies for the case orchestrators. Events is optional.
type CaseDeps struct {
	CaseStore     CaseStoreForOrchestrator
	ClientStore   ClientLister
	DocumentStore DocumentDetacher
	Events        EventPublisher
	GenerateID    func() string
	Now           func() time.Time
}

// SaveCaseInput carries the editor state. An empty ID creates a case.
type SaveCaseInput struct {
	ID    string
	Draft legalcase.Draft
}

// ActiveClientIDs loads the set of clients the case editor offers.
func ActiveClientIDs(ctx context.Context, clients ClientLister) (map[string]bool, error) {
	list, err := clients.List(ctx, dal.Query{OrderBy: "first_name"}.Where(dal.Eq("active", true)))
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(list))
	for _, c := range list {
		ids[c.ID] = true
	}
	return ids, nil
}

// ExecuteSaveCase creates or updates a case from the editor.
// POST: the chosen client is active; a case_number already in use is
// reported on the case_number field
func ExecuteSaveCase(ctx context.Context, input SaveCaseInput, deps CaseDeps) (legalcase.Case, error) {
	active, err := ActiveClientIDs(ctx, deps.ClientStore)
	if err != nil {
		return legalcase.Case{}, err
	}

	creating := input.ID == ""
	base := legalcase.Case{}
	if creating {
		base.ID = deps.GenerateID()
	} else {
		existing, err := deps.CaseStore.GetByID(ctx, input.ID)
		if err != nil {
			return legalcase.Case{}, err
		}
		base = existing.Case
		// The current owner stays selectable even if it was deactivated.
		active[existing.ClientID] = true
	}
	prevStatus := base.Status

	c, err := input.Draft.Build(base, active, deps.Now())
	if err != nil {
		return legalcase.Case{}, err
	}
	if creating {
		err = deps.CaseStore.Insert(ctx, c)
	} else {
		err = deps.CaseStore.Save(ctx, c)
	}
	if err != nil {
		if apperror.IsConflict(err) {
			return legalcase.Case{}, &apperror.ValidationError{Fields: apperror.Violations{"case_number": "El número de caso ya existe"}}
		}
		return legalcase.Case{}, err
	}

	slog.Info("case_event", "event", "case_saved", "id", c.ID, "case_number", c.CaseNumber, "created", creating)
	if c.Status == legalcase.StatusClosed && prevStatus != legalcase.StatusClosed {
		publishCaseClosed(ctx, deps, c.ID, c.CaseNumber)
	}
	return c, nil
}

// UpdateCaseFieldsInput carries the inline status/priority selectors.
// Empty fields are left unchanged.
type UpdateCaseFieldsInput struct {
	ID       string
	Status   string
	Priority string
}

// ExecuteUpdateCaseFields applies the list view's inline selectors. Any
// status may follow any other.
// POST: unknown values are reported as field errors and nothing is written
func ExecuteUpdateCaseFields(ctx context.Context, input UpdateCaseFieldsInput, deps CaseDeps) error {
	v := apperror.Violations{}
	patch := dal.Patch{}
	if input.Status != "" {
		if legalcase.IsValidStatus(input.Status) {
			patch["status"] = input.Status
		} else {
			v.Add("status", "Estado no válido")
		}
	}
	if input.Priority != "" {
		if legalcase.IsValidPriority(input.Priority) {
			patch["priority"] = input.Priority
		} else {
			v.Add("priority", "Prioridad no válida")
		}
	}
	if err := v.Err(); err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	var before legalcase.WithClient
	if input.Status == legalcase.StatusClosed {
		var err error
		if before, err = deps.CaseStore.GetByID(ctx, input.ID); err != nil {
			return err
		}
	}
	if err := deps.CaseStore.Update(ctx, input.ID, patch); err != nil {
		return err
	}
	slog.Info("case_event", "event", "case_fields_updated", "id", input.ID, "status", input.Status, "priority", input.Priority)
	if input.Status == legalcase.StatusClosed && before.Status != legalcase.StatusClosed {
		publishCaseClosed(ctx, deps, input.ID, before.CaseNumber)
	}
	return nil
}

// ExecuteDeleteCase removes a case and detaches its documents.
// PRE: input.Confirmed is true
// POST: documents of the case survive with case_id cleared
func ExecuteDeleteCase(ctx context.Context, input DeleteInput, deps CaseDeps) error {
	if !input.Confirmed {
		return ErrConfirmationRequired
	}
	n, err := deps.DocumentStore.DetachCase(ctx, input.ID)
	if err != nil {
		return err
	}
	if err := deps.CaseStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("case_event", "event", "case_deleted", "id", input.ID, "detached_documents", n)
	return nil
}

func publishCaseClosed(ctx context.Context, deps CaseDeps, id, number string) {
	if deps.Events == nil {
		return
	}
	err := deps.Events.Publish(ctx, events.Envelope{
		Name:       events.CaseClosed,
		EntityID:   id,
		OccurredAt: deps.Now(),
		Data:       map[string]string{"case_number": number},
	})
	if err != nil {
		slog.Warn("event_publish_failed", "name", events.CaseClosed, "id", id, "error", err)
	}
}
