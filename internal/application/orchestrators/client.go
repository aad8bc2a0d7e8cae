package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
)

// ClientStoreForOrchestrator defines the store interface needed by client orchestrators.
type ClientStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
	Insert(ctx context.Context, c client.Client) error
	Save(ctx context.Context, c client.Client) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
}

// CaseCounter counts cases, used to restrict client deletion.
type CaseCounter interface {
	Count(ctx context.Context, q dal.Query) (int, error)
}

// ClientDeps holds dependencies for the client orchestrators.
type ClientDeps struct {
	ClientStore ClientStoreForOrchestrator
	CaseStore   CaseCounter
	GenerateID  func() string
	Now         func() time.Time
}

// SaveClientInput carries the editor state. An empty ID creates a client.
type SaveClientInput struct {
	ID    string
	Draft client.Draft
}

// ErrClientHasCases is the field-less message shown when a client with
// cases is deleted.
const ErrClientHasCases = "El cliente tiene casos asociados y no puede eliminarse"

// ExecuteSaveClient creates or updates a client from the editor.
// POST: returns *apperror.ValidationError without touching the store when
// the draft is invalid
func ExecuteSaveClient(ctx context.Context, input SaveClientInput, deps ClientDeps) (client.Client, error) {
	base := client.Client{}
	creating := input.ID == ""
	if creating {
		base.ID = deps.GenerateID()
	} else {
		existing, err := deps.ClientStore.GetByID(ctx, input.ID)
		if err != nil {
			return client.Client{}, err
		}
		base = existing
	}

	c, err := input.Draft.Build(base, deps.Now())
	if err != nil {
		return client.Client{}, err
	}
	if creating {
		err = deps.ClientStore.Insert(ctx, c)
	} else {
		err = deps.ClientStore.Save(ctx, c)
	}
	if err != nil {
		return client.Client{}, err
	}
	slog.Info("client_event", "event", "client_saved", "id", c.ID, "created", creating)
	return c, nil
}

// ExecuteToggleClientActive flips the active flag.
func ExecuteToggleClientActive(ctx context.Context, id string, deps ClientDeps) (client.Client, error) {
	c, err := deps.ClientStore.GetByID(ctx, id)
	if err != nil {
		return client.Client{}, err
	}
	c.Active = !c.Active
	if err := deps.ClientStore.Update(ctx, id, dal.Patch{"active": c.Active}); err != nil {
		return client.Client{}, err
	}
	c.UpdatedAt = deps.Now()
	slog.Info("client_event", "event", "client_toggled", "id", id, "active", c.Active)
	return c, nil
}

// ExecuteDeleteClient removes a client that owns no cases.
// PRE: input.Confirmed is true
// POST: a client with cases is kept and a field-less ValidationError is
// returned; without confirmation no store call is made
func ExecuteDeleteClient(ctx context.Context, input DeleteInput, deps ClientDeps) error {
	if !input.Confirmed {
		return ErrConfirmationRequired
	}
	n, err := deps.CaseStore.Count(ctx, dal.Query{}.Where(dal.Eq("client_id", input.ID)))
	if err != nil {
		return err
	}
	if n > 0 {
		return &apperror.ValidationError{Fields: apperror.Violations{"": ErrClientHasCases}}
	}
	if err := deps.ClientStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("client_event", "event", "client_deleted", "id", input.ID)
	return nil
}
