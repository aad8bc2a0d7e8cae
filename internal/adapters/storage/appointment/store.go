package appointment

import (
	"context"

	domain "lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/dal"
)

// Store persists appointments. Reads carry the client's name.
type Store interface {
	List(ctx context.Context, q dal.Query) ([]domain.WithClient, error)
	Count(ctx context.Context, q dal.Query) (int, error)
	GetByID(ctx context.Context, id string) (domain.WithClient, error)
	Insert(ctx context.Context, a domain.Appointment) error
	Save(ctx context.Context, a domain.Appointment) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
}
