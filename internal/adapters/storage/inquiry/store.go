package inquiry

import (
	"context"

	"lawoffice/internal/domain/dal"
	domain "lawoffice/internal/domain/inquiry"
)

// Store persists contact inquiries.
type Store interface {
	List(ctx context.Context, q dal.Query) ([]domain.Inquiry, error)
	Count(ctx context.Context, q dal.Query) (int, error)
	GetByID(ctx context.Context, id string) (domain.Inquiry, error)
	Insert(ctx context.Context, i domain.Inquiry) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
}
