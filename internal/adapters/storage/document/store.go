package document

import (
	"context"

	"lawoffice/internal/domain/dal"
	domain "lawoffice/internal/domain/document"
)

// Store persists document metadata. Reads carry case title and client name.
type Store interface {
	List(ctx context.Context, q dal.Query) ([]domain.WithContext, error)
	Count(ctx context.Context, q dal.Query) (int, error)
	GetByID(ctx context.Context, id string) (domain.WithContext, error)
	Insert(ctx context.Context, d domain.Document) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
	DetachCase(ctx context.Context, caseID string) (int, error)
}
