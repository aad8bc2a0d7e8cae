package legalcase

import (
	"context"

	"lawoffice/internal/domain/dal"
	domain "lawoffice/internal/domain/legalcase"
)

// Store persists cases. Reads carry the owning client's name.
type Store interface {
	List(ctx context.Context, q dal.Query) ([]domain.WithClient, error)
	Count(ctx context.Context, q dal.Query) (int, error)
	GetByID(ctx context.Context, id string) (domain.WithClient, error)
	Insert(ctx context.Context, c domain.Case) error
	Save(ctx context.Context, c domain.Case) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
}
