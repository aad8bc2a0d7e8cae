package client

import (
	"context"

	domain "lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
)

// Store persists clients.
type Store interface {
	List(ctx context.Context, q dal.Query) ([]domain.Client, error)
	Count(ctx context.Context, q dal.Query) (int, error)
	GetByID(ctx context.Context, id string) (domain.Client, error)
	Insert(ctx context.Context, c domain.Client) error
	Save(ctx context.Context, c domain.Client) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
}
