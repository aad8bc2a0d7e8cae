package blog

import (
	"context"

	domain "lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/dal"
)

// Store persists blog posts.
type Store interface {
	List(ctx context.Context, q dal.Query) ([]domain.Post, error)
	Count(ctx context.Context, q dal.Query) (int, error)
	GetByID(ctx context.Context, id string) (domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)
	Insert(ctx context.Context, p domain.Post) error
	Save(ctx context.Context, p domain.Post) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
}
