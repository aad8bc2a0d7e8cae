package profile

import (
	"context"

	domain "lawoffice/internal/domain/profile"
)

// Store persists Profile state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	Save(ctx context.Context, value domain.Profile) error
	CountByRole(ctx context.Context, role string) (int, error)
}
