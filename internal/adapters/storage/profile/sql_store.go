package profile

import (
	"context"
	"fmt"
	"strings"

	"lawoffice/internal/adapters/storage"
	domain "lawoffice/internal/domain/profile"
)

const table = "profiles"

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new profile store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves the profile of an account.
// PRE: id is an account ID
// POST: Returns the profile or an error wrapping apperror.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	var p domain.Profile
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, role, created_at, updated_at FROM profiles WHERE id = ?", id,
	).Scan(&p.ID, &p.Role, &createdAt, &updatedAt)
	if err != nil {
		return domain.Profile{}, storage.Classify("get", table, err)
	}
	p.CreatedAt, _ = storage.ParseTime(createdAt)
	p.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return p, nil
}

// Save inserts or updates a profile.
// PRE: value has been validated and its account exists
// POST: the profile row reflects value
func (s *SQLStore) Save(ctx context.Context, value domain.Profile) error {
	fields := []string{"id", "role", "created_at", "updated_at"}
	placeholders := []string{"?", "?", "?", "?"}
	updates := []string{"role=excluded.role", "updated_at=excluded.updated_at"}

	query := fmt.Sprintf(
		"INSERT INTO profiles (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
	_, err := s.db.ExecContext(ctx, query,
		value.ID,
		value.Role,
		storage.FormatTime(value.CreatedAt),
		storage.FormatTime(value.UpdatedAt),
	)
	return storage.Classify("save", table, err)
}

// CountByRole returns how many profiles carry role.
func (s *SQLStore) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles WHERE role = ?", role).Scan(&n)
	return n, storage.Classify("count", table, err)
}
