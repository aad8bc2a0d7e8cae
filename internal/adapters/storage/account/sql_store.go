package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"lawoffice/internal/adapters/storage"
	domain "lawoffice/internal/domain/account"
)

const table = "accounts"

const selectColumns = "SELECT id, email, password_hash, created_at, failed_logins, locked_until FROM accounts"

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new account store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping apperror.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	if err != nil {
		return domain.Account{}, storage.Classify("get", table, err)
	}
	return entity, nil
}

// GetByEmail retrieves an Account by its normalized email.
// PRE: email is non-empty
// POST: Returns the entity or an error wrapping apperror.ErrNotFound
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE email = ?", domain.NormalizeEmail(email))
	entity, err := scanAccount(row.Scan)
	if err != nil {
		return domain.Account{}, storage.Classify("get_by_email", table, err)
	}
	return entity, nil
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); a taken email is a conflict
func (s *SQLStore) Save(ctx context.Context, entity domain.Account) error {
	fields := []string{"id", "email", "password_hash", "created_at", "failed_logins", "locked_until"}
	placeholders := []string{"?", "?", "?", "?", "?", "?"}
	updates := []string{
		"email=excluded.email",
		"password_hash=excluded.password_hash",
		"failed_logins=excluded.failed_logins",
		"locked_until=excluded.locked_until",
	}

	query := fmt.Sprintf(
		"INSERT INTO accounts (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		domain.NormalizeEmail(entity.Email),
		entity.PasswordHash,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.NullTime(entity.LockedUntil),
	)
	return storage.Classify("save", table, err)
}

// Delete removes an Account; the profile row cascades.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return storage.Classify("delete", table, err)
	}
	return storage.RequireAffected("delete", table, res)
}

// Count returns the total number of accounts.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, storage.Classify("count", table, err)
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...interface{}) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.PasswordHash,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.LockedUntil = storage.ParseNullTime(lockedUntil)
	return entity, nil
}
