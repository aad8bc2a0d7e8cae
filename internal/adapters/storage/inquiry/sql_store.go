package inquiry

import (
	"context"
	"database/sql"
	"time"

	"lawoffice/internal/adapters/storage"
	"lawoffice/internal/domain/dal"
	domain "lawoffice/internal/domain/inquiry"
)

const table = "contact_inquiries"

const selectColumns = `SELECT id, name, email, phone, subject, consultation_type, message,
	preferred_contact, status, created_at, updated_at FROM contact_inquiries`

var columns = storage.Columns{
	"id":                "id",
	"email":             "email",
	"status":            "status",
	"consultation_type": "consultation_type",
	"created_at":        "created_at",
}

var updatable = storage.UpdatableSet("status")

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLStore creates a new inquiry store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// List returns inquiries matching q.
func (s *SQLStore) List(ctx context.Context, q dal.Query) ([]domain.Inquiry, error) {
	query, args, err := storage.SelectSQL(selectColumns, q, columns)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Classify("list", table, err)
	}
	defer rows.Close()

	results := []domain.Inquiry{}
	for rows.Next() {
		i, err := scanInquiry(rows.Scan)
		if err != nil {
			return nil, storage.Classify("list", table, err)
		}
		results = append(results, i)
	}
	return results, storage.Classify("list", table, rows.Err())
}

// Count returns how many inquiries match q's filters.
func (s *SQLStore) Count(ctx context.Context, q dal.Query) (int, error) {
	query, args, err := storage.CountSQL(table, q, columns)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, storage.Classify("count", table, err)
}

// GetByID retrieves an inquiry.
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Inquiry, error) {
	i, err := scanInquiry(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if err != nil {
		return domain.Inquiry{}, storage.Classify("get", table, err)
	}
	return i, nil
}

// Insert records a submitted inquiry.
// PRE: i was built from a validated form
func (s *SQLStore) Insert(ctx context.Context, i domain.Inquiry) error {
	query, args := storage.InsertSQL(table, dal.Patch{
		"id":                i.ID,
		"name":              i.Name,
		"email":             i.Email,
		"phone":             storage.NullString(i.Phone),
		"subject":           i.Subject,
		"consultation_type": i.ConsultationType,
		"message":           i.Message,
		"preferred_contact": i.PreferredContact,
		"status":            i.Status,
		"created_at":        storage.FormatTime(i.CreatedAt),
		"updated_at":        storage.FormatTime(i.UpdatedAt),
	})
	_, err := s.db.ExecContext(ctx, query, args...)
	return storage.Classify("insert", table, err)
}

// Update applies a partial update; only status is updatable.
func (s *SQLStore) Update(ctx context.Context, id string, patch dal.Patch) error {
	query, args, err := storage.UpdateSQL(table, patch, updatable, id, s.now())
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Classify("update", table, err)
	}
	return storage.RequireAffected("update", table, res)
}

// Delete removes an inquiry.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM contact_inquiries WHERE id = ?", id)
	if err != nil {
		return storage.Classify("delete", table, err)
	}
	return storage.RequireAffected("delete", table, res)
}

func scanInquiry(scan func(dest ...interface{}) error) (domain.Inquiry, error) {
	var i domain.Inquiry
	var phone sql.NullString
	var createdAt, updatedAt string
	err := scan(
		&i.ID,
		&i.Name,
		&i.Email,
		&phone,
		&i.Subject,
		&i.ConsultationType,
		&i.Message,
		&i.PreferredContact,
		&i.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Inquiry{}, err
	}
	i.Phone = phone.String
	i.CreatedAt, _ = storage.ParseTime(createdAt)
	i.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return i, nil
}
