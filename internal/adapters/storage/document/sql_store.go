package document

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"lawoffice/internal/adapters/storage"
	"lawoffice/internal/domain/dal"
	domain "lawoffice/internal/domain/document"
)

const table = "documents"

const selectColumns = `SELECT d.id, d.case_id, d.client_id, d.filename, d.file_path, d.file_size,
	d.mime_type, d.category, d.description, d.is_client_accessible, d.uploaded_at,
	COALESCE(c.title, ''), COALESCE(cl.first_name || ' ' || cl.last_name, '')
	FROM documents d
	LEFT JOIN cases c ON c.id = d.case_id
	LEFT JOIN clients cl ON cl.id = COALESCE(d.client_id, c.client_id)`

var columns = storage.Columns{
	"id":                   "d.id",
	"case_id":              "d.case_id",
	"client_id":            "d.client_id",
	"category":             "d.category",
	"mime_type":            "d.mime_type",
	"is_client_accessible": "d.is_client_accessible",
	"uploaded_at":          "d.uploaded_at",
}

var updatable = storage.UpdatableSet("case_id", "client_id", "category", "description", "is_client_accessible")

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new document store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// List returns documents matching q with their case and client context.
// PRE: q only references whitelisted columns
// POST: returns rows in q's order; an empty result is a non-nil slice
func (s *SQLStore) List(ctx context.Context, q dal.Query) ([]domain.WithContext, error) {
	query, args, err := storage.SelectSQL(selectColumns, q, columns)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Classify("list", table, err)
	}
	defer rows.Close()

	results := []domain.WithContext{}
	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, storage.Classify("list", table, err)
		}
		results = append(results, d)
	}
	return results, storage.Classify("list", table, rows.Err())
}

// Count returns how many documents match q's filters.
func (s *SQLStore) Count(ctx context.Context, q dal.Query) (int, error) {
	query, args, err := storage.CountSQL("documents d", q, columns)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, storage.Classify("count", table, err)
}

// GetByID retrieves a document with its context.
// PRE: id is non-empty
// POST: Returns the document or an error wrapping apperror.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.WithContext, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx, selectColumns+" WHERE d.id = ?", id).Scan)
	if err != nil {
		return domain.WithContext{}, storage.Classify("get", table, err)
	}
	return d, nil
}

// Insert records an uploaded document.
// PRE: d has been validated and its object is stored
func (s *SQLStore) Insert(ctx context.Context, d domain.Document) error {
	query, args := storage.InsertSQL(table, dal.Patch{
		"id":                   d.ID,
		"case_id":              storage.NullString(d.CaseID),
		"client_id":            storage.NullString(d.ClientID),
		"filename":             d.Filename,
		"file_path":            d.FilePath,
		"file_size":            d.FileSize,
		"mime_type":            d.MimeType,
		"category":             d.Category,
		"description":          storage.NullString(d.Description),
		"is_client_accessible": d.IsClientAccessible,
		"uploaded_at":          storage.FormatTime(d.UploadedAt),
	})
	_, err := s.db.ExecContext(ctx, query, args...)
	return storage.Classify("insert", table, err)
}

// Update applies a partial update. Documents carry no updated_at column.
// PRE: patch only names updatable columns, with stored-form values
// POST: Returns an error wrapping apperror.ErrNotFound when id is unknown
func (s *SQLStore) Update(ctx context.Context, id string, patch dal.Patch) error {
	query, args, err := storage.UpdateSQL(table, patch, updatable, id, time.Time{})
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Classify("update", table, err)
	}
	return storage.RequireAffected("update", table, res)
}

// Delete removes a document row. The stored object is not touched.
// PRE: id is non-empty
// POST: Returns an error wrapping apperror.ErrNotFound when id is unknown
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return storage.Classify("delete", table, err)
	}
	return storage.RequireAffected("delete", table, res)
}

// DetachCase clears case_id on every document of caseID.
// POST: returns the number of detached documents
func (s *SQLStore) DetachCase(ctx context.Context, caseID string) (int, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE documents SET case_id = NULL WHERE case_id = ?", caseID)
	if err != nil {
		return 0, storage.Classify("detach_case", table, err)
	}
	n, err := res.RowsAffected()
	return int(n), storage.Classify("detach_case", table, err)
}

// scanDocument extracts a document and its context from a row scanner function.
func scanDocument(scan func(dest ...interface{}) error) (domain.WithContext, error) {
	var d domain.WithContext
	var caseID, clientID, description sql.NullString
	var uploadedAt string
	err := scan(
		&d.ID,
		&caseID,
		&clientID,
		&d.Filename,
		&d.FilePath,
		&d.FileSize,
		&d.MimeType,
		&d.Category,
		&description,
		&d.IsClientAccessible,
		&uploadedAt,
		&d.CaseTitle,
		&d.ClientName,
	)
	if err != nil {
		return domain.WithContext{}, err
	}
	d.CaseID = caseID.String
	d.ClientID = clientID.String
	d.Description = description.String
	d.UploadedAt, _ = storage.ParseTime(uploadedAt)
	d.ClientName = strings.TrimSpace(d.ClientName)
	return d, nil
}
