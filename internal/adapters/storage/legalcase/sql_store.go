package legalcase

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"lawoffice/internal/adapters/storage"
	"lawoffice/internal/domain/dal"
	domain "lawoffice/internal/domain/legalcase"
)

const table = "cases"

const selectColumns = `SELECT c.id, c.case_number, c.client_id, c.title, c.description, c.case_type,
	c.status, c.priority, c.start_date, c.end_date, c.next_hearing, c.billing_rate, c.total_hours,
	c.notes, c.created_at, c.updated_at, COALESCE(cl.first_name || ' ' || cl.last_name, '')
	FROM cases c LEFT JOIN clients cl ON cl.id = c.client_id`

var columns = storage.Columns{
	"id":           "c.id",
	"client_id":    "c.client_id",
	"case_number":  "c.case_number",
	"status":       "c.status",
	"priority":     "c.priority",
	"start_date":   "c.start_date",
	"next_hearing": "c.next_hearing",
	"created_at":   "c.created_at",
	"updated_at":   "c.updated_at",
}

var updatable = storage.UpdatableSet(
	"case_number", "client_id", "title", "description", "case_type", "status",
	"priority", "start_date", "end_date", "next_hearing", "billing_rate",
	"total_hours", "notes",
)

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLStore creates a new case store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// List returns cases matching q joined with their client's name.
// PRE: q only references whitelisted columns
// POST: returns rows in q's order; an empty result is a non-nil slice
func (s *SQLStore) List(ctx context.Context, q dal.Query) ([]domain.WithClient, error) {
	query, args, err := storage.SelectSQL(selectColumns, q, columns)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Classify("list", table, err)
	}
	defer rows.Close()

	results := []domain.WithClient{}
	for rows.Next() {
		c, err := scanCase(rows.Scan)
		if err != nil {
			return nil, storage.Classify("list", table, err)
		}
		results = append(results, c)
	}
	return results, storage.Classify("list", table, rows.Err())
}

// Count returns how many cases match q's filters.
func (s *SQLStore) Count(ctx context.Context, q dal.Query) (int, error) {
	query, args, err := storage.CountSQL("cases c", q, columns)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, storage.Classify("count", table, err)
}

// GetByID retrieves a case with its client's name.
// PRE: id is non-empty
// POST: Returns the case or an error wrapping apperror.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.WithClient, error) {
	c, err := scanCase(s.db.QueryRowContext(ctx, selectColumns+" WHERE c.id = ?", id).Scan)
	if err != nil {
		return domain.WithClient{}, storage.Classify("get", table, err)
	}
	return c, nil
}

// Insert adds a new case.
// PRE: c has been built from a validated draft and its client exists
func (s *SQLStore) Insert(ctx context.Context, c domain.Case) error {
	values := rowValues(c)
	values["id"] = c.ID
	values["created_at"] = storage.FormatTime(c.CreatedAt)
	values["updated_at"] = storage.FormatTime(c.UpdatedAt)
	query, args := storage.InsertSQL(table, values)
	_, err := s.db.ExecContext(ctx, query, args...)
	return storage.Classify("insert", table, err)
}

// Save overwrites every editable column of an existing case.
// PRE: c.ID names an existing case
func (s *SQLStore) Save(ctx context.Context, c domain.Case) error {
	return s.update(ctx, c.ID, rowValues(c), c.UpdatedAt)
}

// Update applies a partial update and refreshes updated_at.
// PRE: patch only names updatable columns, with stored-form values
// POST: Returns an error wrapping apperror.ErrNotFound when id is unknown
func (s *SQLStore) Update(ctx context.Context, id string, patch dal.Patch) error {
	return s.update(ctx, id, patch, s.now())
}

func (s *SQLStore) update(ctx context.Context, id string, patch dal.Patch, at time.Time) error {
	query, args, err := storage.UpdateSQL(table, patch, updatable, id, at)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Classify("update", table, err)
	}
	return storage.RequireAffected("update", table, res)
}

// Delete removes a case. Documents and appointments referencing it keep
// their rows with case_id cleared.
// PRE: id is non-empty
// POST: Returns an error wrapping apperror.ErrNotFound when id is unknown
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cases WHERE id = ?", id)
	if err != nil {
		return storage.Classify("delete", table, err)
	}
	return storage.RequireAffected("delete", table, res)
}

func rowValues(c domain.Case) dal.Patch {
	return dal.Patch{
		"case_number":  c.CaseNumber,
		"client_id":    c.ClientID,
		"title":        c.Title,
		"description":  c.Description,
		"case_type":    c.CaseType,
		"status":       c.Status,
		"priority":     c.Priority,
		"start_date":   c.StartDate.Format(storage.DateLayout),
		"end_date":     storage.NullDate(c.EndDate),
		"next_hearing": storage.NullTime(c.NextHearing),
		"billing_rate": storage.NullFloat(c.BillingRate),
		"total_hours":  storage.NullFloat(c.TotalHours),
		"notes":        storage.NullString(c.Notes),
	}
}

// scanCase extracts a case and its client name from a row scanner function.
func scanCase(scan func(dest ...interface{}) error) (domain.WithClient, error) {
	var c domain.WithClient
	var startDate, createdAt, updatedAt string
	var endDate, nextHearing, notes sql.NullString
	var billingRate, totalHours sql.NullFloat64
	err := scan(
		&c.ID,
		&c.CaseNumber,
		&c.ClientID,
		&c.Title,
		&c.Description,
		&c.CaseType,
		&c.Status,
		&c.Priority,
		&startDate,
		&endDate,
		&nextHearing,
		&billingRate,
		&totalHours,
		&notes,
		&createdAt,
		&updatedAt,
		&c.ClientName,
	)
	if err != nil {
		return domain.WithClient{}, err
	}
	c.StartDate, _ = storage.ParseTime(startDate)
	c.EndDate = storage.ParseNullTime(endDate)
	c.NextHearing = storage.ParseNullTime(nextHearing)
	c.BillingRate = billingRate.Float64
	c.TotalHours = totalHours.Float64
	c.Notes = notes.String
	c.CreatedAt, _ = storage.ParseTime(createdAt)
	c.UpdatedAt, _ = storage.ParseTime(updatedAt)
	c.ClientName = strings.TrimSpace(c.ClientName)
	return c, nil
}
