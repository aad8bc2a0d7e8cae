package appointment

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"lawoffice/internal/adapters/storage"
	domain "lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/dal"
)

const table = "appointments"

const selectColumns = `SELECT a.id, a.client_id, a.case_id, a.title, a.description, a.start_time,
	a.end_time, a.type, a.status, a.location, a.reminder_sent, a.created_at, a.updated_at,
	COALESCE(cl.first_name || ' ' || cl.last_name, '')
	FROM appointments a LEFT JOIN clients cl ON cl.id = a.client_id`

var columns = storage.Columns{
	"id":         "a.id",
	"client_id":  "a.client_id",
	"case_id":    "a.case_id",
	"status":     "a.status",
	"type":       "a.type",
	"start_time": "a.start_time",
	"created_at": "a.created_at",
}

var updatable = storage.UpdatableSet(
	"client_id", "case_id", "title", "description", "start_time", "end_time",
	"type", "status", "location", "reminder_sent",
)

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLStore creates a new appointment store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// List returns appointments matching q joined with the client's name.
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
		a, err := scanAppointment(rows.Scan)
		if err != nil {
			return nil, storage.Classify("list", table, err)
		}
		results = append(results, a)
	}
	return results, storage.Classify("list", table, rows.Err())
}

// Count returns how many appointments match q's filters.
func (s *SQLStore) Count(ctx context.Context, q dal.Query) (int, error) {
	query, args, err := storage.CountSQL("appointments a", q, columns)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, storage.Classify("count", table, err)
}

// GetByID retrieves an appointment.
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.WithClient, error) {
	a, err := scanAppointment(s.db.QueryRowContext(ctx, selectColumns+" WHERE a.id = ?", id).Scan)
	if err != nil {
		return domain.WithClient{}, storage.Classify("get", table, err)
	}
	return a, nil
}

// Insert adds a new appointment.
// PRE: a has been built from a validated draft
func (s *SQLStore) Insert(ctx context.Context, a domain.Appointment) error {
	values := rowValues(a)
	values["id"] = a.ID
	values["created_at"] = storage.FormatTime(a.CreatedAt)
	values["updated_at"] = storage.FormatTime(a.UpdatedAt)
	query, args := storage.InsertSQL(table, values)
	_, err := s.db.ExecContext(ctx, query, args...)
	return storage.Classify("insert", table, err)
}

// Save overwrites every editable column of an existing appointment.
func (s *SQLStore) Save(ctx context.Context, a domain.Appointment) error {
	return s.update(ctx, a.ID, rowValues(a), a.UpdatedAt)
}

// Update applies a partial update and refreshes updated_at.
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

// Delete removes an appointment.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return storage.Classify("delete", table, err)
	}
	return storage.RequireAffected("delete", table, res)
}

func rowValues(a domain.Appointment) dal.Patch {
	return dal.Patch{
		"client_id":     storage.NullString(a.ClientID),
		"case_id":       storage.NullString(a.CaseID),
		"title":         a.Title,
		"description":   storage.NullString(a.Description),
		"start_time":    storage.FormatTime(a.StartTime),
		"end_time":      storage.FormatTime(a.EndTime),
		"type":          a.Type,
		"status":        a.Status,
		"location":      storage.NullString(a.Location),
		"reminder_sent": a.ReminderSent,
	}
}

func scanAppointment(scan func(dest ...interface{}) error) (domain.WithClient, error) {
	var a domain.WithClient
	var clientID, caseID, description, location sql.NullString
	var startTime, endTime, createdAt, updatedAt string
	err := scan(
		&a.ID,
		&clientID,
		&caseID,
		&a.Title,
		&description,
		&startTime,
		&endTime,
		&a.Type,
		&a.Status,
		&location,
		&a.ReminderSent,
		&createdAt,
		&updatedAt,
		&a.ClientName,
	)
	if err != nil {
		return domain.WithClient{}, err
	}
	a.ClientID = clientID.String
	a.CaseID = caseID.String
	a.Description = description.String
	a.Location = location.String
	a.StartTime, _ = storage.ParseTime(startTime)
	a.EndTime, _ = storage.ParseTime(endTime)
	a.CreatedAt, _ = storage.ParseTime(createdAt)
	a.UpdatedAt, _ = storage.ParseTime(updatedAt)
	a.ClientName = strings.TrimSpace(a.ClientName)
	return a, nil
}
