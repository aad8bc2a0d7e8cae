package client

import (
	"context"
	"database/sql"
	"time"

	"lawoffice/internal/adapters/storage"
	domain "lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
)

const table = "clients"

const selectColumns = `SELECT id, user_id, first_name, last_name, email, phone, client_type,
	company_name, position, identification_type, identification_number, date_of_birth,
	address, city, state, postal_code, country, active, notes, created_at, updated_at FROM clients`

var columns = storage.Columns{
	"id":          "id",
	"user_id":     "user_id",
	"email":       "email",
	"client_type": "client_type",
	"active":      "active",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"last_name":   "last_name",
	"first_name":  "first_name",
}

var updatable = storage.UpdatableSet(
	"user_id", "first_name", "last_name", "email", "phone", "client_type",
	"company_name", "position", "identification_type", "identification_number",
	"date_of_birth", "address", "city", "state", "postal_code", "country",
	"active", "notes",
)

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLStore creates a new client store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// List returns clients matching q.
// PRE: q only references whitelisted columns
// POST: returns rows in q's order; an empty result is a non-nil slice
func (s *SQLStore) List(ctx context.Context, q dal.Query) ([]domain.Client, error) {
	query, args, err := storage.SelectSQL(selectColumns, q, columns)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Classify("list", table, err)
	}
	defer rows.Close()

	results := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows.Scan)
		if err != nil {
			return nil, storage.Classify("list", table, err)
		}
		results = append(results, c)
	}
	return results, storage.Classify("list", table, rows.Err())
}

// Count returns how many clients match q's filters.
func (s *SQLStore) Count(ctx context.Context, q dal.Query) (int, error) {
	query, args, err := storage.CountSQL(table, q, columns)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, storage.Classify("count", table, err)
}

// GetByID retrieves a client.
// PRE: id is non-empty
// POST: Returns the client or an error wrapping apperror.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if err != nil {
		return domain.Client{}, storage.Classify("get", table, err)
	}
	return c, nil
}

// Insert adds a new client.
// PRE: c has been built from a validated draft
func (s *SQLStore) Insert(ctx context.Context, c domain.Client) error {
	values := rowValues(c)
	values["id"] = c.ID
	values["created_at"] = storage.FormatTime(c.CreatedAt)
	values["updated_at"] = storage.FormatTime(c.UpdatedAt)
	query, args := storage.InsertSQL(table, values)
	_, err := s.db.ExecContext(ctx, query, args...)
	return storage.Classify("insert", table, err)
}

// Save overwrites every editable column of an existing client.
// PRE: c.ID names an existing client
func (s *SQLStore) Save(ctx context.Context, c domain.Client) error {
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

// Delete removes a client. The schema refuses to delete a client that
// still owns cases.
// PRE: id is non-empty
// POST: Returns an error wrapping apperror.ErrNotFound when id is unknown
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return storage.Classify("delete", table, err)
	}
	return storage.RequireAffected("delete", table, res)
}

func rowValues(c domain.Client) dal.Patch {
	return dal.Patch{
		"user_id":               storage.NullString(c.UserID),
		"first_name":            c.FirstName,
		"last_name":             c.LastName,
		"email":                 c.Email,
		"phone":                 storage.NullString(c.Phone),
		"client_type":           c.ClientType,
		"company_name":          storage.NullString(c.CompanyName),
		"position":              storage.NullString(c.Position),
		"identification_type":   storage.NullString(c.IdentificationType),
		"identification_number": storage.NullString(c.IdentificationNumber),
		"date_of_birth":         storage.NullDate(c.DateOfBirth),
		"address":               c.Address,
		"city":                  c.City,
		"state":                 c.State,
		"postal_code":           c.PostalCode,
		"country":               c.Country,
		"active":                c.Active,
		"notes":                 storage.NullString(c.Notes),
	}
}

// scanClient extracts a Client from a row scanner function.
func scanClient(scan func(dest ...interface{}) error) (domain.Client, error) {
	var c domain.Client
	var userID, phone, company, position, idType, idNumber, dob, notes sql.NullString
	var createdAt, updatedAt string
	err := scan(
		&c.ID,
		&userID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&phone,
		&c.ClientType,
		&company,
		&position,
		&idType,
		&idNumber,
		&dob,
		&c.Address,
		&c.City,
		&c.State,
		&c.PostalCode,
		&c.Country,
		&c.Active,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Client{}, err
	}
	c.UserID = userID.String
	c.Phone = phone.String
	c.CompanyName = company.String
	c.Position = position.String
	c.IdentificationType = idType.String
	c.IdentificationNumber = idNumber.String
	c.DateOfBirth = storage.ParseNullTime(dob)
	c.Notes = notes.String
	c.CreatedAt, _ = storage.ParseTime(createdAt)
	c.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return c, nil
}
