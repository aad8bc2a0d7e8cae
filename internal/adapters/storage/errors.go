package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"lawoffice/internal/domain/apperror"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Classify maps a driver error onto the application taxonomy.
// PRE: op and table describe the failed call
// POST: nil stays nil; sql.ErrNoRows wraps apperror.ErrNotFound; any
// other error becomes *apperror.StoreError carrying the backend code
func Classify(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, table, apperror.ErrNotFound)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		conflict := code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE"))
		return apperror.NewStoreError(op, table, strconv.Itoa(code), conflict, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return apperror.NewStoreError(op, table, pgErr.Code, pgErr.Code == pgUniqueViolation, err)
	}

	return apperror.NewStoreError(op, table, "", false, err)
}

// RequireAffected turns a zero-row UPDATE or DELETE into ErrNotFound.
func RequireAffected(op, table string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return Classify(op, table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, table, apperror.ErrNotFound)
	}
	return nil
}
