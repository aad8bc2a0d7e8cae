package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Dialect names the SQL backend behind a connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// MemoryURL opens a private in-memory SQLite database.
const MemoryURL = "sqlite::memory:"

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// ParseURL maps a BACKEND_URL onto a database/sql driver name and DSN.
// Accepted forms: postgres://..., postgresql://..., sqlite:<path> and
// sqlite::memory:.
// PRE: raw is non-empty
// POST: returns the driver, the DSN and the dialect, or an error for
// unknown schemes
func ParseURL(raw string) (driver, dsn string, dialect Dialect, err error) {
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return "pgx", raw, Postgres, nil
	case strings.HasPrefix(raw, "sqlite:"):
		path := strings.TrimPrefix(raw, "sqlite:")
		path = strings.TrimPrefix(path, "//")
		if path == "" {
			return "", "", "", fmt.Errorf("sqlite backend url has no path: %q", raw)
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return "sqlite", path + sep + sqlitePragmas, SQLite, nil
	default:
		return "", "", "", fmt.Errorf("unsupported backend url scheme: %q", raw)
	}
}

// Open connects to the backend named by raw and verifies the connection.
// PRE: raw is a URL accepted by ParseURL
// POST: returns an open pool and its dialect; an in-memory SQLite pool is
// limited to a single connection so every query sees the same database
func Open(ctx context.Context, raw string) (*sql.DB, Dialect, error) {
	driver, dsn, dialect, err := ParseURL(raw)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to reach %s database: %w", dialect, err)
	}
	return db, dialect, nil
}

// Migrate applies every pending embedded migration.
// PRE: db is an open connection of the given dialect
// POST: the schema is at the latest version; an up-to-date schema is not
// an error. db stays open.
func Migrate(db *sql.DB, dialect Dialect) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer src.Close()

	var driver database.Driver
	switch dialect {
	case Postgres:
		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case SQLite:
		driver, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare %s migration driver: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	// m.Close would also close db, which the caller still owns.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Info("schema_ready", "dialect", dialect, "version", version, "dirty", dirty)
	return nil
}
