package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("row not found")

	// ErrDuplicate indicates a unique constraint violation (e.g., duplicate email).
	ErrDuplicate = errors.New("duplicate row")

	// ErrConnection indicates a failure to open or ping the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a statement execution failure.
	ErrQuery = errors.New("query error")
)

// Config holds database configuration.
type Config struct {
	// Path is the database file path, or ":memory:" for an in-memory database.
	Path string
}

// Open opens a SQLite database at the configured path with foreign keys
// enforced and a busy timeout set, and verifies the connection.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: empty database path", ErrConnection)
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	// SQLite serializes writers; a single connection avoids
	// SQLITE_BUSY between pooled connections on the same file.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return db, nil
}

// Initialize executes the given DDL statements in order. The statements come
// from a freshly provisioned schema snapshot; Initialize never alters or
// patches an existing table.
func Initialize(ctx context.Context, db *sql.DB, ddl []string) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: executing %q: %v", ErrQuery, firstLine(stmt), err)
		}
	}
	return nil
}

// Classify maps a driver error onto the package's sentinel errors so callers
// can use errors.Is without depending on driver message formats.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return fmt.Errorf("%w: %v", ErrQuery, err)
}

// IsUniqueViolation reports whether err is a SQLite unique constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func dsn(path string) string {
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
