package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_InMemory(t *testing.T) {
	db := openTestDB(t, ":memory:")

	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if one != 1 {
		t.Errorf("expected 1, got %d", one)
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.db")
	db := openTestDB(t, path)

	if _, err := db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file on disk: %v", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	if !errors.Is(err, ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

func TestOpen_EnforcesForeignKeys(t *testing.T) {
	db := openTestDB(t, ":memory:")

	ddl := []string{
		"CREATE TABLE parents (id INTEGER PRIMARY KEY)",
		"CREATE TABLE children (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parents(id))",
	}
	if err := Initialize(context.Background(), db, ddl); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if _, err := db.Exec("INSERT INTO children (parent_id) VALUES (42)"); err == nil {
		t.Error("expected orphan insert to violate the foreign key")
	}
}

func TestInitialize_ExecutesInOrder(t *testing.T) {
	db := openTestDB(t, ":memory:")

	// The second statement only parses if the first already ran.
	ddl := []string{
		"CREATE TABLE a (id INTEGER PRIMARY KEY)",
		"CREATE TABLE b (id INTEGER PRIMARY KEY, a_id INTEGER REFERENCES a(id))",
		"INSERT INTO a (id) VALUES (1)",
	}
	if err := Initialize(context.Background(), db, ddl); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM a").Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestInitialize_BadStatement(t *testing.T) {
	db := openTestDB(t, ":memory:")

	err := Initialize(context.Background(), db, []string{"CREATE TABLE ("})
	if !errors.Is(err, ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	db := openTestDB(t, ":memory:")
	if err := Initialize(context.Background(), db, []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE)",
		"INSERT INTO users (email) VALUES ('a@test.local')",
	}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	t.Run("nil", func(t *testing.T) {
		if got := Classify(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		var email string
		err := db.QueryRow("SELECT email FROM users WHERE id = 99").Scan(&email)
		if !errors.Is(Classify(err), ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", Classify(err))
		}
	})

	t.Run("unique violation", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO users (email) VALUES ('a@test.local')")
		if err == nil {
			t.Fatal("expected duplicate insert to fail")
		}
		if !errors.Is(Classify(err), ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", Classify(err))
		}
	})

	t.Run("other error", func(t *testing.T) {
		_, err := db.Exec("SELECT * FROM no_such_table")
		if err == nil {
			t.Fatal("expected query to fail")
		}
		if !errors.Is(Classify(err), ErrQuery) {
			t.Errorf("expected ErrQuery, got %v", Classify(err))
		}
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	if IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
	if IsUniqueViolation(errors.New("syntax error")) {
		t.Error("unrelated error is not a unique violation")
	}
	err := fmt.Errorf("constraint failed: UNIQUE constraint failed: users.email (2067)")
	if !IsUniqueViolation(err) {
		t.Error("expected driver unique constraint message to be recognized")
	}
}
