package testdb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_CreatesIsolatedDatabaseFile(t *testing.T) {
	tdb := New(t)

	if _, err := os.Stat(tdb.Path); err != nil {
		t.Fatalf("expected backing file to exist: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(tdb.Path), filePrefix) {
		t.Errorf("expected file name with prefix %q, got %q", filePrefix, filepath.Base(tdb.Path))
	}
}

func TestNew_AppliesFullSchema(t *testing.T) {
	tdb := New(t)

	for _, table := range tdb.Snapshot.TruncateOrder() {
		if n := tdb.Count(table); n != 0 {
			t.Errorf("expected empty table %s, got %d rows", table, n)
		}
	}
}

func TestNew_TwoDatabases_DoNotShareState(t *testing.T) {
	a := New(t)
	b := New(t)

	if a.Path == b.Path {
		t.Fatal("expected distinct backing files")
	}

	a.MustExec("INSERT INTO users (email, hashed_password) VALUES (?, ?)", "a@test.local", "x")

	if n := a.Count("users"); n != 1 {
		t.Errorf("expected 1 user in first database, got %d", n)
	}
	if n := b.Count("users"); n != 0 {
		t.Errorf("expected writes to not leak into second database, got %d users", n)
	}
}

func TestNew_EnforcesForeignKeys(t *testing.T) {
	tdb := New(t)

	_, err := tdb.DB.ExecContext(tdb.Ctx(),
		"INSERT INTO courses (title, slug, instructor_id) VALUES (?, ?, ?)",
		"Orphan Course", "orphan-course", 9999)
	if err == nil {
		t.Error("expected foreign key violation for missing instructor")
	}
}

func TestNew_OmittedColumnsGetDeclaredDefaults(t *testing.T) {
	tdb := New(t)

	// is_verified was added to the declarations after the original model;
	// a freshly provisioned database must carry it with its default and
	// make it queryable by name.
	tdb.MustExec("INSERT INTO users (email, hashed_password) VALUES (?, ?)", "late@test.local", "x")

	var verified bool
	tdb.MustQueryRow("SELECT is_verified FROM users WHERE email = ?", []any{"late@test.local"}, &verified)
	if verified {
		t.Error("expected is_verified to default to false")
	}

	var n int
	tdb.MustQueryRow("SELECT count(*) FROM users WHERE is_verified = 0", nil, &n)
	if n != 1 {
		t.Errorf("expected 1 unverified user, got %d", n)
	}
}

func TestClose_RemovesBackingFile(t *testing.T) {
	tdb := New(t)
	path := tdb.Path

	tdb.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected backing file to be removed, stat err: %v", err)
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	tdb := New(t)
	before := LeakCount()

	tdb.Close()
	tdb.Close() // registered cleanup will run a third time

	if got := LeakCount(); got != before {
		t.Errorf("expected repeated release to not count as a leak, leak count went %d -> %d", before, got)
	}
}

func TestReset_ClearsAllTables(t *testing.T) {
	tdb := New(t)

	tdb.MustExec("INSERT INTO users (email, hashed_password) VALUES (?, ?)", "reset@test.local", "x")
	res := tdb.MustExec("INSERT INTO users (email, hashed_password) VALUES (?, ?)", "reset2@test.local", "x")
	id, _ := res.LastInsertId()
	tdb.MustExec("INSERT INTO courses (title, slug, instructor_id) VALUES (?, ?, ?)", "C", "c-slug", id)

	tdb.Reset(t)

	if n := tdb.Count("users"); n != 0 {
		t.Errorf("expected users cleared, got %d", n)
	}
	if n := tdb.Count("courses"); n != 0 {
		t.Errorf("expected courses cleared, got %d", n)
	}
}

func TestShared_SetupSubtest_IsolatesSubtests(t *testing.T) {
	shared := NewShared(t)

	t.Run("first", func(t *testing.T) {
		tdb := shared.SetupSubtest(t)
		tdb.MustExec("INSERT INTO users (email, hashed_password) VALUES (?, ?)", "sub1@test.local", "x")
		if n := tdb.Count("users"); n != 1 {
			t.Errorf("expected 1 user, got %d", n)
		}
	})

	t.Run("second", func(t *testing.T) {
		tdb := shared.SetupSubtest(t)
		if n := tdb.Count("users"); n != 0 {
			t.Errorf("expected reset before subtest, got %d users", n)
		}
	})
}

func TestPurgeStale_RemovesOnlyOldOrphanedFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, filePrefix+"1_1_1_dead.db")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * staleAge)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, filePrefix+"2_2_2_live.db")
	if err := os.WriteFile(fresh, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	unrelated := filepath.Join(dir, "keep.db")
	if err := os.WriteFile(unrelated, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(unrelated, old, old); err != nil {
		t.Fatal(err)
	}

	purgeStale(dir)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expected stale file to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("expected recent file to survive the sweep")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("expected unrelated file to survive the sweep")
	}
}

func TestParallelDatabases_UniquePaths(t *testing.T) {
	const n = 8
	paths := make(chan string, n)

	for i := 0; i < n; i++ {
		t.Run("spawn", func(t *testing.T) {
			t.Parallel()
			tdb := New(t)
			paths <- tdb.Path
			tdb.MustExec("INSERT INTO users (email, hashed_password) VALUES (?, ?)", "p@test.local", "x")
		})
	}

	t.Cleanup(func() {
		close(paths)
		seen := map[string]bool{}
		for p := range paths {
			if seen[p] {
				t.Errorf("duplicate backing file path %q", p)
			}
			seen[p] = true
		}
	})
}
