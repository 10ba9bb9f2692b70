package testdb

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openlearn/academy/api/internal/config"
	"github.com/openlearn/academy/api/internal/database"
	"github.com/openlearn/academy/api/internal/schema"
)

// filePrefix marks database files created by this package so the stale
// artifact sweep never touches anything else in the directory.
const filePrefix = "academy_test_"

// staleAge is how old an orphaned test database must be before the sweep
// removes it. Files younger than this may belong to a concurrent run.
const staleAge = time.Hour

// TestDB provides an isolated database environment for testing.
// Each TestDB instance is backed by its own database file.
type TestDB struct {
	DB       *sql.DB
	Path     string
	Snapshot *schema.Snapshot
	t        *testing.T
	released bool
	mu       sync.Mutex
}

var (
	// purgeOnce ensures the stale artifact sweep runs once per process
	purgeOnce sync.Once

	// liveMu protects the set of database files owned by running tests
	liveMu    sync.Mutex
	livePaths = map[string]struct{}{}

	// counterMu protects the per-process file name counter
	counterMu sync.Mutex
	counter   int64

	// leakMu protects the leak counter
	leakMu    sync.Mutex
	leakCount int
)

// uniquePath generates a unique database file path for test isolation.
// The name combines pid, wall clock, a process-local counter, and random
// bytes so concurrent test processes sharing a directory never collide.
func uniquePath(dir string) string {
	counterMu.Lock()
	counter++
	n := counter
	counterMu.Unlock()

	var buf [4]byte
	_, _ = rand.Read(buf[:])

	name := fmt.Sprintf("%s%d_%d_%d_%s.db",
		filePrefix, os.Getpid(), time.Now().UnixNano(), n, hex.EncodeToString(buf[:]))
	return filepath.Join(dir, name)
}

// purgeStale removes orphaned database files left behind by crashed or
// killed test runs. Only files with our prefix, not owned by a live
// test, and older than staleAge are removed.
func purgeStale(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-staleAge)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, filePrefix) {
			continue
		}
		path := filepath.Join(dir, name)

		liveMu.Lock()
		_, live := livePaths[path]
		liveMu.Unlock()
		if live {
			continue
		}

		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			slog.Warn("testdb: removed stale test database", "path", path)
		}
	}
}

// LeakCount reports how many test databases failed to release cleanly
// during this process. A nonzero count means release is broken, not that
// the offending tests failed.
func LeakCount() int {
	leakMu.Lock()
	defer leakMu.Unlock()
	return leakCount
}

// New creates a new isolated test database with a freshly provisioned
// schema. Every call provisions from scratch; snapshots are never reused
// across tests. Cleanup is registered on t and runs on every exit path,
// including panics and t.Fatal.
func New(t *testing.T) *TestDB {
	t.Helper()

	dir, err := config.TestDatabaseDir()
	if err != nil {
		t.Fatalf("testdb: %v", err)
	}

	purgeOnce.Do(func() { purgeStale(dir) })

	snap, err := schema.Provision(schema.DefaultRegistry())
	if err != nil {
		t.Fatalf("testdb: schema provisioning failed: %v", err)
	}

	path := uniquePath(dir)
	liveMu.Lock()
	livePaths[path] = struct{}{}
	liveMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, database.Config{Path: path})
	if err != nil {
		releasePath(path)
		t.Fatalf("testdb: failed to open: %v", err)
	}

	if err := database.Initialize(ctx, db, snap.DDL()); err != nil {
		db.Close()
		releasePath(path)
		t.Fatalf("testdb: failed to apply schema: %v", err)
	}

	tdb := &TestDB{
		DB:       db,
		Path:     path,
		Snapshot: snap,
		t:        t,
	}

	t.Cleanup(tdb.release)

	return tdb
}

// releasePath removes a database file and drops it from the live set.
func releasePath(path string) {
	liveMu.Lock()
	delete(livePaths, path)
	liveMu.Unlock()
	_ = os.Remove(path)
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")
}

// release closes the connection and deletes the backing file. It is safe
// to call more than once; only the first call does work.
func (tdb *TestDB) release() {
	tdb.mu.Lock()
	if tdb.released {
		tdb.mu.Unlock()
		return
	}
	tdb.released = true
	tdb.mu.Unlock()

	if tdb.DB != nil {
		_ = tdb.DB.Close()
	}

	liveMu.Lock()
	delete(livePaths, tdb.Path)
	liveMu.Unlock()

	if err := os.Remove(tdb.Path); err != nil && !os.IsNotExist(err) {
		leakMu.Lock()
		leakCount++
		leakMu.Unlock()
		slog.Warn("testdb: isolation leak, could not remove test database",
			"path", tdb.Path, "error", err)
	}
	_ = os.Remove(tdb.Path + "-wal")
	_ = os.Remove(tdb.Path + "-shm")
}

// Close releases the test database immediately instead of waiting for
// the registered cleanup. Useful when a test wants to assert on release
// behavior itself.
func (tdb *TestDB) Close() {
	tdb.release()
}

// Reset clears all data from tables while preserving schema.
// This is faster than creating a new TestDB for tests that need fresh data.
// Tables are cleared children-first so foreign keys never block deletion.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range tdb.Snapshot.TruncateOrder() {
		if _, err := tdb.DB.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("testdb: failed to clear table %s: %v", table, err)
		}
	}

	// Restart AUTOINCREMENT counters so ids are predictable after a reset.
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM sqlite_sequence")
}

// Ctx returns a context with a reasonable timeout for test operations.
// Note: The cancel function is intentionally not returned as tests should
// complete within the timeout and the context will be garbage collected.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = cancel
	return ctx
}

// MustExec executes a statement and fails the test on error.
func (tdb *TestDB) MustExec(query string, args ...any) sql.Result {
	tdb.t.Helper()
	res, err := tdb.DB.ExecContext(tdb.Ctx(), query, args...)
	if err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
	return res
}

// MustQueryRow runs a single-row query and scans it into dest, failing
// the test on error.
func (tdb *TestDB) MustQueryRow(query string, args []any, dest ...any) {
	tdb.t.Helper()
	if err := tdb.DB.QueryRowContext(tdb.Ctx(), query, args...).Scan(dest...); err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
}

// Count returns the number of rows in a table, failing the test on error.
func (tdb *TestDB) Count(table string) int {
	tdb.t.Helper()
	var n int
	tdb.MustQueryRow("SELECT count(*) FROM "+table, nil, &n)
	return n
}

// Shared creates a TestDB that can be shared across subtests.
// It provides a SetupSubtest method for per-subtest isolation.
type Shared struct {
	*TestDB
}

// NewShared creates a shared test database for use across multiple subtests.
// Use this when schema provisioning overhead is significant and subtests
// can share one backing file.
func NewShared(t *testing.T) *Shared {
	return &Shared{TestDB: New(t)}
}

// SetupSubtest resets the database and returns the TestDB for use in a subtest.
// Call this at the start of each t.Run() block.
func (s *Shared) SetupSubtest(t *testing.T) *TestDB {
	t.Helper()
	s.TestDB.t = t
	s.TestDB.Reset(t)
	return s.TestDB
}
