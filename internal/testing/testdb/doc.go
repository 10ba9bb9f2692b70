// Package testdb provides test database utilities for the Academy API.
//
// The testdb package manages isolated SQLite test databases with
// automatic provisioning and cleanup.
//
// # Test Database Setup
//
// Create a test database for each test:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//
//	    // Use tdb.DB for database operations
//	}
//
// # Provisioning
//
// The full schema is provisioned from scratch on setup. Snapshots are
// never cached or reused between tests:
//
//	tdb := testdb.New(t) // fresh schema every time
//
// # Isolation
//
// Each test gets its own database file with a unique name:
//
//	func TestA(t *testing.T) {
//	    tdb := testdb.New(t) // academy_test_<pid>_<nanos>_1_ab12.db
//	}
//
//	func TestB(t *testing.T) {
//	    tdb := testdb.New(t) // academy_test_<pid>_<nanos>_2_cd34.db
//	}
//
// Cleanup is registered with t.Cleanup so the file is removed on every
// exit path. A file that cannot be removed is logged as an isolation
// leak and counted by LeakCount; the test itself is not failed. Stale
// files from crashed runs are swept once per process.
//
// # Shared Database
//
// For subtests that can share one backing file:
//
//	tdb := testdb.NewShared(t)
//	t.Run("create", func(t *testing.T) { tdb.SetupSubtest(t); ... })
//	t.Run("read", func(t *testing.T) { tdb.SetupSubtest(t); ... })
package testdb
