// Package database provides the storage access layer for Academy.
//
// Academy runs on embedded SQLite (modernc.org/sqlite, no CGO). Each process
// opens one database file; the test harness opens one file per test.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: row does not exist
//   - ErrDuplicate: unique constraint violation (e.g., duplicate email)
//   - ErrConnection: database could not be opened or pinged
//   - ErrQuery: statement execution failure
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrDuplicate) {
//	    // Handle conflicting row
//	}
//
// # Usage Example
//
//	db, err := database.Open(ctx, database.Config{Path: "academy.db"})
//	if err != nil { ... }
//	defer db.Close()
//
//	if err := database.Initialize(ctx, db, snapshot.DDL()); err != nil { ... }
package database
