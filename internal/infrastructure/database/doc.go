// Package database provides SQLite database connectivity for SQLGuard.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Connection lifecycle (open, health check, idempotent close)
//   - Busy-timeout and foreign-key pragmas
//
// Security Considerations:
//   - All statements run through database/sql prepared statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// The guard layer (internal/guard) treats DB as an opaque
// prepared-statement executor; query construction and parameter
// binding policy live there, not here. Schema management is out of
// scope for this package.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: "data/app.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
