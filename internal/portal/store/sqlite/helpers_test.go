package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/codearena/portal/internal/db"
)

// openTestDB opens a migrated in-memory database for one test.  The
// shared-cache URI is keyed by the test name so parallel tests cannot see
// each other's data, and it keeps the database alive even if sql.DB recycles
// the underlying connection.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		t.Name(),
	)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Single connection, same as the server.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

// newTestWriter returns a write worker for conn, closed when the test ends.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()
	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}
