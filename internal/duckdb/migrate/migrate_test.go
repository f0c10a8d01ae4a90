package migrate

import (
	"database/sql"
	"testing"

	_ "github.com/marcboeker/go-duckdb"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_AppliesAllMigrations(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	if err := NewRunner(db).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var count int64
	if err := db.QueryRow("SELECT COUNT(*) FROM decisions").Scan(&count); err != nil {
		t.Fatalf("decisions table missing after migration: %v", err)
	}
	if count != 0 {
		t.Fatalf("decisions count = %d, want 0", count)
	}
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	runner := NewRunner(db)
	if err := runner.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := runner.Run(); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	var applied int64
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("schema_migrations: %v", err)
	}
	migs, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if applied != int64(len(migs)) {
		t.Fatalf("applied = %d, want %d (no re-application)", applied, len(migs))
	}
}
