package migration

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/levelup/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetCurrentVersionFreshDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{})

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"003_another.sql": {Data: []byte("CREATE TABLE test2 (id INTEGER);")},
		"001_init.sql":    {Data: []byte("CREATE TABLE test1 (id INTEGER);")},
		"002_update.sql":  {Data: []byte("ALTER TABLE test1 ADD COLUMN name TEXT;")},
		"README.md":       {Data: []byte("ignored")},
	})

	migs, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}

	wantNames := []string{"init", "update", "another"}
	for i, m := range migs {
		if m.Version != i+1 || m.Name != wantNames[i] {
			t.Errorf("migration %d: got version %d name %q, want version %d name %q", i, m.Version, m.Name, i+1, wantNames[i])
		}
	}
}

func TestReadMigrationFilesRejectsBadNames(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"missing underscore": {"001.sql": {Data: []byte("SELECT 1;")}},
		"non-numeric":        {"abc_init.sql": {Data: []byte("SELECT 1;")}},
		"zero version":       {"000_init.sql": {Data: []byte("SELECT 1;")}},
		"duplicate": {
			"001_a.sql": {Data: []byte("SELECT 1;")},
			"001_b.sql": {Data: []byte("SELECT 1;")},
		},
	}

	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), files)
			if _, err := runner.ReadMigrationFiles(); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestApplyMigrationsIsIncremental(t *testing.T) {
	db := setupTestDB(t)
	files := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);")},
	}
	runner := NewRunner(db, files)

	var messages []string
	applied, err := runner.ApplyMigrations(func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 applied migration, got %d", applied)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages")
	}

	files["002_posts.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER);")}

	applied, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected only the new migration to apply, got %d", applied)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion failed: %v", err)
	}
}

func TestApplyMigrationsRollsBackFailedFile(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql":   {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE broken (id INTEGER); THIS IS NOT SQL;")},
	})

	applied, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected an error from the broken migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 applied migration before failure, got %d", applied)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the failing migration: %v", err)
	}

	version, _ := runner.GetCurrentVersion()
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE t (id INTEGER);")},
	})
	if err := runner.EnsureSchemaVersionTable(); err != nil {
		t.Fatalf("EnsureSchemaVersionTable failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (9)"); err != nil {
		t.Fatalf("failed to seed version: %v", err)
	}

	err := runner.ValidateVersion()
	if err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("expected a 'newer' error, got %v", err)
	}
}

func TestEmbeddedSQLiteMigrationsApply(t *testing.T) {
	db := setupTestDB(t)
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("failed to open embedded migrations: %v", err)
	}

	runner := NewRunner(db, sub)
	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}

	for _, table := range []string{"daily_entries", "daily_summaries", "streaks", "xp_transactions", "boss_encounters", "user_achievements"} {
		var count int
		if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&count); err != nil {
			t.Fatalf("failed to check table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}
}
