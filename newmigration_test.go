package dbevolve

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// TestCreateMigrationIntMode verifies that in integer mode the next version
// follows the highest existing one.
func TestCreateMigrationIntMode(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"V1__init.sql", "V10__users.sql", "V2__roles.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("SELECT 1;\n"), 0644); err != nil {
			t.Fatalf("failed to seed %s: %v", name, err)
		}
	}

	path, err := CreateMigration(tmpDir, "Add new table", "int")
	if err != nil {
		t.Fatalf("CreateMigration failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "V11__add_new_table.sql")
	if path != expected {
		t.Fatalf("expected %s, got %s", expected, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read new migration: %v", err)
	}
	if !strings.HasPrefix(string(content), "-- Add new table") {
		t.Errorf("unexpected content: %q", content)
	}

	// The new file must be accepted by discovery.
	migrations, err := loadMigrations(NewGlobSource(filepath.Join(tmpDir, "*.sql")))
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if last := migrations[len(migrations)-1]; last.Version != 11 {
		t.Errorf("expected last version 11, got %d", last.Version)
	}
}

func TestCreateMigrationEmptyDir(t *testing.T) {
	tmpDir := t.TempDir()

	path, err := CreateMigration(tmpDir, "  Create Tables!  ", "")
	if err != nil {
		t.Fatalf("CreateMigration failed: %v", err)
	}
	if filepath.Base(path) != "V1__create_tables.sql" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}
}

// TestCreateMigrationTimestampMode verifies that in timestamp mode the
// version is the current Unix time.
func TestCreateMigrationTimestampMode(t *testing.T) {
	tmpDir := t.TempDir()

	path, err := CreateMigration(tmpDir, "Fix bug", "timestamp")
	if err != nil {
		t.Fatalf("CreateMigration failed: %v", err)
	}

	version, desc, err := ParseVersion(filepath.Base(path))
	if err != nil {
		t.Fatalf("ParseVersion failed: %v", err)
	}
	if desc != "fix_bug" {
		t.Errorf("expected description fix_bug, got %s", desc)
	}
	if time.Since(time.Unix(int64(version), 0)) > time.Minute {
		t.Errorf("timestamp %s seems too old", strconv.Itoa(version))
	}
}

func TestCreateMigrationErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := CreateMigration(filepath.Join(t.TempDir(), "nope"), "x", "int"); err == nil {
			t.Fatal("expected error for missing directory")
		}
	})
	t.Run("empty description", func(t *testing.T) {
		if _, err := CreateMigration(t.TempDir(), "  --  ", "int"); err == nil {
			t.Fatal("expected error for empty description")
		}
	})
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Add new table":      "add_new_table",
		"  alter-Users  ":    "alter_users",
		"drop   index (old)": "drop_index_old",
		"already_snake_case": "already_snake_case",
	}
	for in, want := range tests {
		if got := snakeCase(in); got != want {
			t.Errorf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
