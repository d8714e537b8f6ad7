package integration

import (
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

var cliBinary string

// testMigrationsPath: relative path from the integration test package to the test migration files.
const testMigrationsPath = "../../../testdata/migrations/*.sql"

// TestMain builds the CLI binary once for all tests.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "dbevolve-integration")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	binaryPath := filepath.Join(dir, "dbevolve")
	buildCmd := exec.Command("go", "build", "-o", binaryPath, "../")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build CLI binary: %v\n", err)
		os.Exit(1)
	}
	cliBinary = binaryPath

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}

// helperRun runs the built CLI binary with the provided arguments and extra environment variables.
func helperRun(args []string, extraEnv ...string) (string, error) {
	cmd := exec.Command(cliBinary, args...)
	cmd.Env = append(os.Environ(), "DATABASE_URL=", "DBEVOLVE_CONN=", "DBEVOLVE_DRIVER=sqlite3")
	cmd.Env = append(cmd.Env, extraEnv...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// tableExists checks whether a table exists in the SQLite database.
func tableExists(t *testing.T, path, name string) bool {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return cnt > 0
}

// writeConfig writes content into a config file named name and returns its path.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestCLIMigrate(t *testing.T) {
	conn := filepath.Join(t.TempDir(), "migrate.db")
	args := []string{"--conn", conn, "--migration-pattern", testMigrationsPath, "migrate"}

	out, err := helperRun(args)
	if err != nil {
		t.Fatalf("migrate command failed: %v; output: %s", err, out)
	}
	if !strings.Contains(out, "Starting migration") {
		t.Errorf("expected migration start message, got:\n%s", out)
	}
	if !tableExists(t, conn, "test1") || !tableExists(t, conn, "db_evolve") {
		t.Errorf("expected migrated tables to exist")
	}

	out, err = helperRun([]string{"--conn", conn, "--migration-pattern", testMigrationsPath, "status"})
	if err != nil {
		t.Fatalf("status command failed: %v; output: %s", err, out)
	}
	if !strings.Contains(out, "0 pending") {
		t.Errorf("expected nothing pending, got:\n%s", out)
	}
}

func TestCLIMigratePureGoDriver(t *testing.T) {
	conn := filepath.Join(t.TempDir(), "modernc.db")
	out, err := helperRun([]string{"--driver", "sqlite", "--conn", conn, "--migration-pattern", testMigrationsPath, "migrate"})
	if err != nil {
		t.Fatalf("migrate command failed: %v; output: %s", err, out)
	}
	if !tableExists(t, conn, "test2") {
		t.Errorf("expected test2 to exist")
	}
}

// TestConnPrecedence_ConfigUsed ensures config conn works when flag/env empty.
func TestConnPrecedence_ConfigUsed(t *testing.T) {
	cfgDB := filepath.Join(t.TempDir(), "cfg.db")
	cfgPath := writeConfig(t, "cfg.yaml", "conn: "+cfgDB+"\n")

	if out, err := helperRun([]string{"--config", cfgPath, "unlock"}); err != nil {
		t.Fatalf("run: %v; output: %s", err, out)
	}
	if _, e := os.Stat(cfgDB); e != nil {
		t.Errorf("expected cfg.db to exist")
	}
}

// TestConnPrecedence_EnvWins ensures DATABASE_URL beats config.
func TestConnPrecedence_EnvWins(t *testing.T) {
	envDB := filepath.Join(t.TempDir(), "env.db")
	cfgDB := filepath.Join(t.TempDir(), "cfg.db")
	cfgPath := writeConfig(t, "cfg.yaml", "conn: "+cfgDB+"\n")

	if out, err := helperRun([]string{"--config", cfgPath, "unlock"}, "DATABASE_URL="+envDB); err != nil {
		t.Fatalf("run: %v; output: %s", err, out)
	}
	if _, e := os.Stat(envDB); e != nil {
		t.Errorf("expected env.db to exist")
	}
	if _, e := os.Stat(cfgDB); e == nil {
		t.Errorf("expected cfg.db NOT to be used")
	}
}

// TestConnPrecedence_FlagWins ensures flag beats env+config.
func TestConnPrecedence_FlagWins(t *testing.T) {
	flagDB := filepath.Join(t.TempDir(), "flag.db")
	envDB := filepath.Join(t.TempDir(), "env.db")
	cfgDB := filepath.Join(t.TempDir(), "cfg.db")
	cfgPath := writeConfig(t, "cfg.yaml", "conn: "+cfgDB+"\n")

	if out, err := helperRun([]string{"--conn", flagDB, "--config", cfgPath, "unlock"}, "DATABASE_URL="+envDB); err != nil {
		t.Fatalf("run: %v; output: %s", err, out)
	}
	if _, e := os.Stat(flagDB); e != nil {
		t.Errorf("expected flag.db to exist")
	}
	if _, e := os.Stat(envDB); e == nil {
		t.Errorf("expected env.db NOT to be used")
	}
}

// TestLedgerTableFlagOverridesConfig checks --ledger-table overrides a JSON config.
func TestLedgerTableFlagOverridesConfig(t *testing.T) {
	conn := filepath.Join(t.TempDir(), "override.db")
	cfgPath := writeConfig(t, "cfg.json", fmt.Sprintf(`{"conn": %q, "ledger_table": "cfg_table", "lock_table": "cfg_lock"}`, conn))

	out, err := helperRun([]string{"--config", cfgPath, "--ledger-table", "flag_table", "--migration-pattern", testMigrationsPath, "migrate"})
	if err != nil {
		t.Fatalf("run: %v; output: %s", err, out)
	}

	if !tableExists(t, conn, "flag_table") || tableExists(t, conn, "cfg_table") {
		t.Errorf("expected only flag_table to exist")
	}
	if !tableExists(t, conn, "cfg_lock") {
		t.Errorf("expected lock table from config to exist")
	}
}
