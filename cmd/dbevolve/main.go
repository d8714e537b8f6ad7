package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver (cgo)
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bcomnes/dbevolve"
)

var versionString = dbevolve.Version

var rootCmd = &cobra.Command{
	Use:               "dbevolve",
	Short:             "Apply versioned SQL migrations exactly once",
	Version:           versionString,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	v := viper.GetViper()
	v.SetDefault("driver", "pg")
	v.SetDefault("ledger_table", dbevolve.DefaultConfig.LedgerTable)
	v.SetDefault("lock_table", dbevolve.DefaultConfig.LockTable)
	v.SetDefault("migration_pattern", dbevolve.DefaultConfig.MigrationPattern)

	// Environment variables support: DBEVOLVE_CONN, DBEVOLVE_LEDGER_TABLE, ...
	v.SetEnvPrefix("DBEVOLVE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to a YAML or JSON config file")
	pf.String("conn", "", "connection URL or SQLite file; overrides DATABASE_URL and the config file")
	pf.String("driver", v.GetString("driver"), `database driver: "pg", "sqlite3" or "sqlite"`)
	pf.String("ledger-table", v.GetString("ledger_table"), "table recording applied migrations")
	pf.String("lock-table", v.GetString("lock_table"), "single row lock table")
	pf.String("migration-pattern", v.GetString("migration_pattern"), "glob pattern for migration files")
	pf.BoolP("verbose", "v", false, "debug logging")

	_ = v.BindPFlag("config", pf.Lookup("config"))
	_ = v.BindPFlag("conn", pf.Lookup("conn"))
	_ = v.BindPFlag("driver", pf.Lookup("driver"))
	_ = v.BindPFlag("ledger_table", pf.Lookup("ledger-table"))
	_ = v.BindPFlag("lock_table", pf.Lookup("lock-table"))
	_ = v.BindPFlag("migration_pattern", pf.Lookup("migration-pattern"))
	_ = v.BindPFlag("verbose", pf.Lookup("verbose"))

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(unlockCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the --config file, if any, into viper.
func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	path := strings.TrimSpace(v.GetString("config"))
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	return nil
}

// cliConfig builds the library configuration from flags, environment and
// config file.
func cliConfig(log *zap.SugaredLogger) dbevolve.Config {
	v := viper.GetViper()
	return dbevolve.Config{
		Driver:           v.GetString("driver"),
		LedgerTable:      v.GetString("ledger_table"),
		LockTable:        v.GetString("lock_table"),
		MigrationPattern: v.GetString("migration_pattern"),
		Logger:           dbevolve.NewZapLogger(log),
	}
}

// newLogger returns a development logger with --verbose and a production
// one otherwise. Both write to stderr.
func newLogger() (*zap.Logger, error) {
	if viper.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}

// connection returns the connection string. Precedence: flag > DATABASE_URL
// env > DBEVOLVE_CONN env > config file.
func connection() string {
	flagConn := ""
	if f := rootCmd.PersistentFlags().Lookup("conn"); f != nil && f.Changed {
		flagConn = f.Value.String()
	}
	return firstNonEmpty(
		flagConn,
		os.Getenv("DATABASE_URL"),
		viper.GetString("conn"),
	)
}

// withDB sets up the database connection and the Evolver, then calls f with
// them and a context bounded to ten minutes.
func withDB(cmd *cobra.Command, f func(ctx context.Context, e *dbevolve.Evolver) error) error {
	connStr := connection()
	if connStr == "" {
		return errors.New(`connection URL must be provided via --conn flag, DATABASE_URL env var, or "conn" in config file`)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := cliConfig(logger.Sugar())
	client, err := dbevolve.NewClient(cfg)
	if err != nil {
		return err
	}

	db, err := sql.Open(client.Driver(), connStr)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	e, err := dbevolve.New(cfg, db, nil)
	if err != nil {
		return fmt.Errorf("initializing dbevolve: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 10*time.Minute)
	defer cancel()

	return f(ctx, e)
}

// firstNonEmpty returns the first non-empty string in the provided list.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func stamp() string {
	return time.Now().Format(time.Kitchen)
}
