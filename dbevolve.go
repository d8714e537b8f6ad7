package dbevolve

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds settings for migrations.
type Config struct {
	// Driver is the database driver: "pg", "sqlite3" or "sqlite".
	Driver string `json:"driver" mapstructure:"driver"`

	// LedgerTable is the name of the table recording applied scripts.
	LedgerTable string `json:"ledgerTable" mapstructure:"ledger_table"`

	// LockTable is the name of the single row lock table.
	LockTable string `json:"lockTable" mapstructure:"lock_table"`

	// MigrationPattern is the glob used when New is given no Source
	// (e.g. "./migrations/*.sql").
	MigrationPattern string `json:"migrationPattern" mapstructure:"migration_pattern"`

	// Logger receives progress messages. Defaults to NopLogger.
	Logger Logger `json:"-" mapstructure:"-"`

	// Registerer, when set, exports the run metrics. Evolvers sharing a
	// Registerer share its collectors.
	Registerer prometheus.Registerer `json:"-" mapstructure:"-"`
}

// DefaultConfig provides default values for configuration.
var DefaultConfig = Config{
	LedgerTable:      "db_evolve",
	LockTable:        "db_evolve_lock",
	MigrationPattern: "migrations/*.sql",
}

// Evolver is the main orchestrator for running database migrations.
//
// It takes the lock, loads and sorts the scripts, checks already applied
// ones against the ledger and applies the rest, one transaction per script.
type Evolver struct {
	cfg     Config
	db      *sql.DB
	source  Source
	client  Client
	ledger  *Ledger
	lock    *Lock
	applier *Applier
	log     Logger
	metrics *metrics
}

// New creates an Evolver and makes sure the ledger and lock tables exist.
// Table creation errors are ignored; see Ledger.EnsureTable. A nil src reads
// the files matching cfg.MigrationPattern.
func New(cfg Config, db *sql.DB, src Source) (*Evolver, error) {
	if db == nil {
		return nil, errors.New("a database handle is required")
	}
	// Merge defaults.
	if cfg.LedgerTable == "" {
		cfg.LedgerTable = DefaultConfig.LedgerTable
	}
	if cfg.LockTable == "" {
		cfg.LockTable = DefaultConfig.LockTable
	}
	if cfg.MigrationPattern == "" {
		cfg.MigrationPattern = DefaultConfig.MigrationPattern
	}
	if cfg.Logger == nil {
		cfg.Logger = NopLogger
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = NewGlobSource(cfg.MigrationPattern)
	}
	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	ledger := NewLedger(db, client, cfg.Logger)
	e := &Evolver{
		cfg:     cfg,
		db:      db,
		source:  src,
		client:  client,
		ledger:  ledger,
		lock:    NewLock(db, client, uuid.NewString(), cfg.Logger),
		applier: NewApplier(db, ledger, cfg.Logger),
		log:     cfg.Logger,
		metrics: m,
	}

	ctx := context.Background()
	e.ledger.EnsureTable(ctx)
	e.lock.EnsureTable(ctx)
	return e, nil
}

// Lock returns the coordinator guarding migration runs.
func (e *Evolver) Lock() *Lock {
	return e.lock
}

// Ledger returns the applied scripts table.
func (e *Evolver) Ledger() *Ledger {
	return e.ledger
}

// Migrations loads the scripts from the source sorted by version, without
// touching the database.
func (e *Evolver) Migrations() ([]Migration, error) {
	return loadMigrations(e.source)
}

// Migrate applies every pending script. It returns false without doing
// anything when another process holds the lock. The lock is released on
// every path once acquired. Every error matches ErrMigration.
//
// Scripts committed before a failing one stay applied.
func (e *Evolver) Migrate(ctx context.Context, placeholders map[string]string) (applied bool, err error) {
	acquired, err := e.lock.Acquire(ctx)
	if err != nil {
		e.metrics.runs.WithLabelValues(runResultFailed).Inc()
		return false, storageError("acquire lock", err)
	}
	if !acquired {
		e.log.Log(LevelInfo, "skipping migration due to locked database")
		e.metrics.runs.WithLabelValues(runResultSkipped).Inc()
		return false, nil
	}

	defer func() {
		if relErr := e.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			err = errors.Join(err, storageError("release lock", relErr))
			applied = false
		}
		if err != nil {
			e.metrics.runs.WithLabelValues(runResultFailed).Inc()
		} else {
			e.metrics.runs.WithLabelValues(runResultApplied).Inc()
		}
	}()

	count, err := e.run(ctx, placeholders)
	if err != nil {
		e.log.Log(LevelError, err.Error())
		return false, err
	}
	e.log.Log(LevelInfo, fmt.Sprintf("migration finished, %d script(s) applied", count))
	return true, nil
}

func (e *Evolver) run(ctx context.Context, placeholders map[string]string) (int, error) {
	migrations, err := e.Migrations()
	if err != nil {
		return 0, err
	}
	entries, err := e.ledger.FindAll(ctx)
	if err != nil {
		return 0, storageError("load ledger", err)
	}
	known := make(map[string]string, len(entries))
	for _, entry := range entries {
		known[entry.Name] = entry.Hash
	}

	count := 0
	for _, m := range migrations {
		if hash, ok := known[m.Name]; ok {
			if hash != m.Hash {
				e.metrics.drift.Inc()
				return count, &DriftError{Name: m.Name, Expected: hash, Actual: m.Hash}
			}
			continue
		}

		e.log.Log(LevelInfo, fmt.Sprintf("applying %s (version %d)", m.Name, m.Version))
		start := time.Now()
		if err := e.applier.Apply(ctx, m, placeholders); err != nil {
			return count, err
		}
		e.metrics.duration.Observe(time.Since(start).Seconds())
		e.metrics.applied.Inc()
		count++
	}
	return count, nil
}
