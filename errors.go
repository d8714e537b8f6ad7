package dbevolve

import (
	"errors"
	"fmt"
)

// ErrMigration is matched by every error Migrate returns. Use errors.Is to
// tell a failed run apart from a run skipped because the lock was held,
// which is not an error at all.
var ErrMigration = errors.New("migration failed")

// NamingConventionError reports a script whose name does not follow
// V<Version>__<Description>.<ext>.
type NamingConventionError struct {
	Name string
}

func (e *NamingConventionError) Error() string {
	return fmt.Sprintf("file name %s does not meet the naming convention 'V<Version>__<Description>.<ext>'", e.Name)
}

func (e *NamingConventionError) Is(target error) bool { return target == ErrMigration }

// DiscoveryError reports a migration source that is missing or unreadable.
type DiscoveryError struct {
	Location string
	Err      error
}

func (e *DiscoveryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("migration source %s: discovery failed", e.Location)
	}
	return fmt.Sprintf("migration source %s: %v", e.Location, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

func (e *DiscoveryError) Is(target error) bool { return target == ErrMigration }

// DriftError reports an applied script whose content changed afterwards.
// Expected is the hash stored in the ledger, Actual the recomputed one.
type DriftError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("content of %s has changed. Expected hash %s but was %s", e.Name, e.Expected, e.Actual)
}

func (e *DriftError) Is(target error) bool { return target == ErrMigration }

// StatementExecutionError wraps a storage failure with the script name and
// the 1-based line the offending statement starts on.
type StatementExecutionError struct {
	Name string
	Line int
	Err  error
}

func (e *StatementExecutionError) Error() string {
	return fmt.Sprintf("%s - invalid sql statement found at line %d: %v", e.Name, e.Line, e.Err)
}

func (e *StatementExecutionError) Unwrap() error { return e.Err }

func (e *StatementExecutionError) Is(target error) bool { return target == ErrMigration }

// PlaceholderResolutionError reports a ${name} token with no value.
type PlaceholderResolutionError struct {
	Name        string
	Line        int
	Placeholder string
}

func (e *PlaceholderResolutionError) Error() string {
	return fmt.Sprintf("%s - missing value for placeholder '%s' in statement at line %d", e.Name, e.Placeholder, e.Line)
}

func (e *PlaceholderResolutionError) Is(target error) bool { return target == ErrMigration }

// storageError tags a raw driver failure so that it still matches ErrMigration.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMigration, op, err)
}
