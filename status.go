package dbevolve

import (
	"context"
	"sort"
	"time"
)

// State classifies a script against the ledger.
type State string

const (
	StatePending State = "pending"
	StateApplied State = "applied"
	StateDrifted State = "drifted"
	// StateMissing marks a ledger entry whose script is no longer in the source.
	StateMissing State = "missing"
)

// MigrationStatus describes one script or ledger entry.
type MigrationStatus struct {
	Name        string
	Version     int
	State       State
	Hash        string
	AppliedHash string
	AppliedAt   time.Time
}

// Status compares the source with the ledger without taking the lock or
// changing anything. Scripts come first in version order, followed by
// missing entries in ledger order.
func (e *Evolver) Status(ctx context.Context) ([]MigrationStatus, error) {
	migrations, err := e.Migrations()
	if err != nil {
		return nil, err
	}
	entries, err := e.ledger.FindAll(ctx)
	if err != nil {
		return nil, storageError("load ledger", err)
	}
	byName := make(map[string]LedgerEntry, len(entries))
	for _, entry := range entries {
		byName[entry.Name] = entry
	}

	out := make([]MigrationStatus, 0, len(migrations)+len(entries))
	seen := make(map[string]bool, len(migrations))
	for _, m := range migrations {
		seen[m.Name] = true
		st := MigrationStatus{Name: m.Name, Version: m.Version, Hash: m.Hash, State: StatePending}
		if entry, ok := byName[m.Name]; ok {
			st.AppliedHash = entry.Hash
			st.AppliedAt = entry.AppliedAt
			st.State = StateApplied
			if entry.Hash != m.Hash {
				st.State = StateDrifted
			}
		}
		out = append(out, st)
	}

	var missing []MigrationStatus
	for _, entry := range entries {
		if seen[entry.Name] {
			continue
		}
		version, _, _ := ParseVersion(entry.Name)
		missing = append(missing, MigrationStatus{
			Name:        entry.Name,
			Version:     version,
			State:       StateMissing,
			AppliedHash: entry.Hash,
			AppliedAt:   entry.AppliedAt,
		})
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].AppliedAt.Before(missing[j].AppliedAt)
	})
	return append(out, missing...), nil
}

// Pending reports how many scripts have not been applied yet.
func Pending(statuses []MigrationStatus) int {
	n := 0
	for _, s := range statuses {
		if s.State == StatePending {
			n++
		}
	}
	return n
}
