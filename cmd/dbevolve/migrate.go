package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bcomnes/dbevolve"
)

var (
	migratePlaceholders []string
	migrateFailIfLocked bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Config file entries first so that flags override them.
		entries := append(viper.GetStringSlice("placeholders"), migratePlaceholders...)
		placeholders, err := parsePlaceholders(entries)
		if err != nil {
			return err
		}
		return withDB(cmd, func(ctx context.Context, e *dbevolve.Evolver) error {
			fmt.Printf("[%s] Starting migration...\n", stamp())
			applied, err := e.Migrate(ctx, placeholders)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Printf("[%s] Database is locked by another process, nothing was applied.\n", stamp())
				if migrateFailIfLocked {
					return errors.New("database is locked")
				}
				return nil
			}
			fmt.Printf("[%s] Migration completed successfully.\n", stamp())
			return nil
		})
	},
}

func init() {
	migrateCmd.Flags().StringArrayVarP(&migratePlaceholders, "placeholder", "p", nil, "placeholder value as name=value (repeatable)")
	migrateCmd.Flags().BoolVar(&migrateFailIfLocked, "fail-if-locked", false, "exit non-zero when another process holds the lock")
}

// parsePlaceholders turns name=value entries into a map. Later entries win.
func parsePlaceholders(entries []string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid placeholder %q, expected name=value", entry)
		}
		out[name] = value
	}
	return out, nil
}
