package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bcomnes/dbevolve"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Force-release the migration lock",
	Long: `Force-release the migration lock.

Only use this when a run crashed while holding the lock. Releasing the lock
while another process is migrating lets a second run start concurrently.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, e *dbevolve.Evolver) error {
			state, err := e.Lock().State(ctx)
			if err != nil {
				return fmt.Errorf("reading lock: %w", err)
			}
			if !state.Locked {
				fmt.Println("Lock is already free.")
				return nil
			}
			if err := e.Lock().Release(ctx); err != nil {
				return fmt.Errorf("releasing lock: %w", err)
			}
			fmt.Printf("[%s] Released lock held by %s.\n", stamp(), state.Owner)
			return nil
		})
	},
}
