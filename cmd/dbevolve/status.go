package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bcomnes/dbevolve"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the lock and the state of every migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, e *dbevolve.Evolver) error {
			lock, err := e.Lock().State(ctx)
			if err != nil {
				return fmt.Errorf("reading lock: %w", err)
			}
			if lock.Locked {
				fmt.Printf("Lock: held by %s since %s\n", lock.Owner, lock.AcquiredAt.Format(time.RFC3339))
			} else {
				fmt.Println("Lock: free")
			}

			statuses, err := e.Status(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Migrations:")
			for _, s := range statuses {
				line := fmt.Sprintf("  %-8s %s", s.State, s.Name)
				if !s.AppliedAt.IsZero() {
					line += " (applied " + s.AppliedAt.Format(time.RFC3339) + ")"
				}
				fmt.Println(line)
			}
			fmt.Printf("%d pending\n", dbevolve.Pending(statuses))
			return nil
		})
	},
}
