package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bcomnes/dbevolve"
)

var newMode string

var newCmd = &cobra.Command{
	Use:   "new <description>",
	Short: "Create a new empty migration with the provided description",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("a description is required for the new command")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := filepath.Dir(viper.GetString("migration_pattern"))
		fmt.Printf("[%s] Creating new migration '%s' in %s mode...\n", stamp(), args[0], newMode)
		path, err := dbevolve.CreateMigration(dir, args[0], newMode)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] Created %s\n", stamp(), path)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newMode, "mode", "int", `version numbering mode: "int" or "timestamp"`)
}
