package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bcomnes/dbevolve"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Validate migration names and print the statements each file splits into",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			name := filepath.Base(path)
			version, _, err := dbevolve.ParseVersion(name)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			stmts, err := dbevolve.SplitStatements(content)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Printf("%s (version %d): %d statement(s)\n", name, version, len(stmts))
			for _, s := range stmts {
				first, _, more := strings.Cut(s.SQL, "\n")
				if more {
					first += " ..."
				}
				fmt.Printf("  line %d: %s\n", s.Line, first)
			}
		}
		return nil
	},
}
