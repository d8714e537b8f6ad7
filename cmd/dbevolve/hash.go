package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bcomnes/dbevolve"
)

var hashCmd = &cobra.Command{
	Use:   "hash <file>...",
	Short: "Print the fingerprint stored in the ledger for each file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			sum, err := dbevolve.HashFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", sum, path)
		}
		return nil
	},
}
