package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a new token with a usage limit",
	Long: `Issue a new token with a usage limit.

Run this while the server is stopped. A running server loads the ledger once
and rewrites the stored copy on its next change, which drops tokens issued here.
Use POST /api/v1/admin/tokens against a live server instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ledger, closeFn, err := openLedger(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		tok, err := ledger.Issue(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("issue: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tlimit=%d\n", tok.ID, tok.Limit)
		return nil
	},
}

func init() {
	issueCmd.Flags().Int("limit", 10, "Number of generations the token allows")
}
