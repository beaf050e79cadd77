package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tokens with usage and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, closeFn, err := openLedger(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		tokens := ledger.List(cmd.Context())
		if len(tokens) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tokens issued yet.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSED\tLIMIT\tSTATUS\tCREATED")
		for _, t := range tokens {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", t.ID, t.Used, t.Limit, t.Status(), t.CreatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}
