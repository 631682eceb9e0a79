package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
	"github.com/dwoolworth/bizdesk/session"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report stored data that no longer matches the record schemas",
		Long: `Read every stored collection without loading it and report blobs that do
not parse, missing or duplicate ids, undeclared fields, invalid values and
stored keys that belong to no collection. Exits non-zero when drift is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			opts.module = models.ModuleAdmin
			if err := a.gate.Require(session.AdminRole); err != nil {
				return err
			}
			drifts, err := bizdesk.CheckStore(cmd.Context(), a.db, session.SlotKey)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(drifts) == 0 {
				fmt.Fprintln(out, "✓ No drift detected")
				return nil
			}
			for _, d := range drifts {
				fmt.Fprintf(out, "⚠ %s\n", d.Error())
			}
			return fmt.Errorf("%d drift problems found", len(drifts))
		},
	}
}
