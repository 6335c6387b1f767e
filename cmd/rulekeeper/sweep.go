package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gfcbot/rulekeeper/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one retention sweep now and print its summary",
		Long: "Run one retention sweep against every tenant with an enabled policy.\n" +
			"The command exits non-zero when any tenant failed or was skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.pool.Close()

			c := wire(e)

			summary, err := c.sweeper.Run(cmd.Context())
			if err != nil {
				return err
			}

			if err := writeSummary(cmd.OutOrStdout(), flagFmt, summary); err != nil {
				return err
			}

			if !summary.OK() {
				return errSweepIncomplete(summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFmt, "format", "table", "Output format: table|json|yaml")

	return cmd
}

func errSweepIncomplete(s *sweep.Summary) error {
	return fmt.Errorf("sweep incomplete: %d failure(s), %d tenant(s) skipped", len(s.Failures), len(s.Skipped))
}
