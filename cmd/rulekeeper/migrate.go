package main

import (
	"github.com/spf13/cobra"

	"github.com/gfcbot/rulekeeper/internal/db"
	"github.com/gfcbot/rulekeeper/internal/db/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.pool.Close()

			return db.RunMigrations(cmd.Context(), e.pool, e.log, migrations.FS)
		},
	})

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.pool.Close()

			states, err := db.Status(cmd.Context(), e.pool, migrations.FS)
			if err != nil {
				return err
			}

			return writeMigrations(cmd.OutOrStdout(), flagFmt, states)
		},
	}
	statusCmd.Flags().StringVar(&flagFmt, "format", "table", "Output format: table|json|yaml")
	cmd.AddCommand(statusCmd)

	return cmd
}
