package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civitas-ai/opinionspace/internal/config"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/database/postgres"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigration(cfg.Database.DSN(), cfg.Database.MigrationPath, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationStatus(cfg.Database.DSN(), cfg.Database.MigrationPath)
			if err != nil {
				return err
			}
			if version == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
