package cli

import (
	"fmt"

	"storefront/internal/repository"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres order schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, logger, err := loadConfig()
				if err != nil {
					return err
				}

				if err := repository.RunMigrations(cfg.Database.ConnectionString()); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}

				logger.Info().Str("database", cfg.Database.Database).Msg("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all applied migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, logger, err := loadConfig()
				if err != nil {
					return err
				}

				if err := repository.RollbackMigrations(cfg.Database.ConnectionString()); err != nil {
					return fmt.Errorf("failed to roll back migrations: %w", err)
				}

				logger.Info().Str("database", cfg.Database.Database).Msg("migrations rolled back")
				return nil
			},
		},
	)

	return cmd
}
