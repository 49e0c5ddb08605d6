package cli

import (
	"fmt"

	"videoquiz/internal/database"
	"videoquiz/internal/logger"

	"github.com/spf13/cobra"
)

// newMigrateCmd applies database migrations for the configured driver.
func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := database.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(cmd.Context(), db, logger.Get()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.DB.Driver)
			return nil
		},
	}
}
