package cli

import (
	"fmt"

	"videoquiz/internal/database"
	"videoquiz/internal/logger"
	"videoquiz/internal/repository"

	"github.com/spf13/cobra"
)

// newPurgeTokensCmd deletes expired rows from the SQL token blacklist.
func newPurgeTokensCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete expired entries from the database token blacklist",
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

			n, err := repository.NewSQLTokenBlacklist(db).PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired tokens\n", n)
			return nil
		},
	}
}
