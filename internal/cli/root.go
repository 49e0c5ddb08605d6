package cli

import (
	"os"

	"videoquiz/internal/config"
	"videoquiz/internal/logger"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	configPath := os.Getenv("CONFIG_PATH")

	cmd := &cobra.Command{
		Use:          "quizctl",
		Short:        "Operator tooling for the video quiz service",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", configPath, "path to YAML config (defaults to ./config.yaml or ./config/config.yaml)")
	cmd.AddCommand(newMigrateCmd(&configPath))
	cmd.AddCommand(newGenerateCmd(&configPath))
	cmd.AddCommand(newPurgeTokensCmd(&configPath))
	return cmd
}

// loadConfig loads the configuration and initializes the global logger.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigFrom(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, err
	}
	return cfg, nil
}
