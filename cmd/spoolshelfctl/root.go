package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/platform/config"
	"github.com/nazbav/spoolshelf/internal/platform/observability"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "spoolshelfctl",
		Short: "Spoolshelf maintenance CLI",
		Long: `spoolshelfctl maintains the data files behind the filament catalog.

COMMANDS:
  catalog check    Load the dataset and report what the server would see
  prices refresh   Query marketplaces and rewrite the prices table

Configuration is read from SPOOLSHELF_* variables and an optional .env file,
the same way the server reads it.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path of the .env file to read")

	root.AddCommand(newCatalogCmd(opts))
	root.AddCommand(newPricesCmd(opts))
	return root
}

func (o *rootOptions) load(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cmd.Context(), config.WithEnvFile(o.envFile))
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := observability.NewLogger(observability.LoggerOptions{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Service:     "spoolshelfctl",
		Output:      "stderr",
	})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
