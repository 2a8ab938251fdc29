package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/app"
	"github.com/nazbav/spoolshelf/internal/prices"
)

func newPricesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Maintain marketplace prices",
	}

	var (
		outPath string
		limit   int
	)
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Search marketplaces for every filament and write the prices table",
		Long: `Searches Ozon, Wildberries and AliExpress for every filament in the dataset
and records the first hit of each. Requests are throttled; failed lookups are
stored as null and do not stop the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if outPath == "" {
				outPath = cfg.Catalog.PricesPath
			}

			// The current table must not mask records that still lack a price.
			catalogCfg := cfg.Catalog
			catalogCfg.PricesPath = ""
			store, err := app.LoadCatalog(cmd.Context(), catalogCfg, logger)
			if err != nil {
				return fmt.Errorf("load %s: %w", cfg.Catalog.DataPath, err)
			}
			items := store.All()
			if limit > 0 && limit < len(items) {
				items = items[:limit]
			}

			refresher := prices.NewRefresher(prices.Options{
				Interval:    cfg.Prices.Interval,
				Concurrency: cfg.Prices.Concurrency,
				Timeout:     cfg.Prices.Timeout,
				UserAgent:   cfg.Prices.UserAgent,
				Logger:      logger.Named("prices"),
			})
			table, err := refresher.Refresh(cmd.Context(), items)
			if err != nil {
				return err
			}
			if err := prices.WriteFile(outPath, table); err != nil {
				return err
			}

			found := len(table.Lowest())
			logger.Info("prices refreshed", zap.String("path", outPath), zap.Int("filaments", len(table)), zap.Int("priced", found))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d filaments, %d with a price\n", outPath, len(table), found)
			return nil
		},
	}
	refresh.Flags().StringVarP(&outPath, "out", "o", "", "output path (defaults to SPOOLSHELF_CATALOG_PRICES_PATH)")
	refresh.Flags().IntVar(&limit, "limit", 0, "only refresh the first N filaments")

	cmd.AddCommand(refresh)
	return cmd
}
