package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nazbav/spoolshelf/internal/app"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the filament dataset",
	}

	var dataPath string
	check := &cobra.Command{
		Use:   "check",
		Short: "Load the dataset and print a summary",
		Long: `Loads the dataset exactly like the server does, including the prices table,
and prints record counts. Exits non-zero when the dataset cannot be loaded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if dataPath != "" {
				cfg.Catalog.DataPath = dataPath
			}

			store, err := app.LoadCatalog(cmd.Context(), cfg.Catalog, logger)
			if err != nil {
				return fmt.Errorf("load %s: %w", cfg.Catalog.DataPath, err)
			}

			var defaulted, noPrice, noRating int
			for _, f := range store.All() {
				if len(f.Defaulted) > 0 {
					defaulted++
				}
				if !f.HasPrice() {
					noPrice++
				}
				if !f.HasRating() {
					noRating++
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records:        %d\n", store.Len())
			fmt.Fprintf(out, "materials:      %d\n", len(store.Materials()))
			fmt.Fprintf(out, "manufacturers:  %d\n", len(store.Manufacturers()))
			fmt.Fprintf(out, "defaulted:      %d\n", defaulted)
			fmt.Fprintf(out, "without price:  %d\n", noPrice)
			fmt.Fprintf(out, "without rating: %d\n", noRating)
			return nil
		},
	}
	check.Flags().StringVar(&dataPath, "data", "", "dataset path or URL (defaults to SPOOLSHELF_CATALOG_DATA_PATH)")

	cmd.AddCommand(check)
	return cmd
}
