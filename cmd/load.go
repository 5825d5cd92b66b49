package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/autodocs/manuals-cli/internal/salesdb"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Build the sales SQLite database from CSV/XLSX files",
	Long: `Rebuild the sales database from every .csv and .xlsx file in the data
directory. Each file becomes one table named after the file stem; the first
row supplies the column names.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := salesdb.Build(ctx, cfg.Sales.DataDir, cfg.Sales.DBPath); err != nil {
			return eris.Wrap(err, "load")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
