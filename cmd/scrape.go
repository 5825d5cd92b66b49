package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autodocs/manuals-cli/internal/fetcher"
	"github.com/autodocs/manuals-cli/internal/pipeline"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Download the latest English owner's manual for each vehicle",
	Long: `Fetch the vendor product catalog, collapse duplicate variants to the most
recent production record per vehicle, resolve each vehicle's publication set,
and download the newest English Owner's Manual as a PDF.

Already-downloaded files are skipped; use --force to re-download.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		force, _ := cmd.Flags().GetBool("force")
		limit, _ := cmd.Flags().GetInt("limit")
		if !cmd.Flags().Changed("limit") {
			limit = cfg.Scrape.ProductLimit
		}

		f := fetcher.New(fetcher.Options{
			Timeout:         60 * time.Second,
			DownloadTimeout: 2 * time.Minute,
			MaxRetries:      3,
		})

		p := pipeline.New(f, pipeline.Options{
			APIBase:      cfg.Vendor.APIBaseURL,
			PortalBase:   cfg.Vendor.PortalBaseURL,
			OutDir:       cfg.Scrape.OutDir,
			Language:     cfg.Scrape.Language,
			ProductLimit: limit,
			YearCap:      cfg.Scrape.YearCap,
			SiblingYears: cfg.Scrape.SiblingYears,
			Merge:        cfg.Scrape.Merge,
			Force:        force,
		})

		sum, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "scrape")
		}

		zap.L().Info("scrape complete",
			zap.Int("products", sum.Products),
			zap.Int("downloaded", sum.Downloaded),
			zap.Int("skipped", sum.Skipped),
		)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().Bool("force", false, "re-download files that already exist")
	scrapeCmd.Flags().Int("limit", 0, "max products to process (0 = config default)")
	rootCmd.AddCommand(scrapeCmd)
}
