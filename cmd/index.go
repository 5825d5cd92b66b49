package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autodocs/manuals-cli/internal/embed"
	"github.com/autodocs/manuals-cli/internal/index"
	"github.com/autodocs/manuals-cli/internal/semantic"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index downloaded manuals into the vector collection",
	Long: `Walk the manual directories, extract text per PDF page, embed each page,
and upsert it into the Qdrant collection keyed by <path>::page:<n>.
Re-running overwrites existing pages instead of duplicating them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Embed.Key == "" {
			return eris.New("index: embed.key is required")
		}

		store, err := semantic.New(cfg.Index.QdrantAddr, cfg.Index.Collection)
		if err != nil {
			return eris.Wrap(err, "index")
		}
		defer store.Close() //nolint:errcheck

		if err := store.EnsureCollection(ctx, cfg.Index.Dims); err != nil {
			return eris.Wrap(err, "index")
		}

		embedder := embed.NewClient(cfg.Embed.Key, cfg.Embed.Model, cfg.Embed.BaseURL)
		ix := index.New(embedder, store, cfg.Index.BatchSize)

		pages, err := ix.Run(ctx, cfg.Index.SourceDirs)
		if err != nil {
			return eris.Wrap(err, "index")
		}

		zap.L().Info("index complete", zap.Int("pages", pages))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
