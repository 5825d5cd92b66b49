package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/autodocs/manuals-cli/internal/agent"
	"github.com/autodocs/manuals-cli/internal/embed"
	"github.com/autodocs/manuals-cli/internal/salesdb"
	"github.com/autodocs/manuals-cli/internal/semantic"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question using the sales database and indexed manuals",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		question := strings.Join(args, " ")

		if cfg.Anthropic.Key == "" {
			return eris.New("ask: anthropic.key is required")
		}
		if cfg.Embed.Key == "" {
			return eris.New("ask: embed.key is required")
		}

		db, err := salesdb.Open(cfg.Sales.DBPath)
		if err != nil {
			return eris.Wrap(err, "ask")
		}
		defer db.Close() //nolint:errcheck

		store, err := semantic.New(cfg.Index.QdrantAddr, cfg.Index.Collection)
		if err != nil {
			return eris.Wrap(err, "ask")
		}
		defer store.Close() //nolint:errcheck

		systemPrompt := ""
		if cfg.Agent.SystemPromptPath != "" {
			data, err := os.ReadFile(cfg.Agent.SystemPromptPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return eris.Wrapf(err, "ask: read system prompt %s", cfg.Agent.SystemPromptPath)
				}
			} else {
				systemPrompt = string(data)
			}
		}

		embedder := embed.NewClient(cfg.Embed.Key, cfg.Embed.Model, cfg.Embed.BaseURL)
		tools := []agent.Tool{
			&agent.SQLSelectTool{DB: db, DefaultLimit: cfg.Agent.RowLimit},
			&agent.ManualSearchTool{Embedder: embedder, Store: store, DefaultK: cfg.Agent.TopK},
		}

		a := agent.New(cfg.Anthropic.Key, tools, agent.Options{
			Model:        cfg.Anthropic.Model,
			MaxTokens:    cfg.Anthropic.MaxTokens,
			MaxSteps:     cfg.Agent.MaxSteps,
			SystemPrompt: systemPrompt,
		})

		answer, err := a.Run(ctx, question)
		if err != nil {
			return eris.Wrap(err, "ask")
		}

		fmt.Println(answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
