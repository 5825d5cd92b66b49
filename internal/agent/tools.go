package agent

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/autodocs/manuals-cli/internal/salesdb"
	"github.com/autodocs/manuals-cli/internal/semantic"
)

// SQLSelectTool runs read-only SELECT queries against the sales database.
type SQLSelectTool struct {
	DB           *sql.DB
	DefaultLimit int
}

func (t *SQLSelectTool) Name() string { return "sql_select" }

func (t *SQLSelectTool) Description() string {
	return "Run read-only SQL SELECT queries against the local sales database. Only SELECT is allowed."
}

func (t *SQLSelectTool) InputSchema() map[string]any {
	return map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "SQL SELECT statement to execute. Only SELECT is allowed.",
		},
		"limit": map[string]any{
			"type":        "integer",
			"description": "Maximum number of rows to return.",
		},
	}
}

type sqlSelectInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (t *SQLSelectTool) Call(ctx context.Context, input json.RawMessage) (string, error) {
	var in sqlSelectInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", eris.Wrap(err, "sql_select: parse input")
	}
	if strings.TrimSpace(in.Query) == "" {
		return "", eris.New("sql_select: 'query' is required")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = t.DefaultLimit
	}

	cols, rows, err := salesdb.Select(ctx, t.DB, in.Query, limit)
	if err != nil {
		return "", err
	}
	return salesdb.RenderCSV(cols, rows), nil
}

// Searcher performs similarity search over the passage index.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]semantic.SearchResult, error)
}

// Embedder turns the query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ManualSearchTool retrieves relevant manual passages with citations.
type ManualSearchTool struct {
	Embedder Embedder
	Store    Searcher
	DefaultK int
}

func (t *ManualSearchTool) Name() string { return "manual_search" }

func (t *ManualSearchTool) Description() string {
	return "Retrieve relevant passages from the indexed owner's manuals. Returns top-k passages with citations."
}

func (t *ManualSearchTool) InputSchema() map[string]any {
	return map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "Natural language question.",
		},
		"k": map[string]any{
			"type":        "integer",
			"description": "Number of passages to retrieve.",
		},
	}
}

type manualSearchInput struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func (t *ManualSearchTool) Call(ctx context.Context, input json.RawMessage) (string, error) {
	var in manualSearchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", eris.Wrap(err, "manual_search: parse input")
	}
	if strings.TrimSpace(in.Query) == "" {
		return "", eris.New("manual_search: 'query' is required")
	}
	topK := in.K
	if topK <= 0 {
		topK = t.DefaultK
	}
	if topK <= 0 {
		topK = 5
	}

	vectors, err := t.Embedder.Embed(ctx, []string{in.Query})
	if err != nil {
		return "", eris.Wrap(err, "manual_search: embed query")
	}

	results, err := t.Store.Search(ctx, vectors[0], topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No relevant passages found.", nil
	}

	return FormatPassages(results), nil
}

// FormatPassages renders scored passages with their citations for the model.
func FormatPassages(results []semantic.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[%d] score=%.4f source=%s page=%d\n%s",
			i+1, r.Score, r.Source, r.Page, strings.TrimSpace(r.Content))
	}
	return strings.Join(parts, "\n\n")
}
