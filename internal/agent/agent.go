// Package agent answers natural-language questions by letting a language
// model call the sales-database and manual-search tools, bounded by a
// maximum step count.
package agent

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Tool is a capability the model may invoke during a run.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Call(ctx context.Context, input json.RawMessage) (string, error)
}

// messenger abstracts the Messages API for test substitution.
type messenger interface {
	New(ctx context.Context, params sdk.MessageNewParams) (*sdk.Message, error)
}

type sdkMessenger struct {
	client sdk.Client
}

func (m *sdkMessenger) New(ctx context.Context, params sdk.MessageNewParams) (*sdk.Message, error) {
	return m.client.Messages.New(ctx, params)
}

// Options configures an Agent.
type Options struct {
	Model        string
	MaxTokens    int64
	MaxSteps     int
	SystemPrompt string
}

// Agent runs the tool-calling loop.
type Agent struct {
	api   messenger
	tools []Tool
	opts  Options
}

// New creates an Agent backed by the Anthropic API.
func New(apiKey string, tools []Tool, opts Options) *Agent {
	return newWithMessenger(&sdkMessenger{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
	}, tools, opts)
}

func newWithMessenger(api messenger, tools []Tool, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 8
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}
	return &Agent{api: api, tools: tools, opts: opts}
}

// Run answers one question. Each step is one model call; the loop ends when
// the model stops requesting tools or the step budget is exhausted.
func (a *Agent) Run(ctx context.Context, question string) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.opts.Model),
		MaxTokens: a.opts.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(question)),
		},
		Tools: a.toolParams(),
	}
	if a.opts.SystemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: a.opts.SystemPrompt}}
	}

	for step := 0; step < a.opts.MaxSteps; step++ {
		msg, err := a.api.New(ctx, params)
		if err != nil {
			return "", eris.Wrap(err, "agent: create message")
		}

		if msg.StopReason != "tool_use" {
			return textContent(msg), nil
		}

		params.Messages = append(params.Messages, msg.ToParam())

		var results []sdk.ContentBlockParamUnion
		for _, block := range msg.Content {
			if block.Type != "tool_use" {
				continue
			}
			output, isErr := a.dispatch(ctx, block.Name, block.Input)
			results = append(results, sdk.NewToolResultBlock(block.ID, output, isErr))
		}
		if len(results) == 0 {
			return textContent(msg), nil
		}
		params.Messages = append(params.Messages, sdk.NewUserMessage(results...))
	}

	return "", eris.Errorf("agent: no final answer after %d steps", a.opts.MaxSteps)
}

// dispatch runs one tool call. Tool failures are reported back to the model
// rather than aborting the run.
func (a *Agent) dispatch(ctx context.Context, name string, input json.RawMessage) (string, bool) {
	for _, t := range a.tools {
		if t.Name() != name {
			continue
		}
		zap.L().Info("tool call", zap.String("tool", name))
		out, err := t.Call(ctx, input)
		if err != nil {
			zap.L().Warn("tool call failed", zap.String("tool", name), zap.Error(err))
			return "Error: " + err.Error(), true
		}
		return out, false
	}
	return "Error: unknown tool " + name, true
}

func (a *Agent) toolParams() []sdk.ToolUnionParam {
	out := make([]sdk.ToolUnionParam, len(a.tools))
	for i, t := range a.tools {
		out[i] = sdk.ToolUnionParam{
			OfTool: &sdk.ToolParam{
				Name:        t.Name(),
				Description: sdk.String(t.Description()),
				InputSchema: sdk.ToolInputSchemaParam{
					Properties: t.InputSchema(),
				},
			},
		}
	}
	return out
}

func textContent(msg *sdk.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
