package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	claudeDefaultURL       = "https://api.anthropic.com"
	claudeDefaultModel     = "claude-3-opus-20240229"
	claudeDefaultMaxTokens = 1000
)

// Claude calls the Anthropic Messages API.
type Claude struct {
	api       anthropic.Client
	model     string
	maxTokens int
}

func NewClaude(opts Options) *Claude {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = claudeDefaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = claudeDefaultMaxTokens
	}
	return &Claude{
		api: anthropic.NewClient(
			option.WithAPIKey(opts.APIKey),
			option.WithBaseURL(baseURL(opts.BaseURL, claudeDefaultURL)+"/"),
			option.WithMaxRetries(retries(opts)),
			option.WithRequestTimeout(timeout(opts)),
		),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *Claude) Name() string {
	return "Claude"
}

func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		failure := &GenerationFailure{Backend: c.Name(), Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			failure.Status = apiErr.StatusCode
		}
		return "", failure
	}

	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", emptyResponse(c.Name())
}
