package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openAIDefaultURL   = "https://api.openai.com"
	openAIDefaultModel = "gpt-4"
)

// OpenAI calls the Chat Completions API. The configured base URL is the
// API host; the /v1 prefix is appended here.
type OpenAI struct {
	api   openai.Client
	model string
}

func NewOpenAI(opts Options) *OpenAI {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAI{
		api: openai.NewClient(
			option.WithAPIKey(opts.APIKey),
			option.WithBaseURL(baseURL(opts.BaseURL, openAIDefaultURL)+"/v1/"),
			option.WithMaxRetries(retries(opts)),
			option.WithRequestTimeout(timeout(opts)),
		),
		model: model,
	}
}

func (o *OpenAI) Name() string {
	return "GPT"
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := o.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		failure := &GenerationFailure{Backend: o.Name(), Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			failure.Status = apiErr.StatusCode
		}
		return "", failure
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", emptyResponse(o.Name())
	}
	return completion.Choices[0].Message.Content, nil
}
