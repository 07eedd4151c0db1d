package llm

import (
	"context"
	"strings"
)

const (
	ollamaDefaultHost  = "http://localhost:11434"
	ollamaDefaultModel = "qwen2.5:7b-instruct"
)

// Ollama calls a local Ollama server's generate endpoint.
type Ollama struct {
	client
	host  string
	model string
}

func NewOllama(opts Options) *Ollama {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = ollamaDefaultModel
	}
	return &Ollama{
		client: newClient("Ollama", opts),
		host:   baseURL(opts.BaseURL, ollamaDefaultHost),
		model:  model,
	}
}

func (o *Ollama) Name() string {
	return "Ollama"
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	var resp ollamaResponse
	err := o.postJSON(ctx, o.host+"/api/generate", nil, ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	}, &resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", emptyResponse(o.Name())
	}
	return resp.Response, nil
}
