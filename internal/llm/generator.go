// Package llm provides the text-generation backends used to produce
// documentation comments, and the prompts sent to them.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Generator turns a prompt into generated text.
type Generator interface {
	// Name is the label recorded in generated comments (e.g. "Claude").
	Name() string

	// Generate returns the model's text for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationFailure reports a transport, authentication or protocol error
// from a backend.
type GenerationFailure struct {
	Backend string
	Status  int
	Err     error
}

func (e *GenerationFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s generation failed (status %d): %v", e.Backend, e.Status, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Backend, e.Err)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}

// Service identifies a backend.
type Service string

const (
	ServiceClaude Service = "claude"
	ServiceGPT    Service = "gpt"
	ServiceOllama Service = "ollama"
)

// Services lists the supported backends in display order.
var Services = []Service{ServiceClaude, ServiceGPT, ServiceOllama}

// ParseService normalizes a user-supplied service name.
func ParseService(raw string) (Service, error) {
	value := strings.TrimSpace(strings.ToLower(raw))
	switch value {
	case "claude", "anthropic":
		return ServiceClaude, nil
	case "gpt", "openai":
		return ServiceGPT, nil
	case "ollama":
		return ServiceOllama, nil
	default:
		return "", fmt.Errorf("unsupported service %q (supported: claude, gpt, ollama)", raw)
	}
}

// RequiresAPIKey reports whether the backend needs a credential.
func (s Service) RequiresAPIKey() bool {
	return s == ServiceClaude || s == ServiceGPT
}

// Options configures a backend. Zero values select backend defaults.
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
	Retries   int
}

// New constructs the backend for service.
func New(service Service, opts Options) (Generator, error) {
	if service.RequiresAPIKey() && strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("API key required for %s service", service)
	}
	switch service {
	case ServiceClaude:
		return NewClaude(opts), nil
	case ServiceGPT:
		return NewOpenAI(opts), nil
	case ServiceOllama:
		return NewOllama(opts), nil
	default:
		return nil, fmt.Errorf("unsupported service %q", service)
	}
}
