package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	switch c.Service {
	case "claude", "anthropic", "gpt", "openai", "ollama":
	default:
		return fmt.Errorf("service must be one of claude, gpt, ollama, got %q", c.Service)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("timeout must be a duration such as 120s, got %q", c.Timeout)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.OnFailure != "keep" && c.OnFailure != "drop" {
		return fmt.Errorf("on_failure must be keep or drop, got %q", c.OnFailure)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	for name, raw := range map[string]string{"host": c.Host, "base_url": c.BaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	return nil
}
