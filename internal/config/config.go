// Package config loads the optional .commenter.yaml settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up in the working directory.
const FileName = ".commenter.yaml"

// Config holds run settings. Command-line flags override these values.
type Config struct {
	Service   string `yaml:"service"`     // claude, gpt or ollama
	Model     string `yaml:"model"`       // backend default when empty
	APIKeyEnv string `yaml:"api_key_env"` // env var holding the API key
	Host      string `yaml:"host"`        // Ollama host
	BaseURL   string `yaml:"base_url"`    // Claude / OpenAI endpoint override
	Timeout   string `yaml:"timeout"`     // per-request timeout, Go duration
	Retries   int    `yaml:"retries"`     // extra attempts on transient failures
	Jobs      int    `yaml:"jobs"`        // files processed in parallel by repo
	OnFailure string `yaml:"on_failure"`  // keep or drop
	MaxTokens int    `yaml:"max_tokens"`  // Claude response budget
	Language  string `yaml:"language"`    // language named in prompts
	Notes     string `yaml:"notes"`       // extra context appended to prompts
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads configuration from a YAML file over the defaults. Unknown
// fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads path when given, otherwise FileName in dir when it exists,
// otherwise the defaults. The result is validated.
func Resolve(path, dir string) (*Config, error) {
	var cfg *Config
	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			loaded, err := Load(candidate)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		} else {
			cfg = Default()
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults applies explicit default values to unset fields. Zero is a
// valid retries value, so it is only applied to a fresh Config.
func (c *Config) setDefaults() {
	if c.Service == "" {
		c.Service = "ollama"
	}
	if c.Host == "" {
		c.Host = "http://localhost:11434"
	}
	if c.Timeout == "" {
		c.Timeout = "120s"
	}
	c.Retries = 1
	if c.Jobs == 0 {
		c.Jobs = 4
	}
	if c.OnFailure == "" {
		c.OnFailure = "keep"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.Language == "" {
		c.Language = "TypeScript"
	}
}

// TimeoutDuration returns the parsed request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// APIKeyVar returns the environment variable consulted for the API key.
func (c *Config) APIKeyVar() string {
	if c.APIKeyEnv != "" {
		return c.APIKeyEnv
	}
	switch c.Service {
	case "claude", "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gpt", "openai":
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
