package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/morozRed/commenter/internal/config"
	"github.com/morozRed/commenter/internal/element"
	"github.com/morozRed/commenter/internal/languages"
	"github.com/morozRed/commenter/internal/llm"
	"github.com/morozRed/commenter/internal/splice"
	"github.com/spf13/cobra"
)

const configFileName = config.FileName

// newGenerator is replaced in tests.
var newGenerator = llm.New

// runtime bundles what every command needs once flags and config are merged.
type runtime struct {
	cfg      *config.Config
	gen      llm.Generator
	registry *element.Registry
	engine   *splice.Engine
	prompt   llm.PromptContext
	logger   *slog.Logger
	out      io.Writer
	asJSON   bool
	dryRun   bool
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	workDir, err := resolveWorkingDirectory()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(configPath, workDir)
	if err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return nil, err
	}
	verbose, err := OptionalBoolFlag(cmd, "verbose")
	if err != nil {
		return nil, err
	}
	dryRun, err := OptionalBoolFlag(cmd, "dry-run")
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), verbose)
	gen, err := buildGenerator(cmd, cfg)
	if err != nil {
		return nil, err
	}
	policy, err := splice.ParseFailurePolicy(cfg.OnFailure)
	if err != nil {
		return nil, err
	}

	registry := languages.NewDefaultRegistry()
	return &runtime{
		cfg:      cfg,
		gen:      gen,
		registry: registry,
		engine: splice.New(registry, splice.Config{
			Logger:    logger,
			OnFailure: policy,
			DryRun:    dryRun,
		}),
		prompt: llm.PromptContext{Language: cfg.Language, Notes: cfg.Notes},
		logger: logger,
		out:    cmd.OutOrStdout(),
		asJSON: asJSON,
		dryRun: dryRun,
	}, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	for name, target := range map[string]*string{
		"service": &cfg.Service,
		"model":   &cfg.Model,
		"host":    &cfg.Host,
	} {
		value, err := OptionalStringFlag(cmd, name)
		if err != nil {
			return err
		}
		if value != "" {
			*target = value
		}
	}
	jobs, err := OptionalIntFlag(cmd, "jobs")
	if err != nil {
		return err
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	return nil
}

func buildGenerator(cmd *cobra.Command, cfg *config.Config) (llm.Generator, error) {
	service, err := llm.ParseService(cfg.Service)
	if err != nil {
		return nil, err
	}
	apiKey, err := OptionalStringFlag(cmd, "api-key")
	if err != nil {
		return nil, err
	}
	if apiKey == "" && cfg.APIKeyVar() != "" {
		apiKey = strings.TrimSpace(os.Getenv(cfg.APIKeyVar()))
	}

	opts := llm.Options{
		APIKey:    apiKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.TimeoutDuration(),
		Retries:   cfg.Retries,
	}
	if service == llm.ServiceOllama {
		opts.BaseURL = cfg.Host
	}
	gen, err := newGenerator(service, opts)
	if err != nil {
		if service.RequiresAPIKey() {
			return nil, fmt.Errorf("%w (pass --api-key or set %s)", err, cfg.APIKeyVar())
		}
		return nil, err
	}
	return gen, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}
