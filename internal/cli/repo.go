package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/morozRed/commenter/internal/discover"
	"github.com/morozRed/commenter/internal/readme"
	"github.com/morozRed/commenter/internal/splice"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func RunRepo(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}

	start := time.Now()
	files, err := discover.Files(rootPath, rt.registry.Supports)
	if err != nil {
		return err
	}
	rt.logger.Info("processing repository", "root", rootPath, "files", len(files), "jobs", rt.cfg.Jobs)

	summary, err := processFiles(cmd.Context(), rt, rootPath, files)
	if err != nil {
		return err
	}
	summary.RootPath = rootPath
	summary.DurationMS = time.Since(start).Milliseconds()

	if err := PrintRunSummary(rt.out, summary, rt.asJSON); err != nil {
		return err
	}
	return summary.Err()
}

type fileOutcome struct {
	result splice.Summary
	err    error
}

// processFiles runs the engine over files with up to cfg.Jobs workers. A
// failing file is recorded and the pass continues; only cancellation stops
// it.
func processFiles(ctx context.Context, rt *runtime, rootPath string, files []string) (RunSummary, error) {
	summary := RunSummary{Mode: "repo", Service: rt.gen.Name(), DryRun: rt.dryRun}
	outcomes := make([]fileOutcome, len(files))
	progress := newProgressReporter("repo", len(files), rt.asJSON)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.cfg.Jobs)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(rootPath, filepath.FromSlash(rel))
			result, err := rt.engine.ProcessFile(gctx, rt.gen, rt.prompt, path)
			result.Path = rel
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			outcomes[i] = fileOutcome{result: result, err: err}
			progress.Finish(rel)
			return nil
		})
	}
	err := g.Wait()
	progress.Done()
	if err != nil {
		return summary, err
	}

	for i, outcome := range outcomes {
		if outcome.err != nil {
			rt.logger.Warn("file failed", "file", files[i], "error", outcome.err)
			summary.addFailure(files[i], outcome.err)
			continue
		}
		summary.add(outcome.result)
	}
	return summary, nil
}

func RunReadme(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}

	start := time.Now()
	files, err := discover.Files(rootPath, rt.registry.Supports)
	if err != nil {
		return err
	}
	outline := readme.BuildOutline(rootPath, files, rt.registry)
	for _, file := range outline.Files {
		if file.Err != nil {
			rt.logger.Warn("file not outlined", "file", file.Path, "error", file.Err)
		}
	}

	body, err := readme.Generate(cmd.Context(), rt.gen, outline)
	if err != nil {
		return fmt.Errorf("failed to generate README: %w", err)
	}
	outputFile := filepath.Join(rootPath, readme.FileName)
	changed, err := readme.UpsertManagedMarkdownFile(outputFile, body, rt.dryRun)
	if err != nil {
		return err
	}

	return PrintReadmeSummary(rt.out, ReadmeSummary{
		Mode:       "readme",
		Service:    rt.gen.Name(),
		RootPath:   rootPath,
		OutputFile: outputFile,
		Files:      len(files),
		Changed:    changed,
		DryRun:     rt.dryRun,
		DurationMS: time.Since(start).Milliseconds(),
	}, rt.asJSON)
}

func resolveRoot(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	rootPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %q is not a directory", rootPath)
	}
	return rootPath, nil
}
