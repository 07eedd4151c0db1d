package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

// ErrSlugNotFound reports that no element in the file carries the requested
// slug.
var ErrSlugNotFound = errors.New("slug not found")

func RunFile(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	path := filepath.Clean(args[0])
	summary := RunSummary{Mode: "file", Service: rt.gen.Name(), DryRun: rt.dryRun}

	result, err := rt.engine.ProcessFile(cmd.Context(), rt.gen, rt.prompt, path)
	if err != nil {
		summary.addFailure(path, err)
	} else {
		summary.add(result)
	}
	summary.DurationMS = time.Since(start).Milliseconds()

	if err := PrintRunSummary(rt.out, summary, rt.asJSON); err != nil {
		return err
	}
	return summary.Err()
}

func RunElement(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	path, slug := filepath.Clean(args[0]), args[1]
	summary := ElementRunSummary{Mode: "element", Service: rt.gen.Name(), Path: path, Slug: slug, DryRun: rt.dryRun}

	found, runErr := rt.engine.ProcessSingleElement(cmd.Context(), rt.gen, rt.prompt, path, slug)
	summary.Found = found
	if runErr != nil {
		summary.Error = runErr.Error()
	}
	if err := PrintElementSummary(rt.out, summary, rt.asJSON); err != nil {
		return err
	}

	switch {
	case runErr != nil:
		return runErr
	case !found:
		return fmt.Errorf("%w: %s in %s", ErrSlugNotFound, slug, path)
	default:
		return nil
	}
}
