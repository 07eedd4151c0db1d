package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/commenter/internal/fileutil"
	"github.com/morozRed/commenter/internal/splice"
)

type RunSummary struct {
	Mode              string           `json:"mode"`
	Service           string           `json:"service"`
	RootPath          string           `json:"root_path,omitempty"`
	DryRun            bool             `json:"dry_run"`
	Files             int              `json:"files"`
	FilesChanged      int              `json:"files_changed"`
	FilesFailed       int              `json:"files_failed"`
	ElementsProcessed int              `json:"elements_processed"`
	ElementsFailed    int              `json:"elements_failed"`
	DurationMS        int64            `json:"duration_ms"`
	ChangedFiles      []string         `json:"changed_files,omitempty"`
	FailedFiles       []FileFailure    `json:"failed_files,omitempty"`
	Results           []splice.Summary `json:"results,omitempty"`
}

type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type ElementRunSummary struct {
	Mode    string `json:"mode"`
	Service string `json:"service"`
	Path    string `json:"path"`
	Slug    string `json:"slug"`
	Found   bool   `json:"found"`
	DryRun  bool   `json:"dry_run"`
	Error   string `json:"error,omitempty"`
}

type ReadmeSummary struct {
	Mode       string `json:"mode"`
	Service    string `json:"service"`
	RootPath   string `json:"root_path"`
	OutputFile string `json:"output_file"`
	Files      int    `json:"files"`
	Changed    bool   `json:"changed"`
	DryRun     bool   `json:"dry_run"`
	DurationMS int64  `json:"duration_ms"`
}

// add folds one file's result into the run totals.
func (s *RunSummary) add(result splice.Summary) {
	s.Files++
	s.ElementsProcessed += result.ElementsProcessed
	s.ElementsFailed += result.ElementsFailed
	if result.Changed {
		s.FilesChanged++
		s.ChangedFiles = append(s.ChangedFiles, result.Path)
	}
	s.Results = append(s.Results, result)
}

func (s *RunSummary) addFailure(path string, err error) {
	s.Files++
	s.FilesFailed++
	s.FailedFiles = append(s.FailedFiles, FileFailure{Path: path, Error: err.Error()})
}

// Err reports whether any file or element failed.
func (s RunSummary) Err() error {
	if s.FilesFailed == 0 && s.ElementsFailed == 0 {
		return nil
	}
	return fmt.Errorf("%s finished with %d failed file(s) and %d failed element(s)", s.Mode, s.FilesFailed, s.ElementsFailed)
}

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	for _, result := range summary.Results {
		printFileResult(w, result)
	}
	for _, failure := range summary.FailedFiles {
		fmt.Fprintf(w, "%s %s: %s\n", failureStyle.Render("failed"), failure.Path, failure.Error)
	}

	mode := summary.Mode
	if summary.DryRun {
		mode += " (dry-run)"
	}
	fmt.Fprintf(w,
		"%s: service=%s files=%d changed=%d failed=%d elements=%d element_failures=%d duration=%dms\n",
		mode,
		summary.Service,
		summary.Files,
		summary.FilesChanged,
		summary.FilesFailed,
		summary.ElementsProcessed,
		summary.ElementsFailed,
		summary.DurationMS,
	)
	if len(summary.ChangedFiles) > 0 {
		fmt.Fprintf(w, "changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
	}
	return nil
}

func printFileResult(w io.Writer, result splice.Summary) {
	fmt.Fprintln(w, repoStyle.Render(result.Path))
	for _, el := range result.Elements {
		label := elementStyle.Render(el.Kind + " " + el.Name)
		if el.Failed {
			fmt.Fprintf(w, "  %s %s line %d: %s\n", failureStyle.Render("failed"), label, el.Line, el.Error)
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", successStyle.Render("documented"), label, dimStyle.Render(el.Slug+" "+el.Version))
	}
}

func PrintElementSummary(w io.Writer, summary ElementRunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}
	switch {
	case summary.Error != "":
		fmt.Fprintf(w, "%s %s in %s: %s\n", failureStyle.Render("failed"), summary.Slug, summary.Path, summary.Error)
	case !summary.Found:
		fmt.Fprintf(w, "%s slug %s not found in %s\n", failureStyle.Render("missing"), summary.Slug, summary.Path)
	case summary.DryRun:
		fmt.Fprintf(w, "%s %s in %s (dry-run)\n", successStyle.Render("regenerated"), elementStyle.Render(summary.Slug), summary.Path)
	default:
		fmt.Fprintf(w, "%s %s in %s\n", successStyle.Render("regenerated"), elementStyle.Render(summary.Slug), summary.Path)
	}
	return nil
}

func PrintReadmeSummary(w io.Writer, summary ReadmeSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}
	status := "unchanged"
	if summary.Changed {
		status = "updated"
	}
	if summary.DryRun {
		status += " (dry-run)"
	}
	fmt.Fprintf(w, "%s %s from %d file(s) in %dms: %s\n",
		successStyle.Render("readme"), summary.OutputFile, summary.Files, summary.DurationMS, status)
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
