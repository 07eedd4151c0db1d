// Package splice inserts and refreshes generated documentation comments in
// source files.
//
// Elements are processed in ascending order of their original start line.
// Every insertion or removal shifts the lines below it, so a running offset
// (lines inserted minus lines removed so far) maps each element's reported
// span onto the mutated buffer. The buffer is written back once, after the
// whole pass.
package splice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/morozRed/commenter/internal/comment"
	"github.com/morozRed/commenter/internal/element"
	"github.com/morozRed/commenter/internal/fileutil"
	"github.com/morozRed/commenter/internal/llm"
)

// Extractor returns the elements of a file's content ordered by start line.
type Extractor interface {
	Extract(path string, content []byte) ([]element.CodeElement, error)
}

// Config tunes an Engine. Zero values select defaults.
type Config struct {
	// Now stamps generated comments; defaults to time.Now.
	Now func() time.Time
	// Rand is the entropy source for fresh slugs.
	Rand *rand.Rand
	// Logger receives per-element records; defaults to slog.Default().
	Logger *slog.Logger
	// OnFailure selects what happens to an existing comment when
	// regeneration fails; defaults to KeepPrior.
	OnFailure FailurePolicy
	// DryRun computes the result without writing files.
	DryRun bool
}

// Engine runs comment passes over files. It is safe for concurrent use on
// distinct files; callers must not process the same path concurrently.
type Engine struct {
	extractor Extractor
	now       func() time.Time
	logger    *slog.Logger
	onFailure FailurePolicy
	dryRun    bool

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an Engine.
func New(extractor Extractor, cfg Config) *Engine {
	e := &Engine{
		extractor: extractor,
		now:       cfg.Now,
		logger:    cfg.Logger,
		onFailure: cfg.OnFailure,
		dryRun:    cfg.DryRun,
		rng:       cfg.Rand,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.onFailure == "" {
		e.onFailure = KeepPrior
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// ProcessFile regenerates the comment of every element in path. Generation
// failures are recorded per element and do not stop the pass; extraction
// failures, cancellation and offset invariant violations abort it before
// anything is written.
func (e *Engine) ProcessFile(ctx context.Context, gen llm.Generator, pc llm.PromptContext, path string) (Summary, error) {
	summary := Summary{Path: path, DryRun: e.dryRun}

	original, elements, err := e.load(path)
	if err != nil {
		return summary, err
	}

	lines := fileutil.SplitLines(original)
	newline := fileutil.LineEnding(lines)
	offset := 0

	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		var res ElementResult
		lines, offset, res, err = e.spliceElement(ctx, gen, pc, path, lines, offset, newline, el)
		if err != nil {
			return summary, err
		}
		summary.Elements = append(summary.Elements, res)
		if res.Failed {
			summary.ElementsFailed++
		} else {
			summary.ElementsProcessed++
		}
	}

	summary.Output = fileutil.JoinLines(lines)
	changed, err := e.writeBack(path, original, summary.Output)
	summary.Changed = changed
	return summary, err
}

// ProcessSingleElement regenerates the comment of the one element whose
// existing comment carries slug. Other elements are not touched. It reports
// false, leaving the file untouched, when no element carries the slug.
func (e *Engine) ProcessSingleElement(ctx context.Context, gen llm.Generator, pc llm.PromptContext, path, slug string) (bool, error) {
	original, elements, err := e.load(path)
	if err != nil {
		return false, err
	}

	lines := fileutil.SplitLines(original)
	for _, el := range elements {
		found, ok := comment.FindSlug(lines, el.Span.StartLine-1)
		if !ok || found != slug {
			continue
		}

		lines, _, res, err := e.spliceElement(ctx, gen, pc, path, lines, 0, fileutil.LineEnding(lines), el)
		if err != nil {
			return true, err
		}
		if res.Failed {
			return true, &ElementError{Path: path, Name: res.Name, Line: res.Line, Slug: slug, Err: errors.New(res.Error)}
		}
		_, err = e.writeBack(path, original, fileutil.JoinLines(lines))
		return true, err
	}

	e.logger.Info("slug not found", "file", path, "slug", slug)
	return false, nil
}

func (e *Engine) load(path string) (string, []element.CodeElement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	elements, err := e.extractor.Extract(path, data)
	if err != nil {
		return "", nil, err
	}
	return string(data), element.Normalize(elements), nil
}

func (e *Engine) writeBack(path, original, updated string) (bool, error) {
	if updated == original {
		return false, nil
	}
	if e.dryRun {
		return true, nil
	}
	if _, err := fileutil.WriteIfChangedTracked(path, []byte(updated)); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// spliceElement replaces the comment above el and returns the updated buffer
// and offset. A generation failure is reported in the result, with the
// buffer restored according to the failure policy; the returned error is
// reserved for conditions that must abort the whole file.
func (e *Engine) spliceElement(
	ctx context.Context,
	gen llm.Generator,
	pc llm.PromptContext,
	path string,
	lines []string,
	offset int,
	newline string,
	el element.CodeElement,
) ([]string, int, ElementResult, error) {
	res := ElementResult{Name: el.Name, Kind: el.Kind.String(), Line: el.Span.StartLine}

	start := el.Span.StartLine - 1 + offset
	if start < 0 || start >= len(lines) {
		return lines, offset, res, fmt.Errorf("%w: %s:%d (%s) maps to index %d of %d",
			ErrOffsetInvariant, path, el.Span.StartLine, el.Name, start, len(lines))
	}

	lines, prior, start, offset := stripPriorComment(lines, start, offset)
	slug, version := e.identity(strings.Join(prior, ""))
	res.Slug = slug

	fail := func(err error) ([]string, int, ElementResult, error) {
		res.Failed = true
		res.Error = err.Error()
		e.logger.Warn("comment generation failed",
			"file", path, "element", el.Name, "line", el.Span.StartLine, "slug", slug, "error", err)
		if e.onFailure == KeepPrior && len(prior) > 0 {
			lines = insertLines(lines, start, prior)
			offset += len(prior)
		}
		return lines, offset, res, nil
	}

	prompt := llm.BuildCommentPrompt(pc, codeSlice(lines, start, el.Span.Lines()), llm.ElementContext(path, el))
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return lines, offset, res, ctxErr
		}
		return fail(err)
	}
	draft, err := comment.ParseResponse(raw)
	if err != nil {
		return fail(err)
	}

	block := buildBlock(draft, el, slug, version, e.now(), gen.Name())
	rendered := comment.Render(block, el.Kind, comment.HasNonVoidReturn(el.ReturnType))
	indented := indentBlock(rendered, fileutil.Indentation(lines[start]), newline)

	lines = insertLines(lines, start, indented)
	offset += len(indented)

	res.Version = version.String()
	e.logger.Debug("documented element",
		"file", path, "element", el.Name, "line", el.Span.StartLine, "slug", slug, "version", res.Version)
	return lines, offset, res, nil
}

func (e *Engine) identity(prior string) (string, comment.Version) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return comment.Identity(prior, e.rng)
}

// buildBlock merges decoded content with the element's declared metadata.
// Declared parameters and types take precedence over generated ones.
func buildBlock(d comment.Draft, el element.CodeElement, slug string, version comment.Version, now time.Time, label string) comment.Block {
	b := comment.Block{
		Description:    d.Description,
		Slug:           slug,
		Version:        version,
		GeneratedAt:    now,
		GeneratorLabel: label,
	}
	if el.Kind != element.KindFunction {
		return b
	}

	b.IsAsync = el.IsAsync || d.IsAsync
	generated := make(map[string]comment.Param, len(d.Parameters))
	for _, p := range d.Parameters {
		generated[paramKey(p.Name)] = p
	}
	for _, declared := range el.Parameters {
		p := comment.Param{Name: declared.Name, Type: declared.Type}
		if g, ok := generated[paramKey(declared.Name)]; ok {
			p.Description = g.Description
			p.Default = g.Default
			if isUntyped(p.Type) && g.Type != "" {
				p.Type = g.Type
			}
		}
		b.Parameters = append(b.Parameters, p)
	}

	returnType := el.ReturnType
	if d.Returns != nil {
		if isUntyped(returnType) && d.Returns.Type != "" {
			returnType = d.Returns.Type
		}
		b.Returns = &comment.Returns{Type: returnType, Description: d.Returns.Description}
	} else if !isUntyped(returnType) {
		b.Returns = &comment.Returns{Type: returnType}
	}
	return b
}

func paramKey(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "...")
	name = strings.TrimSuffix(name, "?")
	return strings.ToLower(name)
}

func isUntyped(t string) bool {
	t = strings.TrimSpace(t)
	return t == "" || t == element.AnyType
}
