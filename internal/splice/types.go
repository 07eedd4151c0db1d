package splice

import (
	"errors"
	"fmt"
)

// ErrOffsetInvariant reports that offset bookkeeping mapped an element
// outside the line buffer. It is a programming error and aborts the file.
var ErrOffsetInvariant = errors.New("element position outside line buffer")

// FailurePolicy decides what happens to an element's existing comment when
// its replacement cannot be generated.
type FailurePolicy string

const (
	// KeepPrior re-inserts the existing comment unchanged.
	KeepPrior FailurePolicy = "keep"
	// DropPrior leaves the element without a comment.
	DropPrior FailurePolicy = "drop"
)

// ParseFailurePolicy validates a policy name; empty selects KeepPrior.
func ParseFailurePolicy(raw string) (FailurePolicy, error) {
	switch FailurePolicy(raw) {
	case "", KeepPrior:
		return KeepPrior, nil
	case DropPrior:
		return DropPrior, nil
	default:
		return "", fmt.Errorf("unsupported failure policy %q (supported: keep, drop)", raw)
	}
}

// ElementResult records the outcome for one element.
type ElementResult struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Line    int    `json:"line"`
	Slug    string `json:"slug,omitempty"`
	Version string `json:"version,omitempty"`
	Failed  bool   `json:"failed,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Summary reports a whole-file pass.
type Summary struct {
	Path              string          `json:"path"`
	ElementsProcessed int             `json:"elements_processed"`
	ElementsFailed    int             `json:"elements_failed"`
	Changed           bool            `json:"changed"`
	DryRun            bool            `json:"dry_run,omitempty"`
	Elements          []ElementResult `json:"elements,omitempty"`

	// Output is the spliced file content, also populated in dry-run mode.
	Output string `json:"-"`
}

// Failures returns the results of elements that could not be regenerated.
func (s Summary) Failures() []ElementResult {
	out := make([]ElementResult, 0, s.ElementsFailed)
	for _, res := range s.Elements {
		if res.Failed {
			out = append(out, res)
		}
	}
	return out
}

// ElementError reports a generation failure for a single element.
type ElementError struct {
	Path string
	Name string
	Line int
	Slug string
	Err  error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s:%d %s (slug %s): %v", e.Path, e.Line, e.Name, e.Slug, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}
