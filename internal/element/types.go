package element

import "fmt"

// Kind represents the type of code element a comment is attached to
type Kind int

const (
	KindFunction Kind = iota
	KindClass
	KindInterface
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// AnyType is the marker used for parameters and returns without a type annotation.
const AnyType = "any"

// AnonymousName is used for elements that have no identifier.
const AnonymousName = "anonymous"

// Param is a declared parameter of a function element.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Span is a 1-indexed inclusive line range in the file as read at parse time.
type Span struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Lines returns the number of lines covered by the span.
func (s Span) Lines() int {
	if s.EndLine < s.StartLine {
		return 1
	}
	return s.EndLine - s.StartLine + 1
}

// CodeElement is a documentable declaration reported by an Extractor.
type CodeElement struct {
	Name       string  `json:"name"`
	Kind       Kind    `json:"kind"`
	Span       Span    `json:"span"`
	Parameters []Param `json:"parameters,omitempty"`
	ReturnType string  `json:"return_type"`
	IsAsync    bool    `json:"is_async"`
	Signature  string  `json:"signature,omitempty"`
}

// ParseFailure reports that structural extraction could not run for a file.
type ParseFailure struct {
	Path string
	Err  error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("failed to extract elements from %s: %v", e.Path, e.Err)
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}
