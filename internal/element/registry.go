package element

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extractor defines the interface each language must implement
type Extractor interface {
	// Language returns the language name (e.g., "typescript")
	Language() string

	// Extensions returns file extensions this extractor handles
	Extensions() []string

	// Extract returns the documentable elements of a file, ordered by start line
	Extract(filename string, content []byte) ([]CodeElement, error)
}

// Registry holds all registered extractors
type Registry struct {
	extractors map[string]Extractor // language name -> extractor
	extToLang  map[string]string    // extension -> language name
}

// NewRegistry creates a new extractor registry
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
		extToLang:  make(map[string]string),
	}
}

// Register adds an extractor to the registry
func (r *Registry) Register(x Extractor) {
	lang := x.Language()
	r.extractors[lang] = x
	for _, ext := range x.Extensions() {
		r.extToLang[strings.ToLower(ext)] = lang
	}
}

// ExtractorForFile returns the appropriate extractor for a file
func (r *Registry) ExtractorForFile(filename string) (Extractor, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	x, ok := r.extractors[lang]
	return x, ok
}

// Supports reports whether any registered extractor handles the file.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.ExtractorForFile(filename)
	return ok
}

// SupportedExtensions returns all supported file extensions, sorted
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractFile reads path and returns its elements. Any failure, including an
// unsupported extension, is reported as a *ParseFailure.
func (r *Registry) ExtractFile(path string) ([]CodeElement, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseFailure{Path: path, Err: err}
	}
	return r.Extract(path, content)
}

// Extract runs the extractor registered for path over content.
func (r *Registry) Extract(path string, content []byte) ([]CodeElement, error) {
	x, ok := r.ExtractorForFile(path)
	if !ok {
		return nil, &ParseFailure{Path: path, Err: fmt.Errorf("unsupported file type %q", filepath.Ext(path))}
	}

	elements, err := x.Extract(path, content)
	if err != nil {
		return nil, &ParseFailure{Path: path, Err: err}
	}
	return Normalize(elements), nil
}

// Normalize orders elements by start line and drops any element that starts on
// a line already claimed by an earlier (outer) element, so that each comment
// slot belongs to exactly one element.
func Normalize(elements []CodeElement) []CodeElement {
	if len(elements) == 0 {
		return nil
	}

	out := append([]CodeElement(nil), elements...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.StartLine < out[j].Span.StartLine
	})

	seen := make(map[int]bool, len(out))
	kept := out[:0]
	for _, el := range out {
		if el.Span.StartLine <= 0 || seen[el.Span.StartLine] {
			continue
		}
		seen[el.Span.StartLine] = true
		if strings.TrimSpace(el.Name) == "" {
			el.Name = AnonymousName
		}
		if strings.TrimSpace(el.ReturnType) == "" && el.Kind == KindFunction {
			el.ReturnType = AnyType
		}
		el.Parameters = append([]Param(nil), el.Parameters...)
		for i := range el.Parameters {
			if strings.TrimSpace(el.Parameters[i].Type) == "" {
				el.Parameters[i].Type = AnyType
			}
		}
		kept = append(kept, el)
	}
	return kept
}
