// Package readme generates a repository README from an outline of its
// source files and documented elements.
package readme

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/morozRed/commenter/internal/element"
	"github.com/morozRed/commenter/internal/llm"
)

// FileName is the README written at the repository root.
const FileName = "README.md"

// Extractor reads a file and returns its elements.
type Extractor interface {
	ExtractFile(path string) ([]element.CodeElement, error)
}

// FileOutline lists the elements of one file. Err is set when the file could
// not be parsed; such files are still listed by path.
type FileOutline struct {
	Path     string
	Elements []element.CodeElement
	Err      error
}

// Outline summarizes a repository for the README prompt.
type Outline struct {
	Name  string
	Files []FileOutline
}

// BuildOutline extracts the elements of files, given relative to root.
// Parse failures are recorded per file and do not stop the outline.
func BuildOutline(root string, files []string, x Extractor) Outline {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	outline := Outline{Name: filepath.Base(abs)}
	for _, rel := range files {
		entry := FileOutline{Path: rel}
		path := filepath.Join(root, filepath.FromSlash(rel))
		if elements, err := x.ExtractFile(path); err != nil {
			entry.Err = err
		} else {
			entry.Elements = element.Normalize(elements)
		}
		outline.Files = append(outline.Files, entry)
	}
	return outline
}

// String renders the outline as the indented listing sent to the model.
func (o Outline) String() string {
	var b strings.Builder
	for _, file := range o.Files {
		b.WriteString(file.Path)
		if file.Err != nil {
			b.WriteString(" (unparsed)")
		}
		b.WriteByte('\n')
		for _, el := range file.Elements {
			fmt.Fprintf(&b, "  %s %s", el.Kind, el.Name)
			if el.Signature != "" {
				fmt.Fprintf(&b, ": %s", el.Signature)
			}
			b.WriteByte('\n')
		}
	}
	if b.Len() == 0 {
		return "(no source files found)\n"
	}
	return b.String()
}

// Generate asks gen for a README body describing o.
func Generate(ctx context.Context, gen llm.Generator, o Outline) (string, error) {
	raw, err := gen.Generate(ctx, llm.BuildReadmePrompt(o.Name, o.String()))
	if err != nil {
		return "", err
	}
	body := cleanBody(raw)
	if body == "" {
		return "", errors.New("generator returned an empty README")
	}
	if !strings.HasPrefix(body, "# ") {
		body = "# " + o.Name + "\n\n" + body
	}
	return body, nil
}

// cleanBody removes a code fence wrapped around the whole response.
func cleanBody(raw string) string {
	body := strings.TrimSpace(raw)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	lines := strings.Split(body, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return body
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}
