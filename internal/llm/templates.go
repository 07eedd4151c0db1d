package llm

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/morozRed/commenter/internal/element"
)

// PromptContext carries caller-supplied settings shared by every prompt
// built for one run.
type PromptContext struct {
	// Language names the source language in the prompt (e.g. "TypeScript").
	Language string
	// Notes is optional free text appended to every element's context.
	Notes string
}

// ElementContext describes an element for the model.
func ElementContext(filePath string, el element.CodeElement) string {
	params := make([]string, 0, len(el.Parameters))
	for _, p := range el.Parameters {
		params = append(params, p.Name+": "+p.Type)
	}
	return fmt.Sprintf("File: %s\n%s: %s\nReturn Type: %s\nIs Async: %t\nParameters: %s",
		filepath.Base(filePath),
		titleKind(el.Kind),
		el.Name,
		el.ReturnType,
		el.IsAsync,
		strings.Join(params, ", "),
	)
}

// BuildCommentPrompt asks for the line-prefixed response convention decoded
// by comment.ParseResponse.
func BuildCommentPrompt(pc PromptContext, code, context string) string {
	language := strings.TrimSpace(pc.Language)
	if language == "" {
		language = "TypeScript"
	}
	if notes := strings.TrimSpace(pc.Notes); notes != "" {
		context = strings.TrimSpace(context + "\n" + notes)
	}
	if strings.TrimSpace(context) == "" {
		context = "No additional context provided"
	}

	return fmt.Sprintf(`Please analyze this %s code and provide a structured response using exactly these lines:
Name: <the element name>
Description: <a clear, concise description of what the code does>
Parameters:
- <parameter name> {<type>}: <description> [default: <value>]
Returns: {<type>} <description of the return value>
Async: <true or false>

Omit the "[default: ...]" part when a parameter has no default value.
Write "Parameters:" with no items when there are none, and omit "Returns:" when nothing is returned.
Never write the character sequence "*/" or the word "@generated".

Code:
%s

Additional Context:
%s

Please provide only the structured information without any additional formatting or explanations.`, language, code, context)
}

// BuildReadmePrompt asks for a README body for a repository outline.
func BuildReadmePrompt(repoName, outline string) string {
	return fmt.Sprintf(`Generate the body of a README.md file for the repository %q.
Use Markdown with sections for Overview, Structure and Usage.
Base the content only on the outline below and do not invent APIs that are not listed.

Repository outline:
%s

Respond with the Markdown only.`, repoName, strings.TrimSpace(outline))
}

func titleKind(kind element.Kind) string {
	name := kind.String()
	if name == "" {
		return "Element"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
