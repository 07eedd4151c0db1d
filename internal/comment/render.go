package comment

import (
	"fmt"
	"strings"

	"github.com/morozRed/commenter/internal/element"
)

const (
	openLine  = "/**"
	blankLine = " *"
	closeLine = " */"
)

// Render serializes b as block-comment lines without indentation or line
// terminators. A returns line is emitted only for function elements whose
// declared return type is non-void.
func Render(b Block, kind element.Kind, hasNonVoidReturn bool) []string {
	lines := []string{openLine}
	lines = appendText(lines, "", b.Description)
	lines = append(lines, blankLine)

	if len(b.Parameters) > 0 {
		for _, p := range b.Parameters {
			lines = append(lines, paramLine(p))
		}
		lines = append(lines, blankLine)
	}

	if kind == element.KindFunction && hasNonVoidReturn && b.Returns != nil &&
		(strings.TrimSpace(b.Returns.Type) != "" || strings.TrimSpace(b.Returns.Description) != "") {
		lines = appendText(lines, "@returns", joinNonEmpty(typeTag(b.Returns.Type), b.Returns.Description))
		lines = append(lines, blankLine)
	}

	if b.IsAsync {
		lines = append(lines, " * @async", blankLine)
	}

	lines = append(lines, MetadataLine(b), closeLine)
	return lines
}

// MetadataLine renders the identity marker line of b.
func MetadataLine(b Block) string {
	return fmt.Sprintf(" * %s %s %s Generated on: %s by %s",
		IdentityMarker,
		b.Slug,
		b.Version,
		b.GeneratedAt.Format(TimestampLayout),
		sanitize(b.GeneratorLabel),
	)
}

func paramLine(p Param) string {
	text := joinNonEmpty("@param", sanitize(p.Name), typeTag(p.Type), sanitize(p.Description))
	if d := strings.TrimSpace(p.Default); d != "" {
		text += " (default: " + sanitize(d) + ")"
	}
	return " * " + text
}

func typeTag(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	return "{" + sanitize(t) + "}"
}

// appendText emits text as one or more " * " lines, the first prefixed by tag.
func appendText(lines []string, tag, text string) []string {
	parts := strings.Split(strings.TrimSpace(text), "\n")
	for i, part := range parts {
		part = sanitize(part)
		if i == 0 {
			part = joinNonEmpty(tag, part)
		}
		if part == "" {
			lines = append(lines, blankLine)
			continue
		}
		lines = append(lines, strings.TrimRight(" * "+part, " \t"))
	}
	return lines
}

// sanitize keeps generated text from closing the comment early or forging
// an identity marker.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "*/", `*\/`)
	return strings.ReplaceAll(s, IdentityMarker, strings.TrimPrefix(IdentityMarker, "@"))
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}
