package splice

import (
	"strings"

	"github.com/morozRed/commenter/internal/comment"
	"github.com/morozRed/commenter/internal/fileutil"
)

// stripPriorComment removes the contiguous comment lines directly above
// start and returns them in file order, along with the buffer, start index
// and offset adjusted for the removal.
func stripPriorComment(lines []string, start, offset int) ([]string, []string, int, int) {
	var prior []string
	for i := start - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || !comment.IsCommentLine(trimmed) {
			break
		}
		prior = append([]string{lines[i]}, prior...)
		lines = append(lines[:i], lines[i+1:]...)
		start--
		offset--
	}
	return lines, prior, start, offset
}

// insertLines returns lines with block inserted before index at.
func insertLines(lines []string, at int, block []string) []string {
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	return append(out, lines[at:]...)
}

// indentBlock prefixes every rendered line with indent and terminates it.
func indentBlock(rendered []string, indent, newline string) []string {
	out := make([]string, 0, len(rendered))
	for _, line := range rendered {
		out = append(out, strings.TrimRight(indent+line, " \t")+newline)
	}
	return out
}

// codeSlice returns the source of an element spanning count lines from start.
func codeSlice(lines []string, start, count int) string {
	end := start + count
	if end > len(lines) {
		end = len(lines)
	}
	return strings.TrimRight(fileutil.JoinLines(lines[start:end]), "\r\n")
}
