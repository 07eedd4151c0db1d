package comment

import "strings"

// FindSlug scans backward from before-1 through the contiguous comment lines
// directly above a line and returns the first slug found. The scan stops at
// the first line that is not comment syntax.
func FindSlug(lines []string, before int) (string, bool) {
	if before > len(lines) {
		before = len(lines)
	}
	for i := before - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if !IsCommentLine(trimmed) {
			return "", false
		}
		if slug, ok := ExtractSlug(trimmed); ok {
			return slug, true
		}
	}
	return "", false
}
