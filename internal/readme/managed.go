package readme

import (
	"fmt"
	"os"
	"strings"

	"github.com/morozRed/commenter/internal/fileutil"
)

const (
	ManagedBlockStart = "<!-- commenter:managed:start -->"
	ManagedBlockEnd   = "<!-- commenter:managed:end -->"
)

// UpsertManagedMarkdownFile writes body between the managed markers of path,
// leaving any hand-written content outside the markers untouched. With
// dryRun set it reports whether the file would change without writing it.
func UpsertManagedMarkdownFile(path, body string, dryRun bool) (bool, error) {
	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	managed := fmt.Sprintf("%s\n%s\n%s", ManagedBlockStart, strings.TrimSpace(body), ManagedBlockEnd)
	updated := UpsertManagedBlock(existing, ManagedBlockStart, ManagedBlockEnd, managed)
	if dryRun {
		return updated != existing, nil
	}
	return fileutil.WriteIfChangedTracked(path, []byte(updated))
}

func UpsertManagedBlock(existing, startMarker, endMarker, managedContent string) string {
	if existing == "" {
		return managedContent + "\n"
	}

	start := strings.Index(existing, startMarker)
	end := strings.Index(existing, endMarker)
	if start >= 0 && end >= start {
		end += len(endMarker)
		updated := existing[:start] + managedContent + existing[end:]
		return fileutil.EnsureTrailingNewline(updated)
	}

	base := fileutil.EnsureTrailingNewline(existing)
	return base + "\n" + managedContent + "\n"
}
