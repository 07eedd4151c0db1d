package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// progressReporter draws a single-line spinner on stderr while repo mode
// works through files. Workers report concurrently.
type progressReporter struct {
	mu      sync.Mutex
	enabled bool
	w       io.Writer
	label   string
	total   int
	done    int
	start   time.Time
	spinner int
	lastLen int
}

// progressOutput returns where the spinner draws and whether that is a
// terminal.
var progressOutput = func() (io.Writer, bool) {
	stat, err := os.Stderr.Stat()
	return os.Stderr, err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}

func newProgressReporter(label string, total int, asJSON bool) *progressReporter {
	w, tty := progressOutput()
	return &progressReporter{
		enabled: tty && !asJSON,
		w:       w,
		label:   label,
		total:   total,
		start:   time.Now(),
	}
}

// Finish records one completed file.
func (r *progressReporter) Finish(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}

	status := fmt.Sprintf("%s %s %d/%d commented %s", frame, r.label, r.done, r.total, file)
	r.printStatus(status)
}

// Done ends the spinner line. It must run whether or not the pass finished.
func (r *progressReporter) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	status := fmt.Sprintf("%s complete (%d files in %s)", r.label, r.done, elapsed)
	if r.done < r.total {
		status = fmt.Sprintf("%s stopped (%d/%d files in %s)", r.label, r.done, r.total, elapsed)
	}
	r.printStatus(status)
	fmt.Fprintln(r.w)
}

func (r *progressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.w, "\r%s", status)
}
