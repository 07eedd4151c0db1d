package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/morozRed/commenter/internal/llm"
	"github.com/morozRed/commenter/internal/readme"
)

const addSource = `export function add(a: number, b: number): number {
  return a + b;
}
`

const addReply = `Name: add
Description: Adds two numbers.
Parameters:
- a {number}: first operand
- b {number}: second operand
Returns: {number} the sum
Async: false
`

var markerPattern = regexp.MustCompile(`@generated ([A-Za-z0-9]{6}) (v\d+\.\d+)`)

type stubGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Name() string { return "Stub" }

func (g *stubGenerator) Generate(context.Context, string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.reply, g.err
}

type generatorCall struct {
	service llm.Service
	opts    llm.Options
}

func useStubGenerator(t *testing.T, gen llm.Generator) *[]generatorCall {
	t.Helper()
	var calls []generatorCall
	original := newGenerator
	newGenerator = func(service llm.Service, opts llm.Options) (llm.Generator, error) {
		calls = append(calls, generatorCall{service: service, opts: opts})
		return gen, nil
	}
	t.Cleanup(func() { newGenerator = original })
	return &calls
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFileCommandDocumentsAndRefreshesElements(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "math.ts")
	mustWriteFile(t, path, addSource)
	gen := &stubGenerator{reply: addReply}
	useStubGenerator(t, gen)

	withWorkingDir(t, root, func() {
		out, err := runCommand(t, "file", path, "--json")
		if err != nil {
			t.Fatalf("file command failed: %v", err)
		}
		var summary RunSummary
		if err := json.Unmarshal([]byte(out), &summary); err != nil {
			t.Fatalf("failed to decode summary: %v\n%s", err, out)
		}
		if summary.Mode != "file" || summary.ElementsProcessed != 1 || summary.FilesChanged != 1 || summary.Service != "Stub" {
			t.Fatalf("unexpected summary: %+v", summary)
		}

		first := readFile(t, path)
		lines := strings.Split(first, "\n")
		if lines[0] != "/**" || lines[1] != " * Adds two numbers." {
			t.Fatalf("comment not inserted at top:\n%s", first)
		}
		if !strings.Contains(first, " * @param a {number} first operand\n") || !strings.Contains(first, " * @returns {number} the sum\n") {
			t.Fatalf("unexpected comment body:\n%s", first)
		}
		if !strings.HasSuffix(first, " */\n"+addSource) {
			t.Fatalf("source below the comment changed:\n%s", first)
		}
		firstMarker := markerPattern.FindStringSubmatch(first)
		if firstMarker == nil || firstMarker[2] != "v1.0" {
			t.Fatalf("missing v1.0 marker:\n%s", first)
		}

		if _, err := runCommand(t, "file", path); err != nil {
			t.Fatalf("second file command failed: %v", err)
		}
		second := readFile(t, path)
		markers := markerPattern.FindAllStringSubmatch(second, -1)
		if len(markers) != 1 || markers[0][1] != firstMarker[1] || markers[0][2] != "v1.1" {
			t.Fatalf("expected %s v1.1 after rerun, got %v", firstMarker[1], markers)
		}
	})
}

func TestFileCommandReportsElementFailures(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "math.ts")
	mustWriteFile(t, path, addSource)
	useStubGenerator(t, &stubGenerator{err: errors.New("backend down")})

	withWorkingDir(t, root, func() {
		out, err := runCommand(t, "file", path, "--json")
		if err == nil {
			t.Fatalf("expected failure to be reported")
		}
		var summary RunSummary
		if err := json.Unmarshal([]byte(out), &summary); err != nil {
			t.Fatalf("failed to decode summary: %v\n%s", err, out)
		}
		if summary.ElementsFailed != 1 || summary.FilesChanged != 0 {
			t.Fatalf("unexpected summary: %+v", summary)
		}
	})
	if got := readFile(t, path); got != addSource {
		t.Fatalf("file changed after failure:\n%s", got)
	}
}

func TestFileCommandDryRunDoesNotWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "math.ts")
	mustWriteFile(t, path, addSource)
	useStubGenerator(t, &stubGenerator{reply: addReply})

	withWorkingDir(t, root, func() {
		out, err := runCommand(t, "file", path, "--dry-run")
		if err != nil {
			t.Fatalf("dry run failed: %v", err)
		}
		if !strings.Contains(out, "file (dry-run)") || !strings.Contains(out, "documented") {
			t.Fatalf("unexpected output:\n%s", out)
		}
	})
	if got := readFile(t, path); got != addSource {
		t.Fatalf("dry run wrote the file:\n%s", got)
	}
}

func TestElementCommandTargetsSlug(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "math.ts")
	mustWriteFile(t, path, addSource+"\nexport function sub(a: number, b: number): number {\n  return a - b;\n}\n")
	gen := &stubGenerator{reply: addReply}
	useStubGenerator(t, gen)

	withWorkingDir(t, root, func() {
		if _, err := runCommand(t, "file", path); err != nil {
			t.Fatalf("file command failed: %v", err)
		}
		markers := markerPattern.FindAllStringSubmatch(readFile(t, path), -1)
		if len(markers) != 2 {
			t.Fatalf("expected two markers, got %v", markers)
		}
		target := markers[1][1]

		gen.calls = 0
		if _, err := runCommand(t, "element", path, target); err != nil {
			t.Fatalf("element command failed: %v", err)
		}
		if gen.calls != 1 {
			t.Fatalf("expected one generation, got %d", gen.calls)
		}
		after := markerPattern.FindAllStringSubmatch(readFile(t, path), -1)
		if len(after) != 2 || after[0][2] != "v1.0" || after[1][1] != target || after[1][2] != "v1.1" {
			t.Fatalf("unexpected markers after element run: %v", after)
		}

		_, err := runCommand(t, "element", path, "Zz9Zz9")
		if !errors.Is(err, ErrSlugNotFound) {
			t.Fatalf("expected ErrSlugNotFound, got %v", err)
		}
	})
}

func TestRepoCommandProcessesDiscoveredFiles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "src", "a.ts"), addSource)
	mustWriteFile(t, filepath.Join(root, "src", "b.ts"), addSource)
	mustWriteFile(t, filepath.Join(root, "node_modules", "dep", "index.ts"), addSource)
	mustWriteFile(t, filepath.Join(root, "notes.md"), "# notes\n")
	useStubGenerator(t, &stubGenerator{reply: addReply})

	withWorkingDir(t, root, func() {
		out, err := runCommand(t, "repo", ".", "--jobs", "2", "--json")
		if err != nil {
			t.Fatalf("repo command failed: %v", err)
		}
		var summary RunSummary
		if err := json.Unmarshal([]byte(out), &summary); err != nil {
			t.Fatalf("failed to decode summary: %v\n%s", err, out)
		}
		if summary.Files != 2 || summary.FilesChanged != 2 || summary.ElementsProcessed != 2 {
			t.Fatalf("unexpected summary: %+v", summary)
		}
		if strings.Join(summary.ChangedFiles, ",") != "src/a.ts,src/b.ts" {
			t.Fatalf("unexpected changed files %v", summary.ChangedFiles)
		}
	})

	for _, rel := range []string{"src/a.ts", "src/b.ts"} {
		if !strings.Contains(readFile(t, filepath.Join(root, rel)), "@generated") {
			t.Fatalf("expected %s to be documented", rel)
		}
	}
	if got := readFile(t, filepath.Join(root, "node_modules", "dep", "index.ts")); got != addSource {
		t.Fatalf("ignored dependency was modified")
	}
}

func TestReadmeCommandWritesManagedBlock(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "src", "math.ts"), addSource)
	mustWriteFile(t, filepath.Join(root, readme.FileName), "Hand-written notes.\n")
	useStubGenerator(t, &stubGenerator{reply: "## Overview\nMath helpers.\n"})

	withWorkingDir(t, root, func() {
		if _, err := runCommand(t, "readme", "."); err != nil {
			t.Fatalf("readme command failed: %v", err)
		}
	})

	got := readFile(t, filepath.Join(root, readme.FileName))
	if !strings.HasPrefix(got, "Hand-written notes.\n") {
		t.Fatalf("hand-written content lost:\n%s", got)
	}
	if !strings.Contains(got, readme.ManagedBlockStart+"\n# ") || !strings.Contains(got, "## Overview\nMath helpers.\n"+readme.ManagedBlockEnd) {
		t.Fatalf("managed block missing:\n%s", got)
	}
}

func TestConfigFileAndFlagsSelectGenerator(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "math.ts")
	mustWriteFile(t, path, addSource)
	mustWriteFile(t, filepath.Join(root, configFileName), "service: claude\napi_key_env: COMMENTER_TEST_KEY\nmodel: from-config\nretries: 3\n")
	t.Setenv("COMMENTER_TEST_KEY", "secret")
	calls := useStubGenerator(t, &stubGenerator{reply: addReply})

	withWorkingDir(t, root, func() {
		if _, err := runCommand(t, "file", path, "--model", "from-flag"); err != nil {
			t.Fatalf("file command failed: %v", err)
		}
	})

	if len(*calls) != 1 {
		t.Fatalf("expected one generator construction, got %d", len(*calls))
	}
	call := (*calls)[0]
	if call.service != llm.ServiceClaude || call.opts.APIKey != "secret" || call.opts.Model != "from-flag" || call.opts.Retries != 3 {
		t.Fatalf("unexpected generator call: %+v", call)
	}
}

func TestMissingAPIKeyNamesEnvironmentVariable(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "math.ts")
	mustWriteFile(t, path, addSource)
	t.Setenv("ANTHROPIC_API_KEY", "")

	withWorkingDir(t, root, func() {
		_, err := runCommand(t, "file", path, "--service", "claude")
		if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
			t.Fatalf("expected missing key error, got %v", err)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "commenter test\n" {
		t.Fatalf("unexpected version output %q", out)
	}
}

func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()

	originalWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	fn()
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestRepoCommandEndsProgressLineWhenCancelled(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "src", "math.ts"), addSource)
	useStubGenerator(t, &stubGenerator{reply: addReply})

	var progress bytes.Buffer
	original := progressOutput
	progressOutput = func() (io.Writer, bool) { return &progress, true }
	t.Cleanup(func() { progressOutput = original })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var err error
	withWorkingDir(t, root, func() {
		cmd := NewRootCommand("test")
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"repo", root})
		err = cmd.ExecuteContext(ctx)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !strings.Contains(progress.String(), "repo stopped (0/1 files") || !strings.HasSuffix(progress.String(), "\n") {
		t.Fatalf("expected a terminated stop line, got %q", progress.String())
	}
	if got := readFile(t, filepath.Join(root, "src", "math.ts")); got != addSource {
		t.Fatalf("expected cancelled run to leave the file alone, got:\n%s", got)
	}
}
