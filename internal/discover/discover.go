// Package discover finds source files in a repository that the commenter
// can process.
package discover

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile holds repository-specific exclusions in gitignore syntax.
const IgnoreFile = ".commenterignore"

var defaultRules = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"coverage/",
	"out/",
	".next/",
	"*.d.ts",
	"*.min.js",
}

// Matcher combines the default exclusions, .commenterignore and .gitignore
// of one repository root.
type Matcher struct {
	rules     *ignore.GitIgnore
	gitignore *ignore.GitIgnore
}

// LoadMatcher reads the ignore files under root. Missing files are not an
// error.
func LoadMatcher(root string) (*Matcher, error) {
	userRules, err := readRules(filepath.Join(root, IgnoreFile))
	if err != nil {
		return nil, err
	}
	lines := append(append([]string{}, defaultRules...), userRules...)

	m := &Matcher{rules: ignore.CompileIgnoreLines(lines...)}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		m.gitignore = gi
	}
	return m, nil
}

// ShouldIgnore reports whether relPath is excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	if isDir {
		relPath += "/"
	}
	if m.rules.MatchesPath(relPath) {
		return true
	}
	return m.gitignore != nil && m.gitignore.MatchesPath(relPath)
}

// Files returns the paths under root, relative to root and sorted, whose
// extension satisfies supported and that no ignore rule excludes.
func Files(root string, supported func(path string) bool) ([]string, error) {
	matcher, err := LoadMatcher(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if matcher.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || matcher.ShouldIgnore(rel, false) {
			return nil
		}
		if supported(path) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

func readRules(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var rules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return rules, nil
}
