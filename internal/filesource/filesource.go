// Package filesource implements the ports.FileSource adapter: a
// filesystem walker that skips vendor directories, hidden directories,
// and paths matched by a repository's .gitignore files.
package filesource

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FileSource walks a repository root, honouring .gitignore-style
// exclusion patterns collected from every .gitignore file found along the
// way, matching the teacher's filepath.Walk-based discoverFiles but
// generalized beyond Go files and vendor-only skipping.
type FileSource struct {
	IncludeVendor bool
	IncludeHidden bool
}

// New returns a FileSource with the teacher's defaults: vendor and hidden
// directories excluded.
func New() *FileSource {
	return &FileSource{}
}

// Walk implements ports.FileSource.
func (f *FileSource) Walk(ctx context.Context, root string, fn func(absolutePath string) error) error {
	rules := newIgnoreSet()
	if global, err := readGitignore(filepath.Join(root, ".gitignore")); err == nil {
		rules.add(root, global)
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			name := info.Name()
			if !f.IncludeVendor && name == "vendor" {
				return filepath.SkipDir
			}
			if !f.IncludeHidden && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if name == "node_modules" || name == ".git" {
				return filepath.SkipDir
			}
			if patterns, err := readGitignore(filepath.Join(path, ".gitignore")); err == nil {
				rules.add(path, patterns)
			}
			if rules.matchDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if rules.match(rel) {
			return nil
		}
		return fn(path)
	})
}

// ignoreSet accumulates .gitignore patterns keyed by the directory that
// declared them, and matches a path relative to the walk root (and its base
// name) against every pattern collected so far. A pattern is not limited to
// the subtree of the directory whose .gitignore declared it.
type ignoreSet struct {
	scoped map[string][]string // declaring directory path, as walked -> patterns
}

func newIgnoreSet() *ignoreSet {
	return &ignoreSet{scoped: make(map[string][]string)}
}

func (s *ignoreSet) add(dir string, patterns []string) {
	s.scoped[dir] = patterns
}

func (s *ignoreSet) match(relPath string) bool {
	base := filepath.Base(relPath)
	for _, patterns := range s.scoped {
		for _, p := range patterns {
			if matched, _ := filepath.Match(p, base); matched {
				return true
			}
			if matched, _ := filepath.Match(p, relPath); matched {
				return true
			}
		}
	}
	return false
}

func (s *ignoreSet) matchDir(relPath string) bool {
	return s.match(relPath)
}

// readGitignore parses a .gitignore file into a slice of glob patterns,
// skipping blank lines, comments, and negation patterns (negation is not
// supported by this minimal matcher; an unmatched "!pattern" is safer to
// ignore than to misinterpret).
func readGitignore(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, strings.TrimSuffix(line, "/"))
	}
	return patterns, scanner.Err()
}
