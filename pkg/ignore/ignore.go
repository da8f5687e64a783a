// Package ignore provides gitignore-based file filtering using go-git
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher filters walked paths through layered ignore rules.
type Matcher struct {
	root    string
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher with layered ignore files:
// 1. built-in defaults (.git, node_modules, build output)
// 2. .gitignore and related git ignore files
// 3. .assetpipeignore at the project root
func NewMatcher(root string) (*Matcher, error) {
	fs := osfs.New(root)

	var patterns []gitignore.Pattern

	// Directories the migration must never touch.
	defaults := []string{".git/**", "node_modules/**", "dist/**", ".astro/**"}
	for _, p := range defaults {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	// ReadPatterns with nil reads .gitignore, global excludes, and .git/info/exclude
	if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
		patterns = append(patterns, gitPatterns...)
	}

	if overrides, err := readIgnoreFile(filepath.Join(root, ".assetpipeignore")); err == nil {
		for _, p := range overrides {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
	}

	return &Matcher{
		root:    root,
		matcher: gitignore.NewMatcher(patterns),
	}, nil
}

// readIgnoreFile reads patterns from a text file, skipping blanks and comments.
func readIgnoreFile(path string) ([]string, error) {
	cleaned := filepath.Clean(path)
	if !strings.HasSuffix(cleaned, string(os.PathSeparator)+".assetpipeignore") {
		return nil, fmt.Errorf("disallowed ignore file path: %s", cleaned)
	}
	content, err := os.ReadFile(cleaned) // #nosec G304 -- path cleaned and allowlisted
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// IsIgnored checks whether a file path should be ignored.
func (m *Matcher) IsIgnored(path string) bool {
	return m.match(path, false)
}

// IsIgnoredDir checks whether a directory should be skipped during traversal.
func (m *Matcher) IsIgnoredDir(path string) bool {
	return m.match(path, true)
}

func (m *Matcher) match(path string, isDir bool) bool {
	rel := path
	if r, err := filepath.Rel(m.root, path); err == nil {
		rel = r
	}
	parts := splitPath(filepath.ToSlash(rel))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// splitPath converts a slash-separated path into components for go-git matching.
func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
