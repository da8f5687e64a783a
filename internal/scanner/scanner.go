// Package scanner walks the asset root and source tree, producing the
// inventory consumed by planning: every physical asset and every
// textual reference to one.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/statichq/assetpipe/internal/assets"
	"github.com/statichq/assetpipe/internal/rewrite"
	"github.com/statichq/assetpipe/pkg/ignore"
	"github.com/statichq/assetpipe/pkg/logger"
)

// ErrNotFound indicates a required root directory does not exist. An
// absent root is a precondition failure, never an empty inventory.
var ErrNotFound = errors.New("root directory not found")

// Config configures a scan.
type Config struct {
	// ProjectDir anchors the layered ignore files. Empty means the
	// current directory.
	ProjectDir  string
	AssetRoot   string
	SourceRoot  string
	AssetPrefix string
	// SourceExts lists extensions of text files scanned for references.
	SourceExts []string
	// Include/Exclude are doublestar globs matched against root-relative
	// slash paths.
	Include []string
	Exclude []string
}

// Scanner produces asset and reference inventories. It performs no
// writes.
type Scanner struct {
	cfg    Config
	ignore *ignore.Matcher
	hasher *assets.Hasher
	engine *rewrite.Engine
}

// New creates a Scanner. The ignore matcher is best-effort: a failure
// to build it only disables ignore filtering.
func New(cfg Config) *Scanner {
	s := &Scanner{
		cfg:    cfg,
		hasher: assets.NewHasher(),
		engine: rewrite.NewEngine(),
	}
	dir := cfg.ProjectDir
	if dir == "" {
		dir = "."
	}
	if m, err := ignore.NewMatcher(dir); err == nil {
		s.ignore = m
	} else {
		logger.Warn(fmt.Sprintf("ignore matcher unavailable: %v", err))
	}
	return s
}

// Scan walks both trees and returns the combined inventory in stable
// lexicographic order.
func (s *Scanner) Scan() (*assets.Inventory, error) {
	found, err := s.ScanAssets()
	if err != nil {
		return nil, err
	}
	refs, err := s.ScanReferences()
	if err != nil {
		return nil, err
	}
	return &assets.Inventory{
		AssetRoot:  s.cfg.AssetRoot,
		SourceRoot: s.cfg.SourceRoot,
		Assets:     found,
		References: refs,
	}, nil
}

// ScanAssets inventories every physical file under the asset root.
func (s *Scanner) ScanAssets() ([]assets.Asset, error) {
	if _, err := os.Stat(s.cfg.AssetRoot); err != nil {
		return nil, fmt.Errorf("asset root %s: %w", s.cfg.AssetRoot, ErrNotFound)
	}

	seen := make(map[string]bool)
	var out []assets.Asset

	err := filepath.WalkDir(s.cfg.AssetRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if s.ignore != nil && s.ignore.IsIgnoredDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.ignore != nil && s.ignore.IsIgnored(path) {
			return nil
		}

		rel, err := filepath.Rel(s.cfg.AssetRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if seen[rel] || !s.matchGlobs(rel) {
			return nil
		}
		seen[rel] = true

		info, err := d.Info()
		if err != nil {
			return err
		}

		hash, err := s.hasher.Sum(path)
		if err != nil {
			logger.Warn("failed to hash asset", logger.String("path", rel), logger.Err(err))
		}

		out = append(out, assets.Asset{
			RelPath: rel,
			Size:    info.Size(),
			Hash:    hash,
			Ext:     strings.ToLower(filepath.Ext(rel)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("asset walk failed: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

// ScanReferences extracts every reference literal from text files under
// the source root.
func (s *Scanner) ScanReferences() ([]assets.Reference, error) {
	if _, err := os.Stat(s.cfg.SourceRoot); err != nil {
		return nil, fmt.Errorf("source root %s: %w", s.cfg.SourceRoot, ErrNotFound)
	}

	var out []assets.Reference

	err := filepath.WalkDir(s.cfg.SourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if s.ignore != nil && s.ignore.IsIgnoredDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.ignore != nil && s.ignore.IsIgnored(path) {
			return nil
		}
		if !s.isSourceFile(path) {
			return nil
		}

		rel, err := filepath.Rel(s.cfg.SourceRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		content, err := os.ReadFile(path) // #nosec G304 -- path comes from the walk
		if err != nil {
			logger.Warn("failed to read source file", logger.String("path", rel), logger.Err(err))
			return nil
		}

		out = append(out, s.extractReferences(rel, string(content))...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("source walk failed: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// extractReferences runs the shared rule table over one file's content.
// HTML-like files are additionally parsed structurally to associate alt
// text with image references.
func (s *Scanner) extractReferences(relFile, content string) []assets.Reference {
	matches := s.engine.Extract(content)
	if len(matches) == 0 {
		return nil
	}

	var alts map[string]string
	if isMarkup(relFile) {
		alts = extractAltText(content)
	}

	refs := make([]assets.Reference, 0, len(matches))
	for _, m := range matches {
		decoded := m.Path
		if u, err := url.PathUnescape(m.Path); err == nil {
			decoded = u
		}
		refs = append(refs, assets.Reference{
			File:    relFile,
			Line:    m.Line,
			Path:    m.Path,
			Decoded: decoded,
			Attr:    m.Attr,
			Alt:     alts[m.Path],
			Context: contextWindow(content, m.Start),
		})
	}
	return refs
}

// matchGlobs applies the include/exclude patterns to a relative path.
func (s *Scanner) matchGlobs(rel string) bool {
	if len(s.cfg.Include) > 0 {
		included := false
		for _, pat := range s.cfg.Include {
			if ok, _ := doublestar.Match(pat, rel); ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, pat := range s.cfg.Exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return false
		}
	}
	return true
}

func (s *Scanner) isSourceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range s.cfg.SourceExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

func isMarkup(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".astro":
		return true
	}
	return false
}

// contextWindow returns up to 100 bytes either side of an offset.
func contextWindow(content string, offset int) string {
	start := offset - 100
	if start < 0 {
		start = 0
	}
	end := offset + 100
	if end > len(content) {
		end = len(content)
	}
	return content[start:end]
}
