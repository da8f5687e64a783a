// Package verify runs read-only consistency checks after a migration:
// every referenced asset must exist on disk, internal links must hit a
// real page route, and the sitemap (when present) must agree with the
// routes the source tree defines. Verification never mutates anything.
package verify

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/statichq/assetpipe/internal/assets"
	"github.com/statichq/assetpipe/pkg/logger"
)

// Issue kinds.
const (
	KindMissingAsset  = "missing-asset"
	KindBrokenRoute   = "broken-route"
	KindHTMLExtension = "html-extension-link"
	KindSitemapStale  = "sitemap-stale-entry"
	KindSitemapGap    = "sitemap-missing-route"
)

// Issue is one verification finding.
type Issue struct {
	Kind   string `json:"kind"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Path   string `json:"path"`
	Detail string `json:"detail,omitempty"`
}

// Report is the result of a verification run.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Checked     int            `json:"references_checked"`
	Issues      []Issue        `json:"issues"`
	Counts      map[string]int `json:"counts"`
}

// OK reports whether verification found nothing wrong.
func (r *Report) OK() bool { return len(r.Issues) == 0 }

// Config locates what to verify.
type Config struct {
	AssetRoot   string
	SourceRoot  string
	AssetPrefix string
	// SitemapPath is an optional sitemap.xml to cross-check against
	// the discovered page routes.
	SitemapPath string
}

// Verifier runs the checks.
type Verifier struct {
	cfg    Config
	prefix string

	// dynamicPrefixes are route prefixes served by dynamic page
	// segments ([slug]); links under them are assumed valid.
	dynamicPrefixes []string
}

// New creates a Verifier.
func New(cfg Config) *Verifier {
	return &Verifier{
		cfg:    cfg,
		prefix: "/" + strings.Trim(cfg.AssetPrefix, "/") + "/",
	}
}

// Verify checks every reference in the inventory and, when configured,
// the sitemap. Findings accumulate; only an inability to run a check
// at all returns an error.
func (v *Verifier) Verify(inv *assets.Inventory) (*Report, error) {
	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Counts:      make(map[string]int),
	}

	routes, err := v.discoverRoutes()
	if err != nil {
		return nil, err
	}

	for _, ref := range inv.References {
		report.Checked++
		v.checkReference(ref, routes, report)
	}

	if v.cfg.SitemapPath != "" {
		if err := v.checkSitemap(routes, report); err != nil {
			return nil, err
		}
	}

	for _, issue := range report.Issues {
		report.Counts[issue.Kind]++
	}
	logger.Info("Verification finished",
		logger.Int("references", report.Checked),
		logger.Int("issues", len(report.Issues)))
	return report, nil
}

func (v *Verifier) checkReference(ref assets.Reference, routes map[string]bool, report *Report) {
	literal := ref.Decoded
	if literal == "" {
		literal = ref.Path
	}
	if assets.IsExternal(literal) {
		return
	}
	literal = stripSuffix(literal)

	switch {
	case strings.HasPrefix(literal, v.prefix):
		rel := strings.TrimPrefix(literal, v.prefix)
		full := filepath.Join(v.cfg.AssetRoot, filepath.FromSlash(rel))
		if _, err := os.Stat(full); err != nil {
			report.Issues = append(report.Issues, Issue{
				Kind: KindMissingAsset, File: ref.File, Line: ref.Line, Path: ref.Path,
				Detail: "no file at " + rel,
			})
		}

	case ref.Attr == "href" && strings.HasPrefix(literal, "/"):
		if strings.HasSuffix(literal, ".html") || strings.HasSuffix(literal, ".htm") {
			report.Issues = append(report.Issues, Issue{
				Kind: KindHTMLExtension, File: ref.File, Line: ref.Line, Path: ref.Path,
				Detail: "internal links should use extensionless routes",
			})
			return
		}
		if path.Ext(literal) != "" {
			// A rooted non-asset file link (e.g. /resume.pdf); not a route.
			return
		}
		if v.underDynamicSegment(literal) {
			return
		}
		if !routes[normalizeRoute(literal)] {
			report.Issues = append(report.Issues, Issue{
				Kind: KindBrokenRoute, File: ref.File, Line: ref.Line, Path: ref.Path,
				Detail: "no page defines this route",
			})
		}
	}
}

// discoverRoutes derives the site's routes from the pages directory:
// pages/about.astro serves /about, pages/blog/index.astro serves /blog.
// A dynamic segment like pages/blog/[slug].astro marks /blog/ as a
// prefix under which any link is accepted.
func (v *Verifier) discoverRoutes() (map[string]bool, error) {
	routes := map[string]bool{"/": true}
	pagesDir := filepath.Join(v.cfg.SourceRoot, "pages")
	if _, err := os.Stat(pagesDir); err != nil {
		// No pages directory; route checks degrade to asset checks only.
		return routes, nil
	}

	err := filepath.WalkDir(pagesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".astro" && ext != ".md" && ext != ".mdx" && ext != ".html" {
			return nil
		}
		rel, relErr := filepath.Rel(pagesDir, p)
		if relErr != nil {
			return relErr
		}
		slashRel := filepath.ToSlash(rel)
		if i := strings.Index(slashRel, "["); i >= 0 {
			prefix := "/" + strings.TrimSuffix(slashRel[:i], "/")
			v.dynamicPrefixes = append(v.dynamicPrefixes, strings.TrimSuffix(prefix, "/")+"/")
			return nil
		}
		routes[routeFor(slashRel)] = true
		return nil
	})
	return routes, err
}

func (v *Verifier) underDynamicSegment(literal string) bool {
	for _, p := range v.dynamicPrefixes {
		if strings.HasPrefix(literal, p) {
			return true
		}
	}
	return false
}

// routeFor maps a pages-relative source file to the route it serves.
func routeFor(rel string) string {
	r := strings.TrimSuffix(rel, path.Ext(rel))
	r = strings.TrimSuffix(r, "index")
	r = "/" + strings.Trim(r, "/")
	return r
}

func normalizeRoute(literal string) string {
	r := strings.TrimSuffix(literal, "/")
	if r == "" {
		r = "/"
	}
	return r
}

// stripSuffix drops a query string or fragment from a literal.
func stripSuffix(literal string) string {
	if i := strings.IndexAny(literal, "?#"); i >= 0 {
		return literal[:i]
	}
	return literal
}

// sortedRoutes is used for deterministic sitemap gap reporting.
func sortedRoutes(routes map[string]bool) []string {
	out := make([]string, 0, len(routes))
	for r := range routes {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
