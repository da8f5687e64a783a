package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statichq/assetpipe/internal/assets"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func newSite(t *testing.T) (Config, *assets.Inventory) {
	t.Helper()
	assetRoot := t.TempDir()
	sourceRoot := t.TempDir()

	writeFile(t, assetRoot, "images/logos/logo.png", "png")
	writeFile(t, sourceRoot, "pages/index.astro", "<html/>")
	writeFile(t, sourceRoot, "pages/about.astro", "<html/>")
	writeFile(t, sourceRoot, "pages/blog/[slug].astro", "<html/>")

	inv := &assets.Inventory{AssetRoot: assetRoot, SourceRoot: sourceRoot}
	cfg := Config{AssetRoot: assetRoot, SourceRoot: sourceRoot, AssetPrefix: "/cdn-assets/"}
	return cfg, inv
}

func ref(file string, line int, attr, p string) assets.Reference {
	return assets.Reference{File: file, Line: line, Attr: attr, Path: p, Decoded: p}
}

func kinds(report *Report) []string {
	var out []string
	for _, issue := range report.Issues {
		out = append(out, issue.Kind)
	}
	return out
}

func TestVerifyCleanSitePasses(t *testing.T) {
	cfg, inv := newSite(t)
	inv.References = []assets.Reference{
		ref("pages/index.astro", 3, "src", "/cdn-assets/images/logos/logo.png"),
		ref("pages/index.astro", 8, "href", "/about"),
		ref("pages/index.astro", 9, "href", "/blog/first-post"),
		ref("pages/index.astro", 10, "href", "https://example.com/elsewhere"),
		ref("pages/index.astro", 11, "href", "/resume.pdf"),
	}

	report, err := New(cfg).Verify(inv)
	require.NoError(t, err)
	assert.True(t, report.OK(), "unexpected issues: %v", report.Issues)
	assert.Equal(t, 5, report.Checked)
}

func TestVerifyFlagsMissingAsset(t *testing.T) {
	cfg, inv := newSite(t)
	inv.References = []assets.Reference{
		ref("pages/index.astro", 3, "src", "/cdn-assets/images/ghost.png"),
	}

	report, err := New(cfg).Verify(inv)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, KindMissingAsset, report.Issues[0].Kind)
	assert.Equal(t, 1, report.Counts[KindMissingAsset])
}

func TestVerifyFlagsBrokenRouteAndHTMLLink(t *testing.T) {
	cfg, inv := newSite(t)
	inv.References = []assets.Reference{
		ref("pages/index.astro", 5, "href", "/contact"),
		ref("pages/index.astro", 6, "href", "/about.html"),
	}

	report, err := New(cfg).Verify(inv)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{KindBrokenRoute, KindHTMLExtension}, kinds(report))
}

func TestVerifyIgnoresQueryAndFragment(t *testing.T) {
	cfg, inv := newSite(t)
	inv.References = []assets.Reference{
		ref("pages/index.astro", 3, "src", "/cdn-assets/images/logos/logo.png?v=3"),
		ref("pages/index.astro", 4, "href", "/about#team"),
	}

	report, err := New(cfg).Verify(inv)
	require.NoError(t, err)
	assert.True(t, report.OK(), "unexpected issues: %v", report.Issues)
}

func TestVerifySitemapCrossCheck(t *testing.T) {
	cfg, inv := newSite(t)
	sitemap := filepath.Join(t.TempDir(), "sitemap.xml")
	require.NoError(t, os.WriteFile(sitemap, []byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc>https://example.com/ghost</loc></url>
</urlset>`), 0o644))
	cfg.SitemapPath = sitemap

	report, err := New(cfg).Verify(inv)
	require.NoError(t, err)

	got := kinds(report)
	assert.Contains(t, got, KindSitemapStale) // /ghost listed but unserved
	assert.Contains(t, got, KindSitemapGap)   // /about served but unlisted
	for _, issue := range report.Issues {
		if issue.Kind == KindSitemapGap {
			assert.Equal(t, "/about", issue.Path)
		}
	}
}
