package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statichq/assetpipe/internal/assets"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	return Config{
		AssetRoot:   filepath.Join(root, "public", "cdn-assets"),
		SourceRoot:  filepath.Join(root, "src"),
		AssetPrefix: "/cdn-assets/",
		SourceExts:  []string{".astro", ".html", ".css", ".ts"},
	}
}

func TestScanAssetsMissingRoot(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg)

	_, err := s.ScanAssets()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScanReferencesMissingRoot(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.AssetRoot, 0o755))
	s := New(cfg)

	_, err := s.ScanReferences()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScanAssetsOrderedAndHashed(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.AssetRoot, "zeta.png"), "zzz")
	writeFile(t, filepath.Join(cfg.AssetRoot, "alpha.png"), "aaa")
	writeFile(t, filepath.Join(cfg.AssetRoot, "images", "logo.svg"), "<svg/>")

	s := New(cfg)
	found, err := s.ScanAssets()
	require.NoError(t, err)

	require.Len(t, found, 3)
	assert.Equal(t, "alpha.png", found[0].RelPath)
	assert.Equal(t, "images/logo.svg", found[1].RelPath)
	assert.Equal(t, "zeta.png", found[2].RelPath)
	for _, a := range found {
		assert.NotEmpty(t, a.Hash, "asset %s should be hashed", a.RelPath)
		assert.Positive(t, a.Size)
	}
	assert.Equal(t, ".png", found[0].Ext)
}

func TestScanAssetsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.AssetRoot, "a.png"), "a")
	writeFile(t, filepath.Join(cfg.AssetRoot, "b.png"), "b")

	s := New(cfg)
	first, err := s.ScanAssets()
	require.NoError(t, err)
	second, err := s.ScanAssets()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScanAssetsGlobFilters(t *testing.T) {
	cfg := testConfig(t)
	cfg.Exclude = []string{"**/*.map"}
	writeFile(t, filepath.Join(cfg.AssetRoot, "app.js"), "js")
	writeFile(t, filepath.Join(cfg.AssetRoot, "app.js.map"), "map")

	s := New(cfg)
	found, err := s.ScanAssets()
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, "app.js", found[0].RelPath)
}

func TestScanReferences(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.AssetRoot, 0o755))
	writeFile(t, filepath.Join(cfg.SourceRoot, "pages", "index.astro"), `---
const title = "Home";
---
<img src="/cdn-assets/logo.png" alt="Acme logo">
<a href="https://example.com/x.png">external</a>
<img srcset="/cdn-assets/hero.png 500w, /cdn-assets/hero-p-800.png 800w">
`)
	writeFile(t, filepath.Join(cfg.SourceRoot, "styles", "site.css"),
		`.hero { background-image: url("/cdn-assets/mesh%20bg.png"); }`)
	writeFile(t, filepath.Join(cfg.SourceRoot, "notes.txt"), `src="/cdn-assets/skipped.png"`)

	s := New(cfg)
	refs, err := s.ScanReferences()
	require.NoError(t, err)

	byPath := make(map[string]assets.Reference)
	for _, r := range refs {
		byPath[r.Path] = r
	}

	logo, ok := byPath["/cdn-assets/logo.png"]
	require.True(t, ok, "expected logo reference")
	assert.Equal(t, "pages/index.astro", logo.File)
	assert.Equal(t, "src", logo.Attr)
	assert.Equal(t, "Acme logo", logo.Alt)

	// srcset entries are individual references.
	assert.Contains(t, byPath, "/cdn-assets/hero.png")
	assert.Contains(t, byPath, "/cdn-assets/hero-p-800.png")

	// Percent-encoded path is decoded.
	mesh, ok := byPath["/cdn-assets/mesh%20bg.png"]
	require.True(t, ok)
	assert.Equal(t, "/cdn-assets/mesh bg.png", mesh.Decoded)

	// External references are inventoried but flagged external.
	ext, ok := byPath["https://example.com/x.png"]
	require.True(t, ok)
	assert.True(t, assets.IsExternal(ext.Path))

	// Files outside the source extension list are not scanned.
	assert.NotContains(t, byPath, "/cdn-assets/skipped.png")
}

func TestScanCombined(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.AssetRoot, "logo.png"), "png")
	writeFile(t, filepath.Join(cfg.SourceRoot, "index.html"), `<img src="/cdn-assets/logo.png">`)

	s := New(cfg)
	inv, err := s.Scan()
	require.NoError(t, err)

	assert.Equal(t, cfg.AssetRoot, inv.AssetRoot)
	assert.Len(t, inv.Assets, 1)
	assert.Len(t, inv.References, 1)

	refs := inv.ReferencesTo("/cdn-assets/", "logo.png")
	assert.Len(t, refs, 1)
}

func TestExtractAltText(t *testing.T) {
	alts := extractAltText(`<img src="/a.png" alt="first"><img src="/b.png">`)
	assert.Equal(t, "first", alts["/a.png"])
	assert.NotContains(t, alts, "/b.png")
}
