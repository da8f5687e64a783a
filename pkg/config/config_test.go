package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "public", cfg.AssetRoot)
	assert.Equal(t, "src", cfg.SourceRoot)
	assert.Equal(t, "/cdn-assets/", cfg.AssetPrefix)
	assert.Contains(t, cfg.SourceExts, ".astro")
	assert.Equal(t, 100, cfg.Convert.Quality)
	assert.Equal(t, 60, cfg.Convert.TimeoutSeconds)
}

func TestLoadExplicitConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
asset_root: static
source_root: pages
asset_prefix: /assets/
known_names:
  "old_favicon.jpg": "favicon.jpg"
category_keywords:
  logo: [logo, brand]
convert:
  quality: 85
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".assetpipe.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "static", cfg.AssetRoot)
	assert.Equal(t, "pages", cfg.SourceRoot)
	assert.Equal(t, "/assets/", cfg.AssetPrefix)
	assert.Equal(t, "favicon.jpg", cfg.KnownNames["old_favicon.jpg"])
	assert.Equal(t, []string{"logo", "brand"}, cfg.CategoryKeywords["logo"])
	assert.Equal(t, 85, cfg.Convert.Quality)
	// Defaults survive partial config.
	assert.Equal(t, 60, cfg.Convert.TimeoutSeconds)
}

func TestDetectStaticDirFromSiteConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("staticDir = \"static\"\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.AssetRoot)
}

func TestSiteConfigIgnoredWhenExplicitConfigExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("staticDir = \"static\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".assetpipe.yaml"), []byte("asset_root: public\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.AssetRoot)
}

func TestLoadKnownNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\"642aa9b6_favicon.jpg\": favicon.jpg\n"), 0o644))

	names, err := LoadKnownNames(path)
	require.NoError(t, err)
	assert.Equal(t, "favicon.jpg", names["642aa9b6_favicon.jpg"])

	_, err = LoadKnownNames(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
