package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statichq/assetpipe/internal/assets"
)

func newTestPlanner() *Planner {
	return New(Config{AssetPrefix: "/cdn-assets/"})
}

func planOne(t *testing.T, p *Planner, inv *assets.Inventory) map[string]string {
	t.Helper()
	doc, err := p.Plan(inv)
	require.NoError(t, err)
	out := make(map[string]string, len(doc.Entries))
	for old, entry := range doc.Entries {
		out[old] = entry.NewRelative
	}
	return out
}

func TestPlanStripsExportHashPrefix(t *testing.T) {
	inv := &assets.Inventory{Assets: []assets.Asset{
		{RelPath: "abcdef0123456789abcdef01_logo-acme.png", Ext: ".png", Hash: "deadbeefcafe0000"},
	}}
	got := planOne(t, newTestPlanner(), inv)
	assert.Equal(t, "images/logos/logo-acme.png", got["abcdef0123456789abcdef01_logo-acme.png"])
}

func TestPlanCollidingNamesGetSuffixes(t *testing.T) {
	inv := &assets.Inventory{Assets: []assets.Asset{
		{RelPath: "photo (1).jpg", Ext: ".jpg", Hash: "aaaa1111bbbb2222"},
		{RelPath: "photo (2).jpg", Ext: ".jpg", Hash: "cccc3333dddd4444"},
	}}
	got := planOne(t, newTestPlanner(), inv)
	assert.Equal(t, "images/photos/photo.jpg", got["photo (1).jpg"])
	assert.Equal(t, "images/photos/photo-1.jpg", got["photo (2).jpg"])
}

func TestPlanKnownNameWins(t *testing.T) {
	p := New(Config{
		AssetPrefix: "/cdn-assets/",
		KnownNames:  map[string]string{"5f3a_weird.png": "logo-acme.png"},
	})
	inv := &assets.Inventory{Assets: []assets.Asset{
		{RelPath: "5f3a_weird.png", Ext: ".png", Hash: "0000111122223333"},
	}}
	got := planOne(t, p, inv)
	assert.Equal(t, "images/logos/logo-acme.png", got["5f3a_weird.png"])
}

func TestPlanNameFromAltText(t *testing.T) {
	inv := &assets.Inventory{
		Assets: []assets.Asset{
			{RelPath: "da39a3ee5e6b4b0d3255bfef_.png", Ext: ".png", Hash: "9999888877776666"},
		},
		References: []assets.Reference{
			{File: "src/pages/about.astro", Line: 4, Path: "/cdn-assets/da39a3ee5e6b4b0d3255bfef_.png",
				Decoded: "/cdn-assets/da39a3ee5e6b4b0d3255bfef_.png", Alt: "Team offsite"},
		},
	}
	got := planOne(t, newTestPlanner(), inv)
	assert.Equal(t, "images/graphics/graphic-team-offsite.png", got["da39a3ee5e6b4b0d3255bfef_.png"])
}

func TestPlanNameFromContextKeywords(t *testing.T) {
	inv := &assets.Inventory{
		Assets: []assets.Asset{
			{RelPath: "da39a3ee5e6b4b0d3255bfef_.png", Ext: ".png", Hash: "9999888877776666"},
		},
		References: []assets.Reference{
			{File: "src/components/Nav.astro", Line: 12, Path: "/cdn-assets/da39a3ee5e6b4b0d3255bfef_.png",
				Decoded: "/cdn-assets/da39a3ee5e6b4b0d3255bfef_.png",
				Context: `<a class="navbar-brand"><img src="..."></a> <!-- company logo -->`},
		},
	}
	got := planOne(t, newTestPlanner(), inv)
	assert.Equal(t, "images/graphics/graphic-logo.png", got["da39a3ee5e6b4b0d3255bfef_.png"])
}

func TestPlanHashFallbackForNamelessAsset(t *testing.T) {
	inv := &assets.Inventory{Assets: []assets.Asset{
		{RelPath: "da39a3ee5e6b4b0d3255bfef_.bin", Ext: ".bin", Hash: "9999888877776666"},
	}}
	got := planOne(t, newTestPlanner(), inv)
	assert.Equal(t, "misc/file-99998888.bin", got["da39a3ee5e6b4b0d3255bfef_.bin"])
}

func TestPlanIsDeterministic(t *testing.T) {
	inv := &assets.Inventory{Assets: []assets.Asset{
		{RelPath: "a/photo.jpg", Ext: ".jpg", Hash: "1111111111111111"},
		{RelPath: "b/photo.jpg", Ext: ".jpg", Hash: "2222222222222222"},
	}}
	p := newTestPlanner()
	first := planOne(t, p, inv)
	second := planOne(t, p, inv)
	assert.Equal(t, first, second)
	assert.Equal(t, "images/photos/photo.jpg", first["a/photo.jpg"])
	assert.Equal(t, "images/photos/photo-1.jpg", first["b/photo.jpg"])
}

func TestCategorizeExtensionFallback(t *testing.T) {
	p := newTestPlanner()
	cases := map[string]assets.Category{
		"site.css":     assets.CategoryStylesheet,
		"bundle.js":    assets.CategoryScript,
		"arrow.svg":    assets.CategoryIcon,
		"texture.png":  assets.CategoryGraphic,
		"archive.zip":  assets.CategoryOther,
		"favicon.jpg":  assets.CategoryFavicon,
		"logo-big.png": assets.CategoryLogo,
	}
	for name, want := range cases {
		got, _ := p.categorize(name)
		assert.Equal(t, want, got, name)
	}
}

func TestCleanName(t *testing.T) {
	cases := map[string]string{
		"abcdef0123456789abcdef01_logo-acme": "logo-acme",
		"photo (1)":                          "photo",
		"Untitled (3)":                       "",
		"Team Photo-p-800":                   "team-photo",
		"My  File__Name":                     "my-file-name",
		"550e8400-e29b-41d4-a716-446655440000-chart": "chart",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanName(in), in)
	}
}

func TestDefaultKeywordTableCoversEveryCategory(t *testing.T) {
	kw := defaultKeywords()
	names := sortedKeywords(kw)
	assert.Len(t, names, len(assets.Categories))
	for _, category := range assets.Categories {
		_, ok := kw[category]
		assert.True(t, ok, string(category))
	}
}
