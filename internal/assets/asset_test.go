package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCategoryDir(t *testing.T) {
	tests := []struct {
		category Category
		dir      string
	}{
		{CategoryFavicon, "favicons"},
		{CategoryLogo, "images/logos"},
		{CategoryIcon, "images/icons"},
		{CategoryScreenshot, "images/screenshots"},
		{CategoryGraphic, "images/graphics"},
		{CategoryPhoto, "images/photos"},
		{CategoryStylesheet, "styles"},
		{CategoryScript, "scripts"},
		{CategoryOther, "misc"},
		{Category("bogus"), "misc"},
	}

	for _, tt := range tests {
		if got := tt.category.Dir(); got != tt.dir {
			t.Errorf("Category(%q).Dir() = %q, want %q", tt.category, got, tt.dir)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if Category("banner").Valid() {
		t.Error("expected unknown category to be invalid")
	}
}

func TestAssetNameStem(t *testing.T) {
	a := Asset{RelPath: "images/logos/logo-acme.png"}
	if a.Name() != "logo-acme.png" {
		t.Errorf("Name() = %q", a.Name())
	}
	if a.Stem() != "logo-acme" {
		t.Errorf("Stem() = %q", a.Stem())
	}
}

func TestIsExternal(t *testing.T) {
	tests := []struct {
		literal  string
		external bool
	}{
		{"https://example.com/x.png", true},
		{"http://example.com", true},
		{"mailto:someone@example.com", true},
		{"tel:+15551234567", true},
		{"javascript:void(0)", true},
		{"data:image/png;base64,xyz", true},
		{"//cdn.example.com/x.png", true},
		{"#section", true},
		{"/cdn-assets/foo.png", false},
		{"../cdn-assets/foo.png", false},
		{"cdn-assets/foo.png", false},
		{"HTTPS://EXAMPLE.COM", true},
	}

	for _, tt := range tests {
		if got := IsExternal(tt.literal); got != tt.external {
			t.Errorf("IsExternal(%q) = %v, want %v", tt.literal, got, tt.external)
		}
	}
}

func TestReferencesTo(t *testing.T) {
	inv := &Inventory{
		References: []Reference{
			{File: "index.astro", Path: "/cdn-assets/foo.png", Decoded: "/cdn-assets/foo.png"},
			{File: "about.astro", Path: "/cdn-assets/bar.png", Decoded: "/cdn-assets/bar.png"},
			{File: "blog.astro", Path: "cdn-assets/foo.png", Decoded: "cdn-assets/foo.png"},
		},
	}

	refs := inv.ReferencesTo("/cdn-assets/", "foo.png")
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
}

func TestHasherSumAndEqual(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	c := filepath.Join(dir, "c.txt")
	if err := os.WriteFile(a, []byte("same"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("same"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c, []byte("different"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewHasher()

	sum1, err := h.Sum(a)
	if err != nil {
		t.Fatal(err)
	}
	sum2, err := h.Sum(a) // cached path
	if err != nil {
		t.Fatal(err)
	}
	if sum1 != sum2 {
		t.Error("cached hash differs from first computation")
	}

	eq, err := h.Equal(a, b)
	if err != nil || !eq {
		t.Errorf("expected identical content, eq=%v err=%v", eq, err)
	}
	eq, err = h.Equal(a, c)
	if err != nil {
		t.Fatal(err)
	}
	if eq {
		t.Error("expected different content to compare unequal")
	}

	if _, err := h.Sum(filepath.Join(dir, "absent.txt")); err == nil {
		t.Error("expected error hashing missing file")
	}
}
