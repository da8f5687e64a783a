// Package assets defines the data model shared by the pipeline stages:
// physical assets, textual references to them, and the closed category
// set that drives the target directory layout.
package assets

import (
	"path"
	"strings"
)

// Category classifies an asset and selects its target directory.
type Category string

const (
	CategoryFavicon    Category = "favicon"
	CategoryLogo       Category = "logo"
	CategoryIcon       Category = "icon"
	CategoryScreenshot Category = "screenshot"
	CategoryGraphic    Category = "graphic"
	CategoryPhoto      Category = "photo"
	CategoryStylesheet Category = "stylesheet"
	CategoryScript     Category = "script"
	CategoryOther      Category = "other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryFavicon,
	CategoryLogo,
	CategoryIcon,
	CategoryScreenshot,
	CategoryGraphic,
	CategoryPhoto,
	CategoryStylesheet,
	CategoryScript,
	CategoryOther,
}

// categoryDirs maps each category to its directory under the asset root.
var categoryDirs = map[Category]string{
	CategoryFavicon:    "favicons",
	CategoryLogo:       "images/logos",
	CategoryIcon:       "images/icons",
	CategoryScreenshot: "images/screenshots",
	CategoryGraphic:    "images/graphics",
	CategoryPhoto:      "images/photos",
	CategoryStylesheet: "styles",
	CategoryScript:     "scripts",
	CategoryOther:      "misc",
}

// Dir returns the target directory for the category, relative to the
// asset root.
func (c Category) Dir() string {
	if d, ok := categoryDirs[c]; ok {
		return d
	}
	return categoryDirs[CategoryOther]
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	_, ok := categoryDirs[c]
	return ok
}

// Asset is a physical file under the asset root.
type Asset struct {
	// RelPath is slash-separated and relative to the asset root.
	RelPath  string   `json:"relative_path"`
	Size     int64    `json:"size"`
	Hash     string   `json:"hash,omitempty"`
	Ext      string   `json:"extension"`
	Category Category `json:"category,omitempty"`
}

// Name returns the asset's filename.
func (a Asset) Name() string {
	return path.Base(a.RelPath)
}

// Stem returns the filename without its extension.
func (a Asset) Stem() string {
	name := a.Name()
	return strings.TrimSuffix(name, path.Ext(name))
}

// Reference is an occurrence of an asset path inside a source file.
type Reference struct {
	// File is the containing source file, relative to the source root.
	File string `json:"file"`
	Line int    `json:"line"`
	// Path is the literal as written (may be percent-encoded, relative,
	// or missing a leading slash).
	Path string `json:"path"`
	// Decoded is Path with percent-encoding removed.
	Decoded string `json:"decoded,omitempty"`
	// Attr names where the literal was found: href, src, srcset, url, ogImage.
	Attr string `json:"attribute"`
	// Alt carries the nearest alt text, when one was present.
	Alt string `json:"alt,omitempty"`
	// Context is a short window of surrounding text, used only for
	// name inference.
	Context string `json:"context,omitempty"`
}

// Inventory is the Scanner's output: every physical asset plus every
// textual reference, in stable lexicographic order.
type Inventory struct {
	AssetRoot  string      `json:"asset_root"`
	SourceRoot string      `json:"source_root"`
	Assets     []Asset     `json:"assets"`
	References []Reference `json:"references"`
}

// ReferencesTo returns the references whose decoded path names the given
// asset-root-relative path under the given URL prefix.
func (inv *Inventory) ReferencesTo(prefix, relPath string) []Reference {
	want := prefix + relPath
	var out []Reference
	for _, ref := range inv.References {
		p := ref.Decoded
		if p == "" {
			p = ref.Path
		}
		if p == want || strings.TrimPrefix(p, "/") == strings.TrimPrefix(want, "/") {
			out = append(out, ref)
		}
	}
	return out
}

// ExternalSchemes are URL schemes that are never treated as assets and
// never rewritten.
var ExternalSchemes = []string{"http:", "https:", "mailto:", "tel:", "javascript:", "data:"}

// IsExternal reports whether a reference literal points outside the site:
// a network scheme, a protocol-relative URL, or a bare fragment.
func IsExternal(literal string) bool {
	lower := strings.ToLower(strings.TrimSpace(literal))
	if strings.HasPrefix(lower, "//") || strings.HasPrefix(lower, "#") {
		return true
	}
	for _, scheme := range ExternalSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
