// Package planner computes the rename mapping for a scanned inventory.
// Planning is pure: it reads the inventory, decides a canonical new
// path for every asset, and emits the mapping document. It never
// touches the filesystem beyond writing that single document.
package planner

import (
	"fmt"
	"path"
	"strings"

	"github.com/statichq/assetpipe/internal/assets"
	"github.com/statichq/assetpipe/internal/mapping"
	"github.com/statichq/assetpipe/pkg/logger"
)

// Config configures planning.
type Config struct {
	// AssetPrefix is the URL prefix assets are served under.
	AssetPrefix string
	// KnownNames maps exact original filenames to curated replacement
	// filenames. Highest-priority rule, fully deterministic.
	KnownNames map[string]string
	// CategoryKeywords overrides individual default keyword tables;
	// categories not named keep their built-in keywords.
	CategoryKeywords map[assets.Category][]string
}

// Planner computes mappings.
type Planner struct {
	cfg      Config
	keywords map[assets.Category][]string
}

// New creates a Planner.
func New(cfg Config) *Planner {
	kw := defaultKeywords()
	for category, words := range cfg.CategoryKeywords {
		kw[category] = words
	}
	return &Planner{cfg: cfg, keywords: kw}
}

// Plan builds the mapping document for the inventory. Planning never
// fails on a single malformed asset: the item degrades to the "other"
// category and a placeholder name instead of aborting the run.
func (p *Planner) Plan(inv *assets.Inventory) (*mapping.Document, error) {
	prefix := "/" + strings.Trim(p.cfg.AssetPrefix, "/") + "/"

	doc := &mapping.Document{Entries: make(map[string]mapping.Entry, len(inv.Assets))}
	claimed := make(map[string]bool, len(inv.Assets))

	for _, asset := range inv.Assets {
		category, known := p.categorize(asset.Name())

		var newName string
		if known != "" {
			newName = strings.TrimSuffix(known, path.Ext(known))
		} else {
			newName = p.generateName(asset, category, inv)
		}
		newName = p.applyCategoryPrefix(newName, category)

		ext := asset.Ext
		if known != "" && path.Ext(known) != "" {
			ext = path.Ext(known)
		}

		newRel := uniquePath(category.Dir(), newName, ext, claimed)
		claimed[newRel] = true

		doc.Entries[asset.RelPath] = mapping.Entry{
			OldPath:     prefix + asset.RelPath,
			NewPath:     prefix + newRel,
			OldRelative: asset.RelPath,
			NewRelative: newRel,
			Category:    string(category),
			NewName:     path.Base(strings.TrimSuffix(newRel, ext)),
		}
	}

	if err := doc.Validate(); err != nil {
		// Validation failing here means a planning bug, not bad input.
		return nil, fmt.Errorf("planned mapping failed validation: %w", err)
	}

	logger.Info(fmt.Sprintf("Planned %d renames", len(doc.Entries)))
	return doc, nil
}

// categorize classifies a filename. Precedence: curated known-names
// table, keyword tables, extension fallback, "other".
func (p *Planner) categorize(filename string) (assets.Category, string) {
	if known, ok := p.cfg.KnownNames[filename]; ok {
		return categoryFromName(known), known
	}

	lower := strings.ToLower(filename)
	for _, category := range assets.Categories {
		for _, kw := range p.keywords[category] {
			if strings.Contains(lower, kw) {
				return category, ""
			}
		}
	}

	switch strings.ToLower(path.Ext(filename)) {
	case ".css":
		return assets.CategoryStylesheet, ""
	case ".js", ".mjs":
		return assets.CategoryScript, ""
	case ".svg":
		return assets.CategoryIcon, ""
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".avif", ".bmp", ".tiff", ".tif":
		return assets.CategoryGraphic, ""
	}
	return assets.CategoryOther, ""
}

// categoryFromName infers the category of a curated replacement name.
func categoryFromName(name string) assets.Category {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "favicon"), strings.Contains(lower, "apple-touch"):
		return assets.CategoryFavicon
	case strings.Contains(lower, "logo"):
		return assets.CategoryLogo
	case strings.Contains(lower, "icon"):
		return assets.CategoryIcon
	case strings.Contains(lower, "og-image"):
		return assets.CategoryGraphic
	case strings.Contains(lower, "screenshot"):
		return assets.CategoryScreenshot
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".css":
		return assets.CategoryStylesheet
	case ".js", ".mjs":
		return assets.CategoryScript
	}
	return assets.CategoryOther
}

// generateName produces the filename stem: noise-stripped original
// first, then reference context, then a hash placeholder. Never empty.
func (p *Planner) generateName(asset assets.Asset, category assets.Category, inv *assets.Inventory) string {
	if name := cleanName(asset.Stem()); name != "" {
		return name
	}

	refs := inv.ReferencesTo("/"+strings.Trim(p.cfg.AssetPrefix, "/")+"/", asset.RelPath)
	if name := nameFromReferences(refs); name != "" {
		return name
	}

	if len(asset.Hash) >= 8 {
		return "file-" + asset.Hash[:8]
	}
	return "file-" + string(category)
}

// applyCategoryPrefix prepends the category word for image categories
// when the stem does not already carry a descriptive marker.
func (p *Planner) applyCategoryPrefix(name string, category assets.Category) string {
	switch category {
	case assets.CategoryLogo:
		if !strings.HasPrefix(name, "logo") {
			return "logo-" + name
		}
	case assets.CategoryIcon:
		if !strings.HasPrefix(name, "icon") && !hasAny(name, "linkedin", "google", "bing", "yahoo", "duckduckgo", "social") {
			return "icon-" + name
		}
	case assets.CategoryScreenshot:
		if !strings.HasPrefix(name, "screenshot") {
			return "screenshot-" + name
		}
	case assets.CategoryGraphic:
		if !strings.HasPrefix(name, "graphic") && !hasAny(name, "og-image", "mesh", "vector", "currency", "background") {
			return "graphic-" + name
		}
	}
	return name
}

// uniquePath appends -1, -2, ... to the stem until the path is unique
// within the mapping being built.
func uniquePath(dir, stem, ext string, claimed map[string]bool) string {
	candidate := dir + "/" + stem + ext
	for n := 1; claimed[candidate]; n++ {
		candidate = fmt.Sprintf("%s/%s-%d%s", dir, stem, n, ext)
	}
	return candidate
}

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
