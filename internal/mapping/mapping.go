// Package mapping defines the persisted old-path to new-path decision
// document: the sole contract between planning and application. The
// document is plain JSON so it can be reviewed and hand-edited between
// stages, and is therefore validated before any mutation consumes it.
package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/statichq/assetpipe/internal/assets"
)

// ErrNotFound indicates the mapping file does not exist.
var ErrNotFound = errors.New("mapping file not found")

// Entry is one planned rename. Entries are written once by planning and
// read-only thereafter.
type Entry struct {
	// OldPath/NewPath are site-root-relative URL paths with the asset
	// prefix, e.g. "/cdn-assets/foo.png".
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
	// OldRelative/NewRelative are asset-root-relative filesystem paths.
	OldRelative string `json:"old_relative"`
	NewRelative string `json:"new_relative"`
	Category    string `json:"category"`
	NewName     string `json:"new_name"`
}

// Document maps original asset-root-relative paths to their entries.
type Document struct {
	Entries map[string]Entry
}

// Load reads and validates a mapping document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied mapping path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}

	doc := &Document{Entries: entries}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes the document as indented JSON.
func (d *Document) Save(path string) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create mapping directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(d.Entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks the document against the JSON schema, the closed
// category set, and the injectivity invariant: no two distinct original
// paths may be planned to the same new path.
func (d *Document) Validate() error {
	if err := validateSchema(d.Entries); err != nil {
		return err
	}

	claimed := make(map[string]string, len(d.Entries))
	keys := d.SortedKeys()
	for _, key := range keys {
		entry := d.Entries[key]
		if !assets.Category(entry.Category).Valid() {
			return fmt.Errorf("entry %s: unknown category %q", key, entry.Category)
		}
		if prev, taken := claimed[entry.NewPath]; taken {
			return fmt.Errorf("mapping is not injective: %s and %s both map to %s", prev, key, entry.NewPath)
		}
		claimed[entry.NewPath] = key
	}
	return nil
}

// SortedKeys returns entry keys in lexicographic order for stable
// iteration.
func (d *Document) SortedKeys() []string {
	keys := make([]string, 0, len(d.Entries))
	for k := range d.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CategoryCounts tallies entries per category.
func (d *Document) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range d.Entries {
		counts[e.Category]++
	}
	return counts
}
