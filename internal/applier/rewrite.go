package applier

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/statichq/assetpipe/internal/assets"
	"github.com/statichq/assetpipe/internal/mapping"
	"github.com/statichq/assetpipe/pkg/logger"
	"github.com/statichq/assetpipe/pkg/safeio"
)

// rewritePass updates every source file that references a mapped
// asset. Only the matched path substrings are replaced; the rest of
// each file is preserved byte for byte. Files whose content would not
// change are never written.
func (a *Applier) rewritePass(inv *assets.Inventory, doc *mapping.Document, opts Options, summary *Summary) error {
	resolver := mapping.NewResolver(doc, a.cfg.AssetPrefix)

	for _, file := range referencedFiles(inv) {
		target := filepath.Join(a.cfg.SourceRoot, filepath.FromSlash(file))
		raw, err := safeio.ReadFileContained(a.cfg.SourceRoot, target)
		if err != nil {
			summary.Errors = append(summary.Errors, ItemError{
				Stage: "rewrite", Item: file, Kind: ErrKindIO, Message: err.Error(),
			})
			continue
		}

		content := string(raw)
		updated, changes := a.engine.Rewrite(content, resolver.Resolve)
		if len(changes) == 0 {
			continue
		}

		result := FileResult{File: file, Changes: changes}
		if opts.Live {
			if err := safeio.WriteFilePreservePerms(target, []byte(updated)); err != nil {
				summary.Errors = append(summary.Errors, ItemError{
					Stage: "rewrite", Item: file, Kind: ErrKindIO, Message: err.Error(),
				})
				continue
			}
		} else {
			diff, err := unifiedDiff(file, content, updated)
			if err == nil {
				result.Diff = diff
			}
		}

		summary.Rewrites = append(summary.Rewrites, result)
		summary.FilesRewritten++
		summary.RefsRewritten += len(changes)
		logger.Debug(fmt.Sprintf("%s: %d reference(s) rewritten", file, len(changes)))
	}
	return nil
}

// referencedFiles returns the distinct source files in the inventory,
// sorted for a stable rewrite order.
func referencedFiles(inv *assets.Inventory) []string {
	seen := make(map[string]bool)
	var files []string
	for _, ref := range inv.References {
		if !seen[ref.File] {
			seen[ref.File] = true
			files = append(files, ref.File)
		}
	}
	sort.Strings(files)
	return files
}

func unifiedDiff(file, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + file,
		ToFile:   "b/" + file,
		Context:  3,
	})
}
