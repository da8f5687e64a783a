package applier

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/statichq/assetpipe/internal/mapping"
	"github.com/statichq/assetpipe/pkg/logger"
)

// movePass relocates every mapped asset, in stable key order. Each
// entry is independent: a conflict or missing source is recorded and
// the pass moves on.
func (a *Applier) movePass(doc *mapping.Document, opts Options, summary *Summary) {
	for _, old := range doc.SortedKeys() {
		entry := doc.Entries[old]
		result := a.moveOne(entry, opts, summary)
		summary.Moves = append(summary.Moves, result)

		switch result.Status {
		case StatusMoved:
			summary.Moved++
		case StatusAlreadyCorrect:
			summary.AlreadyCorrect++
		case StatusSkippedIdentical:
			summary.Skipped++
		}
	}
}

func (a *Applier) moveOne(entry mapping.Entry, opts Options, summary *Summary) MoveResult {
	result := MoveResult{OldRelative: entry.OldRelative, NewRelative: entry.NewRelative}

	if entry.OldRelative == entry.NewRelative {
		result.Status = StatusAlreadyCorrect
		return result
	}

	oldFS := filepath.Join(a.cfg.AssetRoot, filepath.FromSlash(entry.OldRelative))
	newFS := filepath.Join(a.cfg.AssetRoot, filepath.FromSlash(entry.NewRelative))

	_, oldErr := os.Stat(oldFS)
	_, newErr := os.Stat(newFS)
	oldExists := oldErr == nil
	newExists := newErr == nil

	switch {
	case !oldExists && newExists:
		// A previous run already moved it.
		result.Status = StatusAlreadyCorrect

	case !oldExists && !newExists:
		result.Status = StatusSourceMissing
		summary.Errors = append(summary.Errors, ItemError{
			Stage: "move", Item: entry.OldRelative, Kind: ErrKindSourceMissing,
			Message: "asset not found at old or new location",
		})

	case oldExists && newExists:
		same, err := a.hasher.Equal(oldFS, newFS)
		if err != nil {
			result.Status = StatusFailed
			summary.Errors = append(summary.Errors, ItemError{
				Stage: "move", Item: entry.OldRelative, Kind: ErrKindIO, Message: err.Error(),
			})
			return result
		}
		if same {
			result.Status = StatusSkippedIdentical
			return result
		}
		result.Status = StatusConflict
		summary.Errors = append(summary.Errors, ItemError{
			Stage: "move", Item: entry.OldRelative, Kind: ErrKindConflict,
			Message: fmt.Sprintf("%s exists with different content", entry.NewRelative),
		})

	default:
		if !opts.Live {
			logger.Info(fmt.Sprintf("[dry-run] would move %s -> %s", entry.OldRelative, entry.NewRelative))
			result.Status = StatusMoved
			return result
		}
		if err := os.MkdirAll(filepath.Dir(newFS), 0o755); err != nil {
			result.Status = StatusFailed
			summary.Errors = append(summary.Errors, ItemError{
				Stage: "move", Item: entry.OldRelative, Kind: ErrKindIO, Message: err.Error(),
			})
			return result
		}
		if err := os.Rename(oldFS, newFS); err != nil {
			result.Status = StatusFailed
			summary.Errors = append(summary.Errors, ItemError{
				Stage: "move", Item: entry.OldRelative, Kind: ErrKindIO, Message: err.Error(),
			})
			return result
		}
		logger.Debug(fmt.Sprintf("moved %s -> %s", entry.OldRelative, entry.NewRelative))
		result.Status = StatusMoved
	}
	return result
}

// pruneEmptyDirs removes directories left empty by the move pass.
// Deepest-first so emptied parents collapse too. Live mode only; the
// asset root itself is never removed.
func (a *Applier) pruneEmptyDirs(summary *Summary) {
	var dirs []string
	err := filepath.WalkDir(a.cfg.AssetRoot, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && p != a.cfg.AssetRoot {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dirs[i]); err != nil {
			continue
		}
		rel, err := filepath.Rel(a.cfg.AssetRoot, dirs[i])
		if err != nil {
			rel = dirs[i]
		}
		summary.PrunedDirs = append(summary.PrunedDirs, filepath.ToSlash(rel))
	}
}
