// Package applier executes a mapping document against the filesystem:
// a move pass that relocates assets, then a rewrite pass that updates
// every reference in the source tree. Dry-run is the default mode;
// nothing is mutated unless Live is set. Both passes are idempotent,
// so re-running a completed migration is a no-op.
package applier

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/statichq/assetpipe/internal/assets"
	"github.com/statichq/assetpipe/internal/mapping"
	"github.com/statichq/assetpipe/internal/rewrite"
	"github.com/statichq/assetpipe/pkg/logger"
)

// MoveStatus is the outcome of a single planned move.
type MoveStatus string

const (
	// StatusMoved: the asset was (or in dry-run, would be) relocated.
	StatusMoved MoveStatus = "moved"
	// StatusAlreadyCorrect: nothing to do; the asset already lives at
	// its target path.
	StatusAlreadyCorrect MoveStatus = "already-correct"
	// StatusSkippedIdentical: source and destination both exist with
	// identical content; the move is treated as done.
	StatusSkippedIdentical MoveStatus = "output-exists"
	// StatusSourceMissing: neither source nor destination exists.
	StatusSourceMissing MoveStatus = "source-missing"
	// StatusConflict: the destination exists with different content.
	// The applier never overwrites.
	StatusConflict MoveStatus = "conflict"
	// StatusFailed: the filesystem operation itself failed.
	StatusFailed MoveStatus = "failed"
)

// Error kinds accumulated in the run summary.
const (
	ErrKindSourceMissing = "source-missing"
	ErrKindConflict      = "destination-conflict"
	ErrKindIO            = "io-error"
)

// ItemError is a non-fatal per-item failure. The run continues past
// these; they surface in the summary and the exit code.
type ItemError struct {
	Stage   string `json:"stage"` // "move" or "rewrite"
	Item    string `json:"item"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// MoveResult records the outcome of one mapping entry.
type MoveResult struct {
	OldRelative string     `json:"old_relative"`
	NewRelative string     `json:"new_relative"`
	Status      MoveStatus `json:"status"`
}

// FileResult records the rewrite outcome for one source file.
type FileResult struct {
	// File is relative to the source root.
	File    string           `json:"file"`
	Changes []rewrite.Change `json:"changes"`
	// Diff is a unified diff of the edit, populated in dry-run mode.
	Diff string `json:"diff,omitempty"`
}

// Summary is the full record of an apply run.
type Summary struct {
	RunID     string    `json:"run_id"`
	Mode      string    `json:"mode"`
	StartedAt time.Time `json:"started_at"`

	Moves    []MoveResult `json:"moves"`
	Rewrites []FileResult `json:"rewrites"`

	Moved          int `json:"moved"`
	AlreadyCorrect int `json:"already_correct"`
	Skipped        int `json:"skipped"`
	FilesRewritten int `json:"files_rewritten"`
	RefsRewritten  int `json:"references_rewritten"`

	PrunedDirs []string    `json:"pruned_dirs,omitempty"`
	Errors     []ItemError `json:"errors,omitempty"`
}

// HasErrors reports whether any per-item failure occurred.
func (s *Summary) HasErrors() bool { return len(s.Errors) > 0 }

// Options controls an apply run.
type Options struct {
	// Live enables mutation. When false every operation is computed
	// and reported but nothing on disk changes.
	Live bool
}

// Config locates the trees the applier operates on.
type Config struct {
	// AssetRoot is the filesystem path of the served asset directory.
	AssetRoot string
	// SourceRoot is the filesystem path of the source tree.
	SourceRoot string
	// AssetPrefix is the URL prefix assets are served under.
	AssetPrefix string
}

// Applier executes mapping documents.
type Applier struct {
	cfg    Config
	engine *rewrite.Engine
	hasher *assets.Hasher
}

// New creates an Applier.
func New(cfg Config) *Applier {
	return &Applier{
		cfg:    cfg,
		engine: rewrite.NewEngine(),
		hasher: assets.NewHasher(),
	}
}

// Apply runs the move pass, then the rewrite pass. Per-item failures
// are accumulated in the summary; only a failure that prevents the run
// from proceeding at all returns an error.
func (a *Applier) Apply(inv *assets.Inventory, doc *mapping.Document, opts Options) (*Summary, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to apply invalid mapping: %w", err)
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		Mode:      mode(opts),
		StartedAt: time.Now().UTC(),
	}
	logger.Info(fmt.Sprintf("Apply run %s (%s): %d mapping entries", summary.RunID, summary.Mode, len(doc.Entries)))

	a.movePass(doc, opts, summary)
	if err := a.rewritePass(inv, doc, opts, summary); err != nil {
		return summary, err
	}
	if opts.Live {
		a.pruneEmptyDirs(summary)
	}

	logger.Info(fmt.Sprintf("Apply run %s done: %d moved, %d already correct, %d files rewritten, %d errors",
		summary.RunID, summary.Moved, summary.AlreadyCorrect, summary.FilesRewritten, len(summary.Errors)))
	return summary, nil
}

func mode(opts Options) string {
	if opts.Live {
		return "live"
	}
	return "dry-run"
}
