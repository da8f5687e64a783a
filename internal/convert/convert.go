// Package convert re-encodes raster assets to modern formats by
// shelling out to the reference encoders (cwebp, avifenc). Conversion
// is additive: outputs are written alongside the originals and
// existing outputs are never overwritten.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/statichq/assetpipe/pkg/logger"
)

// ErrToolNotFound means the encoder binary is not on PATH. Fatal:
// nothing can be converted without it.
var ErrToolNotFound = errors.New("encoder not found")

// Target is an output format.
type Target string

const (
	TargetWebP Target = "webp"
	TargetAVIF Target = "avif"
)

// encoders maps each target to its default encoder binary.
var encoders = map[Target]string{
	TargetWebP: "cwebp",
	TargetAVIF: "avifenc",
}

// rasterExts are the input formats worth re-encoding.
var rasterExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tiff": true, ".tif": true,
}

// Item statuses.
const (
	StatusConverted    = "converted"
	StatusSkippedKind  = "skipped-not-raster"
	StatusSkippedSame  = "skipped-already-target"
	StatusSkippedExist = "skipped-output-exists"
	StatusFailed       = "failed"
)

// Item records one file's conversion outcome.
type Item struct {
	Source  string `json:"source"`
	Output  string `json:"output,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Log is the full record of a conversion run, serialized to JSON so
// runs can be audited and diffed.
type Log struct {
	RunID     string    `json:"run_id"`
	Target    Target    `json:"target"`
	StartedAt time.Time `json:"started_at"`
	Items     []Item    `json:"items"`
	Converted int       `json:"converted"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// Save writes the log as indented JSON.
func (l *Log) Save(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Config configures the converter.
type Config struct {
	// AssetRoot is the tree to convert.
	AssetRoot string
	// Quality is passed to the encoder (0-100).
	Quality int
	// Timeout bounds each encoder invocation.
	Timeout time.Duration
	// Tools overrides the encoder binary per target, e.g. for a
	// non-PATH install.
	Tools map[string]string
}

// Converter runs encoder passes over the asset tree.
type Converter struct {
	cfg Config
}

// New creates a Converter.
func New(cfg Config) *Converter {
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Converter{cfg: cfg}
}

// Run converts every raster asset under the asset root to the target
// format. Per-file failures accumulate in the log; only a missing
// encoder or an unwalkable tree aborts.
func (c *Converter) Run(ctx context.Context, target Target) (*Log, error) {
	tool, err := c.resolveTool(target)
	if err != nil {
		return nil, err
	}

	files, err := c.candidates()
	if err != nil {
		return nil, err
	}

	log := &Log{RunID: uuid.NewString(), Target: target, StartedAt: time.Now().UTC()}
	logger.Info(fmt.Sprintf("Convert run %s: %d candidate file(s) -> %s", log.RunID, len(files), target))

	for _, rel := range files {
		item := c.convertOne(ctx, tool, target, rel)
		log.Items = append(log.Items, item)
		switch item.Status {
		case StatusConverted:
			log.Converted++
		case StatusFailed:
			log.Failed++
		default:
			log.Skipped++
		}
	}

	logger.Info(fmt.Sprintf("Convert run %s done: %d converted, %d skipped, %d failed",
		log.RunID, log.Converted, log.Skipped, log.Failed))
	return log, nil
}

func (c *Converter) resolveTool(target Target) (string, error) {
	name := encoders[target]
	if name == "" {
		return "", fmt.Errorf("unsupported target %q", target)
	}
	if override, ok := c.cfg.Tools[string(target)]; ok && override != "" {
		name = override
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return path, nil
}

// candidates lists convertible files, sorted, relative to the root.
func (c *Converter) candidates() ([]string, error) {
	var files []string
	err := filepath.WalkDir(c.cfg.AssetRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(c.cfg.AssetRoot, p)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)
	return files, err
}

func (c *Converter) convertOne(ctx context.Context, tool string, target Target, rel string) Item {
	item := Item{Source: rel}
	ext := strings.ToLower(filepath.Ext(rel))

	if ext == "."+string(target) {
		item.Status = StatusSkippedSame
		return item
	}
	if !rasterExts[ext] {
		// SVG and friends stay as they are.
		item.Status = StatusSkippedKind
		return item
	}

	outRel := strings.TrimSuffix(rel, filepath.Ext(rel)) + "." + string(target)
	item.Output = outRel

	src := filepath.Join(c.cfg.AssetRoot, filepath.FromSlash(rel))
	out := filepath.Join(c.cfg.AssetRoot, filepath.FromSlash(outRel))
	if _, err := os.Stat(out); err == nil {
		item.Status = StatusSkippedExist
		return item
	}

	if ext == ".gif" {
		if animated, err := isAnimatedGIF(src); err == nil && animated {
			logger.Warn(fmt.Sprintf("%s: animated GIF, only the first frame will be converted", rel))
			item.Message = "animated GIF, first frame only"
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, tool, c.args(target, src, out)...) // #nosec G204 -- tool resolved via LookPath, paths from the walked tree
	if output, err := cmd.CombinedOutput(); err != nil {
		item.Status = StatusFailed
		item.Message = strings.TrimSpace(fmt.Sprintf("%v: %s", err, firstLine(string(output))))
		// A half-written output is worse than none.
		_ = os.Remove(out)
		return item
	}

	item.Status = StatusConverted
	return item
}

// args builds the encoder command line for the target format.
func (c *Converter) args(target Target, src, out string) []string {
	switch target {
	case TargetAVIF:
		return []string{"-q", fmt.Sprint(c.cfg.Quality), src, out}
	default:
		return []string{"-q", fmt.Sprint(c.cfg.Quality), src, "-o", out}
	}
}

// isAnimatedGIF reports whether the GIF contains more than one frame,
// detected by counting graphic control extension blocks.
func isAnimatedGIF(path string) (bool, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from walking the asset root
	if err != nil {
		return false, err
	}
	if !bytes.HasPrefix(data, []byte("GIF8")) {
		return false, nil
	}
	return bytes.Count(data, []byte{0x21, 0xF9, 0x04}) > 1, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
