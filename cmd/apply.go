/*
Copyright © 2026 StaticHQ <oss@statichq.dev>
*/
package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statichq/assetpipe/internal/applier"
	"github.com/statichq/assetpipe/internal/mapping"
	"github.com/statichq/assetpipe/internal/report"
	"github.com/statichq/assetpipe/pkg/exitcode"
	"github.com/statichq/assetpipe/pkg/logger"
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Execute a mapping: move assets and rewrite references",
	Long: `Apply runs the mapping document against the site: assets move to
their new paths, then every reference in the source tree is rewritten
to match. Without --live this is a dry run that prints what would
change, including unified diffs of every file edit. Apply is
idempotent; re-running a finished migration changes nothing.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().String("mapping", "mapping.json", "Mapping document to execute")
	applyCmd.Flags().String("inventory", "inventory.json", "Inventory file from a previous scan")
	applyCmd.Flags().Bool("live", false, "Actually modify files (default is dry run)")
	applyCmd.Flags().BoolP("yes", "y", false, "Skip the live-mode confirmation prompt")
	applyCmd.Flags().String("report", "", "Write a Markdown migration report to this path")
	applyCmd.Flags().String("summary", "", "Write the run summary as JSON to this path")
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg, dir, err := loadProject(cmd)
	if err != nil {
		return err
	}

	mappingPath, _ := cmd.Flags().GetString("mapping")
	doc, err := mapping.Load(projectPath(dir, mappingPath))
	if err != nil {
		if errors.Is(err, mapping.ErrNotFound) {
			logger.Error("No mapping document; run 'assetpipe plan' first", logger.Err(err))
			os.Exit(exitcode.FileSystemError)
		}
		return err
	}

	inv, err := loadInventory(cmd, cfg, dir)
	if err != nil {
		return err
	}

	live, _ := cmd.Flags().GetBool("live")
	if live && !confirmApply(cmd, len(doc.Entries)) {
		logger.Info("Aborted")
		os.Exit(exitcode.Aborted)
	}

	a := applier.New(applier.Config{
		AssetRoot:   cfg.AssetRoot,
		SourceRoot:  cfg.SourceRoot,
		AssetPrefix: cfg.AssetPrefix,
	})
	summary, err := a.Apply(inv, doc, applier.Options{Live: live})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !live {
		for _, fr := range summary.Rewrites {
			if fr.Diff != "" {
				fmt.Fprintln(out, fr.Diff)
			}
		}
	}
	fmt.Fprint(out, report.SummaryTable(summary))

	if path, _ := cmd.Flags().GetString("summary"); path != "" {
		if err := writeJSON(projectPath(dir, path), summary); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("report"); path != "" {
		md, err := report.Markdown(doc, summary)
		if err != nil {
			return err
		}
		full := projectPath(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(full, []byte(md), 0o644); err != nil {
			return err
		}
		logger.Info("Report written", logger.String("path", full))
	}

	if summary.HasErrors() {
		for _, itemErr := range summary.Errors {
			logger.Warn(fmt.Sprintf("%s %s: %s (%s)", itemErr.Stage, itemErr.Item, itemErr.Message, itemErr.Kind))
		}
		os.Exit(exitcode.PartialFailure)
	}
	return nil
}

// confirmApply prompts before a live run unless --yes was given.
func confirmApply(cmd *cobra.Command, entries int) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "About to move and rewrite %d asset(s). Continue? [y/N] ", entries)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
