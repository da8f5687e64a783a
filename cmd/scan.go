/*
Copyright © 2026 StaticHQ <oss@statichq.dev>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/statichq/assetpipe/internal/assets"
	"github.com/statichq/assetpipe/internal/scanner"
	"github.com/statichq/assetpipe/pkg/config"
	"github.com/statichq/assetpipe/pkg/exitcode"
	"github.com/statichq/assetpipe/pkg/logger"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Inventory assets and the references to them",
	Long: `Scan walks the asset root for files and the source root for path
literals referencing them, and writes the combined inventory as JSON.
Scanning never modifies anything.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("inventory", "inventory.json", "Inventory output path")
	scanCmd.Flags().Bool("stdout", false, "Print the inventory instead of writing a file")
	scanCmd.Flags().String("asset-root", "", "Override the configured asset root")
	scanCmd.Flags().String("source-root", "", "Override the configured source root")
	scanCmd.Flags().StringSlice("exts", nil, "Override the source extensions scanned for references")
	scanCmd.Flags().StringSlice("include", nil, "Glob patterns of asset paths to include")
	scanCmd.Flags().StringSlice("exclude", nil, "Glob patterns of asset paths to exclude")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, dir, err := loadProject(cmd)
	if err != nil {
		return err
	}
	applyScanOverrides(cmd, cfg, dir)

	inv, err := runScanner(cfg, dir)
	if err != nil {
		if errors.Is(err, scanner.ErrNotFound) {
			logger.Error("Scan failed", logger.Err(err))
			os.Exit(exitcode.FileSystemError)
		}
		return err
	}

	logger.Info("Scan complete",
		logger.Int("assets", len(inv.Assets)),
		logger.Int("references", len(inv.References)))

	if toStdout, _ := cmd.Flags().GetBool("stdout"); toStdout {
		data, err := json.MarshalIndent(inv, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	output, _ := cmd.Flags().GetString("inventory")
	return saveInventory(inv, projectPath(dir, output))
}

// applyScanOverrides layers scan-specific flags over the loaded config.
func applyScanOverrides(cmd *cobra.Command, cfg *config.Config, dir string) {
	if root, _ := cmd.Flags().GetString("asset-root"); root != "" {
		cfg.AssetRoot = projectPath(dir, root)
	}
	if root, _ := cmd.Flags().GetString("source-root"); root != "" {
		cfg.SourceRoot = projectPath(dir, root)
	}
	if exts, _ := cmd.Flags().GetStringSlice("exts"); len(exts) > 0 {
		cfg.SourceExts = exts
	}
	if include, _ := cmd.Flags().GetStringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude, _ := cmd.Flags().GetStringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = exclude
	}
}

// runScanner builds a scanner from project config and runs it.
func runScanner(cfg *config.Config, dir string) (*assets.Inventory, error) {
	s := scanner.New(scanner.Config{
		ProjectDir:  dir,
		AssetRoot:   cfg.AssetRoot,
		SourceRoot:  cfg.SourceRoot,
		AssetPrefix: cfg.AssetPrefix,
		SourceExts:  cfg.SourceExts,
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
	})
	return s.Scan()
}

func saveInventory(inv *assets.Inventory, path string) error {
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}
	logger.Info("Inventory written", logger.String("path", path))
	return nil
}

// loadInventory reads a previously written inventory, falling back to
// a fresh scan when the file does not exist.
func loadInventory(cmd *cobra.Command, cfg *config.Config, dir string) (*assets.Inventory, error) {
	path, _ := cmd.Flags().GetString("inventory")
	full := projectPath(dir, path)

	data, err := os.ReadFile(full) // #nosec G304 -- operator-supplied inventory path
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("No inventory file, scanning", logger.String("path", full))
			return runScanner(cfg, dir)
		}
		return nil, err
	}

	var inv assets.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", full, err)
	}
	return &inv, nil
}
