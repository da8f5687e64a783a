/*
Copyright © 2026 StaticHQ <oss@statichq.dev>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statichq/assetpipe/internal/assets"
	"github.com/statichq/assetpipe/internal/planner"
	"github.com/statichq/assetpipe/internal/report"
	"github.com/statichq/assetpipe/pkg/config"
	"github.com/statichq/assetpipe/pkg/logger"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the rename mapping for scanned assets",
	Long: `Plan categorizes every asset and assigns it a clean, unique name
under the canonical directory layout, writing the result as a mapping
document. The document is plain JSON: review and hand-edit it before
applying. Planning never modifies the site.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("inventory", "inventory.json", "Inventory file from a previous scan")
	planCmd.Flags().String("mapping", "mapping.json", "Mapping document output path")
	planCmd.Flags().String("known-names", "", "YAML table of curated filename replacements")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, dir, err := loadProject(cmd)
	if err != nil {
		return err
	}

	inv, err := loadInventory(cmd, cfg, dir)
	if err != nil {
		return err
	}

	known := cfg.KnownNames
	if path, _ := cmd.Flags().GetString("known-names"); path != "" {
		known, err = config.LoadKnownNames(projectPath(dir, path))
		if err != nil {
			return err
		}
	}

	p := planner.New(planner.Config{
		AssetPrefix:      cfg.AssetPrefix,
		KnownNames:       known,
		CategoryKeywords: keywordTables(cfg),
	})
	doc, err := p.Plan(inv)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("mapping")
	outPath := projectPath(dir, output)
	if err := doc.Save(outPath); err != nil {
		return err
	}
	logger.Info("Mapping written", logger.String("path", outPath))

	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), report.CategoryTable(doc))
	return nil
}

// keywordTables adapts the config's string-keyed keyword overrides to
// the planner's category keys. Nil when the config has no overrides.
func keywordTables(cfg *config.Config) map[assets.Category][]string {
	if len(cfg.CategoryKeywords) == 0 {
		return nil
	}
	out := make(map[assets.Category][]string, len(cfg.CategoryKeywords))
	for name, words := range cfg.CategoryKeywords {
		out[assets.Category(name)] = words
	}
	return out
}
