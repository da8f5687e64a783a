/*
Copyright © 2026 StaticHQ <oss@statichq.dev>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/statichq/assetpipe/internal/verify"
	"github.com/statichq/assetpipe/pkg/exitcode"
	"github.com/statichq/assetpipe/pkg/logger"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that assets, links, and the sitemap are consistent",
	Long: `Verify re-scans the site and checks that every referenced asset
exists on disk, that internal links resolve to real page routes, and
(with --sitemap) that the sitemap agrees with those routes. Exits
non-zero when issues are found.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("inventory", "", "Inventory file to verify (default: fresh scan)")
	verifyCmd.Flags().String("sitemap", "", "sitemap.xml to cross-check against page routes")
	verifyCmd.Flags().StringP("output", "o", "", "Write the verification report as JSON to this path")
}

func runVerify(cmd *cobra.Command, _ []string) error {
	cfg, dir, err := loadProject(cmd)
	if err != nil {
		return err
	}

	// Verification wants the current state, so default to a fresh scan
	// rather than a stale inventory file.
	inv, err := loadInventory(cmd, cfg, dir)
	if err != nil {
		return err
	}

	sitemap, _ := cmd.Flags().GetString("sitemap")
	v := verify.New(verify.Config{
		AssetRoot:   cfg.AssetRoot,
		SourceRoot:  cfg.SourceRoot,
		AssetPrefix: cfg.AssetPrefix,
		SitemapPath: projectPath(dir, sitemap),
	})

	result, err := v.Verify(inv)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := writeJSON(projectPath(dir, path), result); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, issue := range result.Issues {
		if issue.File != "" {
			fmt.Fprintf(out, "%s:%d: %s: %s\n", issue.File, issue.Line, issue.Kind, issue.Path)
		} else {
			fmt.Fprintf(out, "%s: %s\n", issue.Kind, issue.Path)
		}
	}

	if !result.OK() {
		logger.Error(fmt.Sprintf("Verification found %d issue(s)", len(result.Issues)))
		os.Exit(exitcode.ValidationError)
	}
	logger.Info("Verification passed", logger.Int("references", result.Checked))
	return nil
}
