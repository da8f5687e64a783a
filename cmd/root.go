/*
Copyright © 2026 StaticHQ <oss@statichq.dev>
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/statichq/assetpipe/pkg/buildinfo"
	"github.com/statichq/assetpipe/pkg/config"
	"github.com/statichq/assetpipe/pkg/exitcode"
	"github.com/statichq/assetpipe/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// The factory pattern lets tests build isolated command trees.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assetpipe",
		Short: "Asset migration pipeline for static sites",
		Long: `Assetpipe inventories the assets of a static site, plans clean
categorized names for them, and applies the rename: files move into a
canonical directory layout and every reference in the source tree is
rewritten to match. Apply is a dry run unless --live is given.

Examples:
   assetpipe scan                 # Inventory assets and references
   assetpipe plan                 # Compute the rename mapping
   assetpipe apply                # Preview the migration (dry run)
   assetpipe apply --live         # Execute it
   assetpipe verify               # Check links and assets afterwards
   assetpipe convert --target webp`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("dir", "C", ".", "Project directory to operate in")
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-op", false, "Assessment mode: mark all log output as no-op")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("assetpipe {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// Called from init() for production; tests call it on their own roots.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(scanCmd)
	cmd.AddCommand(planCmd)
	cmd.AddCommand(applyCmd)
	cmd.AddCommand(verifyCmd)
	cmd.AddCommand(convertCmd)
	cmd.AddCommand(versionCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitcode.GeneralError)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on global flags.
func initializeLogger(cmd *cobra.Command) {
	levelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noOp, _ := cmd.Flags().GetBool("no-op")

	logger.Initialize(logger.Config{
		Level:     logger.ParseLevel(levelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "assetpipe",
		NoOp:      noOp,
	})
}

// loadProject resolves the project directory flag and loads its
// configuration. Root paths in the config are made relative to the
// project directory.
func loadProject(cmd *cobra.Command) (*config.Config, string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, "", err
	}
	if !filepath.IsAbs(cfg.AssetRoot) {
		cfg.AssetRoot = filepath.Join(dir, cfg.AssetRoot)
	}
	if !filepath.IsAbs(cfg.SourceRoot) {
		cfg.SourceRoot = filepath.Join(dir, cfg.SourceRoot)
	}
	return cfg, dir, nil
}

// projectPath resolves a flag-supplied path against the project dir.
func projectPath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
