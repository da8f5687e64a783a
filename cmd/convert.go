/*
Copyright © 2026 StaticHQ <oss@statichq.dev>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/statichq/assetpipe/internal/convert"
	"github.com/statichq/assetpipe/pkg/exitcode"
	"github.com/statichq/assetpipe/pkg/logger"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Re-encode raster assets to a modern format",
	Long: `Convert shells out to the reference encoders (cwebp, avifenc) to
produce webp or avif siblings for every raster asset. Originals are
kept and existing outputs are never overwritten. The run is recorded
as a JSON log for auditing.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("target", "webp", "Output format (webp|avif)")
	convertCmd.Flags().Int("quality", 0, "Encoder quality 1-100 (default from config)")
	convertCmd.Flags().String("log", "convert-log.json", "Conversion log output path")
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfg, dir, err := loadProject(cmd)
	if err != nil {
		return err
	}

	quality := cfg.Convert.Quality
	if q, _ := cmd.Flags().GetInt("quality"); q > 0 {
		quality = q
	}

	targetStr, _ := cmd.Flags().GetString("target")
	target := convert.Target(targetStr)
	if target != convert.TargetWebP && target != convert.TargetAVIF {
		return fmt.Errorf("unsupported target %q (want webp or avif)", targetStr)
	}

	c := convert.New(convert.Config{
		AssetRoot: cfg.AssetRoot,
		Quality:   quality,
		Timeout:   time.Duration(cfg.Convert.TimeoutSeconds) * time.Second,
		Tools:     cfg.Convert.Tools,
	})

	runLog, err := c.Run(cmd.Context(), target)
	if err != nil {
		if errors.Is(err, convert.ErrToolNotFound) {
			logger.Error("Encoder missing", logger.Err(err))
			os.Exit(exitcode.ToolNotFound)
		}
		return err
	}

	logPath, _ := cmd.Flags().GetString("log")
	if err := runLog.Save(projectPath(dir, logPath)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d, skipped %d, failed %d (log: %s)\n",
		runLog.Converted, runLog.Skipped, runLog.Failed, logPath)

	if runLog.Failed > 0 {
		os.Exit(exitcode.PartialFailure)
	}
	return nil
}
