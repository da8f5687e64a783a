/*
Copyright © 2026 StaticHQ <oss@statichq.dev>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/statichq/assetpipe/pkg/buildinfo"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show assetpipe version information",
	RunE:  runVersionCmd,
}

func init() {
	versionCmd.Flags().Bool("extended", false, "Show build and runtime details")
	versionCmd.Flags().Bool("json", false, "Output version information in JSON format")
}

func runVersionCmd(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if jsonOutput {
		info := map[string]interface{}{
			"version":       buildinfo.BinaryVersion,
			"moduleVersion": buildinfo.ModuleVersion(),
			"goVersion":     runtime.Version(),
			"platform":      runtime.GOOS,
			"arch":          runtime.GOARCH,
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "assetpipe %s\n", buildinfo.BinaryVersion)
	if extended {
		fmt.Fprintf(out, "  module:   %s\n", buildinfo.ModuleVersion())
		fmt.Fprintf(out, "  go:       %s\n", runtime.Version())
		fmt.Fprintf(out, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}
	return nil
}
