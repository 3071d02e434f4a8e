package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridden with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the podboard build",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := versionInfo{Version: Version, Commit: GitCommit, Date: BuildDate, Go: runtime.Version()}
		if GetJSONOutput() {
			printJSON(info)
			return
		}
		fmt.Printf("podboard version %s\n", info.Version)
		if IsVerbose() {
			fmt.Printf("  commit: %s\n  built:  %s\n  go:     %s\n", info.Commit, info.Date, info.Go)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
