// =============================================================================
// Campaign Insights - Version Command
// =============================================================================
//
// Prints the release, build date, VCS revision and Go runtime.
//
// OUTPUT:
//   Campaign Insights
//   Version:    0.3.0
//   Build Date: 2024-01-01
//   Revision:   3f2c1a9 (only when built from a VCS checkout)
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Release metadata, overridable with
//   -ldflags "-X 'github.com/ginjaninja78/campaign-insights/cmd.Version=0.3.1'"
var (
	Version   = "0.3.0"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print release and build information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Campaign Insights")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		if rev := vcsRevision(); rev != "" {
			fmt.Fprintf(out, "Revision:   %s\n", rev)
		}
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

// vcsRevision returns the short commit hash embedded by the go tool, if any.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
