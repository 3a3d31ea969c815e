package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata. Defaults apply to `go run` and plain `go build`;
// release builds overwrite them through main via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo sets the version information from main.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// versionSummary renders the one-line form, e.g.
// "kindstack 1.2.0 (abc1234, built 2026-08-24, linux/amd64)".
func versionSummary() string {
	return fmt.Sprintf("kindstack %s (%s, built %s, %s/%s)",
		version, commit, date, runtime.GOOS, runtime.GOARCH)
}

// Version returns the version command.
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(versionSummary())
		},
	}
}
