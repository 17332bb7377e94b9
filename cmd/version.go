package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildRevision returns the VCS revision recorded by the Go toolchain, if any.
func buildRevision(info *debug.BuildInfo) string {
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}

	return ""
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the scopecss version",
		Long:  "Displays the scopecss build version, its VCS revision and the Go version used to build it.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("scopecss version: unknown")
				return
			}

			cmd.Println("scopecss version\t", info.Main.Version)

			if revision := buildRevision(info); revision != "" {
				cmd.Println("revision\t", revision)
			}

			cmd.Println("go version\t", info.GoVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
