package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const forceFlagName = "force"

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a scopecss.yaml with the current settings",
		Long: `Create scopecss.yaml in the current directory holding the scope class,
suffix, exclude patterns and logging settings currently in effect, so they can
be edited and committed next to the stylesheets.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)
			force, _ := cmd.Flags().GetBool(forceFlagName)

			write := viper.SafeWriteConfigAs
			if force {
				write = viper.WriteConfigAs
			}

			if err := write(targetPath); err != nil {
				return fmt.Errorf("write %s: %w", targetPath, err)
			}

			cmd.Printf("Wrote %s\n", targetPath)

			return nil
		},
	}

	cmd.Flags().Bool(forceFlagName, false, "overwrite an existing scopecss.yaml")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}
