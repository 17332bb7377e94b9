package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"scopecss.dev/pkg/scopecss/internal/domain"
)

var checkDiffFlag bool

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Verify scoped stylesheets are up to date",
		Long:  checkLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			showDiff, _ := cmd.Flags().GetBool(diffFlagName)

			return workflow.Check(cmd.Context(), domain.CheckArgs{
				ResolveArgs: resolveArgs(args),
				ScopeClass:  viper.GetString(scopeClassConfigKey),
				Threads:     viper.GetInt(runParallelConfigKey),
				ShowDiff:    showDiff,
			})
		},
	}

	cmd.Flags().BoolVarP(&checkDiffFlag, diffFlagName, "d", false, "show what differs for stale stylesheets")

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
