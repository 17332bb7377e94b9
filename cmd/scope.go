package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"scopecss.dev/pkg/scopecss/internal/domain"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

var scopeDryRunFlag bool
var scopeDiffFlag bool
var scopeReportFlag string

// scopeCmd represents the scope command.
var scopeCmd = newScopeCmd()

func newScopeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope [paths...]",
		Short: "Scope stylesheets under the wrapper class",
		Long:  scopeLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool(dryRunFlagName)
			showDiff, _ := cmd.Flags().GetBool(diffFlagName)

			return workflow.Scope(cmd.Context(), domain.ScopeArgs{
				ResolveArgs: resolveArgs(args),
				ScopeClass:  viper.GetString(scopeClassConfigKey),
				Threads:     viper.GetInt(runParallelConfigKey),
				DryRun:      dryRun,
				ShowDiff:    showDiff,
				Report:      m.Path(viper.GetString(reportConfigKey)),
			})
		},
	}

	configureScopeFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(scopeCmd)
}

func configureScopeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&scopeDryRunFlag, dryRunFlagName, "n", false, "do not write scoped files")
	cmd.Flags().BoolVarP(&scopeDiffFlag, diffFlagName, "d", false, "show a unified diff for every stylesheet")
	cmd.Flags().StringVarP(&scopeReportFlag, reportFlagName, "r", viper.GetString(reportConfigKey), "write a YAML report of the run to this path")
	bindFlagToConfig(cmd.Flags().Lookup(reportFlagName), reportConfigKey)
}
