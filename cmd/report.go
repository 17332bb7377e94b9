package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"scopecss.dev/pkg/scopecss/internal/domain"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

const statusFlagName = "status"

var reportStatusFlag []string

// reportCmd represents the report command.
var reportCmd = newReportCmd()

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [report.yaml]",
		Short: "Show a report saved by scope --report",
		Long: `Display the stylesheets recorded in a YAML report written by "scope --report".
Without an argument the configured report path is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString(reportConfigKey)
			if len(args) == 1 {
				path = args[0]
			}

			if path == "" {
				return errors.New("no report given: pass a path or set report in scopecss.yaml")
			}

			names, _ := cmd.Flags().GetStringSlice(statusFlagName)

			statuses, err := parseStatuses(names)
			if err != nil {
				return err
			}

			return workflow.View(cmd.Context(), domain.ViewArgs{
				Report:   m.Path(path),
				Statuses: statuses,
			})
		},
	}

	cmd.Flags().StringSliceVar(&reportStatusFlag, statusFlagName, nil, "only show stylesheets with these statuses (scoped, unchanged, up-to-date, stale, failed)")

	return cmd
}

func parseStatuses(names []string) ([]m.Status, error) {
	statuses := make([]m.Status, 0, len(names))

	for _, name := range names {
		status, ok := m.ParseStatus(name)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", name)
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
