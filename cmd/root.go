// Package cmd provides the root command and CLI setup for scopecss.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"scopecss.dev/pkg/scopecss/internal/adapter"
	"scopecss.dev/pkg/scopecss/internal/controller"
	"scopecss.dev/pkg/scopecss/internal/domain"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var resolver domain.Resolver
var workflow domain.Workflow
var ui controller.UI

// verboseFlag switches logging to debug level.
var verboseFlag bool

// logFileFlag overrides the configured log file.
var logFileFlag string

// scopeClassFlag is the wrapper class prepended to selectors.
var scopeClassFlag string

// suffixFlag is inserted before the extension of each scoped target.
var suffixFlag string

// excludePatterns is a root-level flag that filters stylesheets for applicable commands.
var excludePatterns []string

// parallelFlag is the number of stylesheets processed concurrently.
var parallelFlag int

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	resolver = domain.NewResolver(fsAdapter)
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		ui,
		resolver,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - .              stylesheets in the current directory
  - ./...          recursively scan current directory
  - ./web/...      recursively scan web directory
  - style.css      a single stylesheet`

const rootLongDescription = `scopecss wraps every selector of a stylesheet in a scope class so its
rules only apply inside elements carrying that class. Comments, declarations
and at-rule bodies are copied unchanged.

` + pathPatternsHelp

const scopeLongDescription = `Scope the given stylesheets (default: current directory) and write
each result next to its source, e.g. style.css -> style.scoped.css.

` + pathPatternsHelp

const checkLongDescription = `Verify that every scoped stylesheet on disk matches what "scope"
would write now. Exits with an error when any target is missing or stale.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "scopecss",
		Short:        "Scope CSS selectors under a wrapper class",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configErr != nil {
				return configErr
			}

			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path (rotated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().StringVarP(&scopeClassFlag, classFlagName, "c", viper.GetString(scopeClassConfigKey), "scope class prepended to every selector")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(classFlagName), scopeClassConfigKey)

	cmd.PersistentFlags().StringVar(&suffixFlag, suffixFlagName, viper.GetString(scopeSuffixConfigKey), "suffix inserted before the extension of scoped files")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(suffixFlagName), scopeSuffixConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude stylesheets matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().IntVarP(&parallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of stylesheets processed in parallel")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(runParallelFlagName), runParallelConfigKey)
}

// resolveArgs builds the stylesheet selection shared by scope and check.
func resolveArgs(args []string) domain.ResolveArgs {
	return domain.ResolveArgs{
		Paths:   parsePaths(args),
		Exclude: viper.GetStringSlice(excludeConfigKey),
		Suffix:  viper.GetString(scopeSuffixConfigKey),
	}
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
