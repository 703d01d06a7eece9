// Package cmd wires the minerva subcommands: run-plan tooling consumed by
// the container entrypoint plus the pipeline tools cron invokes.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootLogLevel string

// NewRootCmd builds the minerva root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "minerva",
		Short:         "Todo summarization pipeline and run-plan tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(rootLogLevel)
		},
	}

	root.PersistentFlags().StringVar(&rootLogLevel, "log-level", "",
		"Logging level (debug, info, warn, error). Defaults to MINERVA_LOG_LEVEL or info.")

	root.AddCommand(
		NewValidateCmd(),
		NewListUnitsCmd(),
		NewRenderCronCmd(),
		NewLoadUnitCmd(),
		NewNextRunsCmd(),
		NewListSessionsCmd(),
		NewFetchTodosCmd(),
		NewSummarizeTodosCmd(),
		NewPublishSummaryCmd(),
		NewGeneratePodcastCmd(),
		NewVersionCmd(),
	)
	return root
}

func configureLogging(level string) {
	if level == "" {
		level = os.Getenv("MINERVA_LOG_LEVEL")
	}
	parsed, err := logrus.ParseLevel(level)
	if level == "" || err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
