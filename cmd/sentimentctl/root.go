package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pscheid92/socialsent/internal/platform/logging"
	"github.com/pscheid92/socialsent/internal/platform/version"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "sentimentctl",
		Short:         "Turkish social media sentiment analysis",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.InitStderrLogger(opts.logLevel, opts.logFormat)
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newLexiconCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	})

	return root
}
