package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-twitter-analyzer/internal/logging"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "twitter-analyzer",
		Short: "Find the most engaging tweets of a public X profile",
		Long: `twitter-analyzer scrapes the recent tweets of a public X (Twitter) profile,
scores each one by replies, retweets, likes, bookmarks and views, and reports
the top tweets.

Run "serve" to start the analysis API, then "analyze" to submit a profile
and follow its progress. "analyze --local" does both in one process.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			jsonLogs, _ := cmd.Flags().GetBool("log-json")
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logging.Options{Verbose: verbose, JSON: jsonLogs}))
			return nil
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: $XDG_CONFIG_HOME/twitter-analyzer/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
