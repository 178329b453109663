package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-twitter-analyzer/scraper"
	"github.com/anatolykoptev/go-twitter-analyzer/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Long: `Serve starts the analysis API:

  POST /api/analyze   {"profile_url": "...", "max_tweets": 100}
  GET  /api/progress  current job status and, once complete, the top tweets
  GET  /healthz

Only one scrape runs at a time. Without session cookies the scraper uses a
guest token, which sees fewer tweets. Provide cookies with the
TWITTER_AUTH_TOKEN and TWITTER_CT0 environment variables or in the config
file.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", "", "Listen address (default :5000)")
	cmd.Flags().StringP("proxy", "p", "", "HTTP or SOCKS5 proxy for requests to X")
	cmd.Flags().Int("top", 0, "Number of top tweets to report (default 20)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fc, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, fc); err != nil {
		return err
	}

	usage := &apiUsage{}
	src, err := scraper.NewClient(fc.scraperConfig(usage))
	if err != nil {
		return fmt.Errorf("create scraper: %w", err)
	}
	defer usage.log()

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(fc.serverConfig(), src).ListenAndServe(ctx)
}

func applyServeFlags(cmd *cobra.Command, fc *fileConfig) error {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		addr, err := flags.GetString("addr")
		if err != nil {
			return err
		}
		fc.Server.Addr = addr
	}
	if flags.Changed("proxy") {
		proxy, err := flags.GetString("proxy")
		if err != nil {
			return err
		}
		fc.Scraper.Proxy = proxy
	}
	if flags.Changed("top") {
		top, err := flags.GetInt("top")
		if err != nil {
			return err
		}
		fc.Server.TopN = top
	}
	return nil
}

// commandConfig loads the file named by the persistent --config flag.
func commandConfig(cmd *cobra.Command) (*fileConfig, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return loadConfig(path)
}

// contextOrBackground guards commands executed without a context in tests.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
