package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	analyzer "github.com/anatolykoptev/go-twitter-analyzer"
	"github.com/anatolykoptev/go-twitter-analyzer/scraper"
	"github.com/anatolykoptev/go-twitter-analyzer/server"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [profile-url]",
		Short: "Analyze a profile and print its top tweets",
		Long: `Analyze submits a profile to the analysis server, reports progress while
the server scrapes, and prints the top tweets when the job completes.

Examples:
  # Against a server started with "twitter-analyzer serve"
  twitter-analyzer analyze https://x.com/username

  # Start an in-process server for this run only
  twitter-analyzer analyze --local --max-tweets 300 https://x.com/username

  # Markdown report
  twitter-analyzer analyze -f markdown https://x.com/username > report.md`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("server", "s", "", "Analysis server URL (default http://localhost:5000)")
	cmd.Flags().IntP("max-tweets", "n", 0, "Maximum tweets to scrape (default 100)")
	cmd.Flags().StringP("format", "f", string(analyzer.FormatText), "Report format: text or markdown")
	cmd.Flags().Duration("poll-interval", 0, "Progress poll interval (default 1s)")
	cmd.Flags().Duration("poll-timeout", 0, "Give up polling after this long (default 30m)")
	cmd.Flags().BoolP("local", "l", false, "Run the analysis server in-process")
	cmd.Flags().StringP("proxy", "p", "", "HTTP or SOCKS5 proxy for requests to X (with --local)")
	return cmd
}

// analyzeOptions are the analyze flags resolved against the config file.
type analyzeOptions struct {
	profileURL string
	maxTweets  int
	format     analyzer.Format
	local      bool
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fc, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := buildAnalyzeOptions(cmd, fc, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := analyzer.NewTerminalView(cmd.OutOrStdout(), opts.format)
	if opts.local {
		return runLocal(ctx, fc, view, opts)
	}

	ccfg := fc.clientConfig()
	api, err := analyzer.NewHTTPAPI(ccfg)
	if err != nil {
		return err
	}
	return follow(ctx, analyzer.NewController(api, view, ccfg), opts)
}

func buildAnalyzeOptions(cmd *cobra.Command, fc *fileConfig, args []string) (*analyzeOptions, error) {
	flags := cmd.Flags()
	opts := &analyzeOptions{profileURL: args[0]}

	var err error
	if opts.maxTweets, err = flags.GetInt("max-tweets"); err != nil {
		return nil, err
	}
	if opts.local, err = flags.GetBool("local"); err != nil {
		return nil, err
	}

	format := fc.Client.Format
	if flags.Changed("format") || format == "" {
		if format, err = flags.GetString("format"); err != nil {
			return nil, err
		}
	}
	if opts.format, err = analyzer.ParseFormat(format); err != nil {
		return nil, err
	}

	if flags.Changed("server") {
		if opts.local {
			return nil, fmt.Errorf("--server and --local are mutually exclusive")
		}
		if fc.Client.Server, err = flags.GetString("server"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("poll-interval") {
		if fc.Client.PollInterval, err = flags.GetDuration("poll-interval"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("poll-timeout") {
		if fc.Client.PollTimeout, err = flags.GetDuration("poll-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if fc.Scraper.Proxy, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// follow submits the profile and blocks until the session ends.
func follow(ctx context.Context, ctrl *analyzer.Controller, opts *analyzeOptions) error {
	s, err := ctrl.Submit(ctx, opts.profileURL, opts.maxTweets)
	if err != nil {
		return err
	}
	_, err = s.Wait(ctx)
	return err
}

// runLocal serves the analysis API on a loopback port and follows one
// analysis against it. The server stops once the analysis ends.
func runLocal(ctx context.Context, fc *fileConfig, view analyzer.View, opts *analyzeOptions) error {
	usage := &apiUsage{}
	src, err := scraper.NewClient(fc.scraperConfig(usage))
	if err != nil {
		return fmt.Errorf("create scraper: %w", err)
	}
	defer usage.log()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := server.New(fc.serverConfig(), src)

	ccfg := fc.clientConfig()
	ccfg.BaseURL = "http://" + ln.Addr().String()
	ccfg.Proxy = ""
	api, err := analyzer.NewHTTPAPI(ccfg)
	if err != nil {
		ln.Close()
		srv.Close()
		return err
	}
	ctrl := analyzer.NewController(api, view, ccfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	g.Go(func() error {
		defer cancel()
		return follow(gctx, ctrl, opts)
	})
	return g.Wait()
}
