package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/anatolykoptev/go-stealth/ratelimit"
	"gopkg.in/yaml.v3"

	analyzer "github.com/anatolykoptev/go-twitter-analyzer"
	"github.com/anatolykoptev/go-twitter-analyzer/scraper"
	"github.com/anatolykoptev/go-twitter-analyzer/server"
)

// configRelPath is looked up under the XDG config directories.
const configRelPath = "twitter-analyzer/config.yaml"

// Environment overrides for secrets that should stay out of config files.
const (
	envAuthToken = "TWITTER_AUTH_TOKEN"
	envCT0       = "TWITTER_CT0"
	envProxy     = "TWITTER_PROXY"
	envServer    = "TWITTER_ANALYZER_SERVER"
)

// fileConfig is the YAML configuration file. Every field is optional.
//
//	server:
//	  addr: ":5000"
//	  job_timeout: 15m
//	scraper:
//	  proxy: socks5://127.0.0.1:9050
//	  session_dir: "-"
//	client:
//	  server: http://localhost:5000
//	  poll_interval: 1s
type fileConfig struct {
	Server  serverSection  `yaml:"server"`
	Scraper scraperSection `yaml:"scraper"`
	Client  clientSection  `yaml:"client"`
}

type serverSection struct {
	Addr              string        `yaml:"addr"`
	DefaultMaxTweets  int           `yaml:"default_max_tweets"`
	MaxTweetsCap      int           `yaml:"max_tweets_cap"`
	TopN              int           `yaml:"top_n"`
	JobTimeout        time.Duration `yaml:"job_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

type scraperSection struct {
	AuthToken         string        `yaml:"auth_token"`
	CT0               string        `yaml:"ct0"`
	Proxy             string        `yaml:"proxy"`
	ProfileIndex      int           `yaml:"profile_index"`
	UserAgent         string        `yaml:"user_agent"`
	PageSize          int           `yaml:"page_size"`
	MaxEmptyPages     int           `yaml:"max_empty_pages"`
	RequestsPerWindow int           `yaml:"requests_per_window"`
	RateLimitWait     time.Duration `yaml:"rate_limit_wait"`
	SessionDir        string        `yaml:"session_dir"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
}

type clientSection struct {
	Server       string        `yaml:"server"`
	PollInterval time.Duration `yaml:"poll_interval"`
	PollTimeout  time.Duration `yaml:"poll_timeout"`
	MaxTweets    int           `yaml:"max_tweets"`
	Format       string        `yaml:"format"`
	Proxy        string        `yaml:"proxy"`
}

// loadConfig reads path, or the XDG config file when path is empty, and
// applies environment overrides. A missing default file is not an error;
// a missing explicit path is.
func loadConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		found, err := xdg.SearchConfigFile(configRelPath)
		if err == nil {
			path = found
		}
	}

	fc := &fileConfig{}
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, fc); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	fc.applyEnv(os.Getenv)
	return fc, nil
}

func (fc *fileConfig) applyEnv(getenv func(string) string) {
	if v := getenv(envAuthToken); v != "" {
		fc.Scraper.AuthToken = v
	}
	if v := getenv(envCT0); v != "" {
		fc.Scraper.CT0 = v
	}
	if v := getenv(envProxy); v != "" {
		fc.Scraper.Proxy = v
	}
	if v := getenv(envServer); v != "" {
		fc.Client.Server = v
	}
}

func (fc *fileConfig) serverConfig() server.Config {
	s := fc.Server
	return server.Config{
		Addr:              s.Addr,
		DefaultMaxTweets:  s.DefaultMaxTweets,
		MaxTweetsCap:      s.MaxTweetsCap,
		TopN:              s.TopN,
		JobTimeout:        s.JobTimeout,
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.Burst,
	}
}

// scraperConfig builds the client config; usage, if non-nil, receives
// every API call.
func (fc *fileConfig) scraperConfig(usage *apiUsage) scraper.ClientConfig {
	s := fc.Scraper
	cfg := scraper.ClientConfig{
		AuthToken:     s.AuthToken,
		CT0:           s.CT0,
		Proxy:         s.Proxy,
		ProfileIndex:  s.ProfileIndex,
		UserAgent:     s.UserAgent,
		PageSize:      s.PageSize,
		MaxEmptyPages: s.MaxEmptyPages,
		RateLimitWait: s.RateLimitWait,
		SessionDir:    s.SessionDir,
		SessionTTL:    s.SessionTTL,
	}
	if usage != nil {
		cfg.MetricsHook = usage.record
	}
	if s.RequestsPerWindow > 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
		cfg.RateLimit.RequestsPerWindow = s.RequestsPerWindow
	}
	return cfg
}

func (fc *fileConfig) clientConfig() analyzer.Config {
	c := fc.Client
	return analyzer.Config{
		BaseURL:          c.Server,
		PollInterval:     c.PollInterval,
		PollTimeout:      c.PollTimeout,
		DefaultMaxTweets: c.MaxTweets,
		Proxy:            c.Proxy,
	}
}
