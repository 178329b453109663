package server

import "time"

// Config controls the analysis server.
type Config struct {
	// Addr is the listen address. Default ":5000".
	Addr string

	// DefaultMaxTweets applies when a request omits max_tweets.
	DefaultMaxTweets int

	// MaxTweetsCap is the upper bound accepted for max_tweets.
	MaxTweetsCap int

	// TopN is the number of ranked tweets returned once a job completes.
	TopN int

	// JobTimeout bounds a single scrape.
	JobTimeout time.Duration

	// RequestsPerSecond and Burst limit POST /api/analyze per client IP.
	RequestsPerSecond float64
	Burst             int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (cfg *Config) defaults() {
	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}
	if cfg.DefaultMaxTweets <= 0 {
		cfg.DefaultMaxTweets = 100
	}
	if cfg.MaxTweetsCap <= 0 {
		cfg.MaxTweetsCap = 1000
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 20
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 15 * time.Minute
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 0.2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

// maxTweets maps a requested count onto [1, MaxTweetsCap].
func (cfg *Config) maxTweets(requested int) int {
	if requested <= 0 {
		return cfg.DefaultMaxTweets
	}
	return min(requested, cfg.MaxTweetsCap)
}
