package analyzer

import (
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/text/language"
)

// DefaultMaxTweets is used when the submitted tweet limit is not positive.
const DefaultMaxTweets = 100

// Config holds all configuration for the analysis controller and its transport.
type Config struct {
	// BaseURL is the analysis server root, e.g. http://localhost:5000.
	BaseURL string

	// PollInterval is the fixed cadence of progress polls.
	PollInterval time.Duration

	// PollTimeout bounds a whole polling session. Zero means the default;
	// a negative value disables the bound.
	PollTimeout time.Duration

	// PollBackoff delays the next poll after consecutive poll failures.
	PollBackoff stealth.BackoffConfig

	// DefaultMaxTweets replaces non-positive limits at submit time.
	DefaultMaxTweets int

	// TimeLayout formats tweet timestamps for display.
	TimeLayout string

	// Location is the zone timestamps are displayed in. Default: time.Local.
	Location *time.Location

	// Language selects digit grouping for view counts.
	Language language.Tag

	// UserAgent is sent with every API request.
	UserAgent string

	// Proxy routes API requests through an HTTP or SOCKS proxy.
	Proxy string
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *Config) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5000"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = 30 * time.Minute
	}
	if cfg.PollBackoff.InitialWait == 0 {
		cfg.PollBackoff = stealth.BackoffConfig{
			InitialWait: time.Second,
			MaxWait:     30 * time.Second,
			Multiplier:  2.0,
			JitterPct:   0.3,
		}
	}
	if cfg.DefaultMaxTweets <= 0 {
		cfg.DefaultMaxTweets = DefaultMaxTweets
	}
	if cfg.TimeLayout == "" {
		cfg.TimeLayout = "1/2/2006, 3:04:05 PM"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Language == language.Und {
		cfg.Language = language.English
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
}
