package scraper

import (
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// ClientConfig holds all configuration for the scraper client.
type ClientConfig struct {
	// AuthToken and CT0 are the cookies of a logged-in web session.
	// When AuthToken is empty the client falls back to a guest token.
	AuthToken string
	CT0       string

	// Proxy is an optional HTTP or SOCKS5 proxy URL.
	Proxy string

	// ProfileIndex selects one of stealth.BuiltinProfiles for the TLS
	// fingerprint and User-Agent. Negative keeps the library default.
	ProfileIndex int

	// UserAgent overrides the profile User-Agent.
	UserAgent string

	// PageSize is the UserTweets page size requested from the API.
	PageSize int

	// MaxEmptyPages stops pagination after this many consecutive pages
	// that yielded no new tweets.
	MaxEmptyPages int

	// RateLimit configures per-endpoint request budgets.
	RateLimit ratelimit.Config

	// RateLimitWait bounds how long a request waits for an endpoint budget
	// before failing with ErrRateLimited.
	RateLimitWait time.Duration

	// SessionDir is where rotated session cookies are persisted.
	// Default: $XDG_STATE_HOME/twitter-analyzer/sessions. "-" disables it.
	SessionDir string

	// SessionTTL controls how long saved sessions are considered valid.
	SessionTTL time.Duration

	// MetricsHook is called on each API request for external metrics collection.
	MetricsHook func(endpoint string, success, rateLimited bool)
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxEmptyPages <= 0 {
		cfg.MaxEmptyPages = 3
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
	if cfg.RateLimitWait == 0 {
		cfg.RateLimitWait = 5 * time.Minute
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
}
