package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Doer performs one HTTP exchange with a fixed header order.
// *stealth.BrowserClient satisfies it.
type Doer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Client scrapes public profile timelines through the web GraphQL API.
type Client struct {
	http       Doer
	limiter    *ratelimit.Limiter
	cfg        ClientConfig
	creds      *credentials
	userAgent  string
	sessionDir string

	jitter       func(context.Context) error
	backoff      func(attempt int) time.Duration
	guestBackoff stealth.BackoffConfig

	mu                sync.Mutex
	guestToken        string
	guestLimitedUntil time.Time
}

// NewClient creates a scraper backed by a stealth browser client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()

	ua := cfg.UserAgent
	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(headerOrder),
	}
	if cfg.ProfileIndex >= 0 && len(stealth.BuiltinProfiles) > 0 {
		p := stealth.BuiltinProfiles[cfg.ProfileIndex%len(stealth.BuiltinProfiles)]
		opts = append(opts, stealth.WithProfile(p.TLSProfile))
		if ua == "" {
			ua = p.UserAgent
		}
	}
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}

	c := newClient(cfg, bc, ua)
	attrs := []any{slog.String("mode", c.authMode())}
	if cfg.Proxy != "" {
		attrs = append(attrs, slog.String("proxy", stealth.MaskProxy(cfg.Proxy)))
	}
	slog.Info("scraper client ready", attrs...)
	return c, nil
}

func newClient(cfg ClientConfig, d Doer, userAgent string) *Client {
	cfg.defaults()
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		http:       d,
		limiter:    ratelimit.NewLimiter(cfg.RateLimit),
		cfg:        cfg,
		creds:      resolveCredentials(cfg),
		userAgent:  userAgent,
		sessionDir: sessionDir(cfg.SessionDir),
		jitter:     stealth.DefaultJitter.Sleep,
		backoff:    stealth.DefaultBackoff.Duration,
		guestBackoff: stealth.BackoffConfig{
			InitialWait: 2 * time.Second,
			MaxWait:     60 * time.Second,
			Multiplier:  2.0,
			JitterPct:   0.3,
		},
	}
}

func (c *Client) authMode() string {
	if c.creds.valid() {
		return "session"
	}
	return "guest"
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}

// persistSession saves the current cookies; failures are logged only.
func (c *Client) persistSession() {
	authToken, ct0 := c.creds.snapshot()
	if err := saveSession(c.sessionDir, authToken, ct0); err != nil {
		slog.Warn("save session failed", slog.Any("error", err))
	}
}

// setGuestToken stores a fresh guest token.
func (c *Client) setGuestToken(token string) {
	c.mu.Lock()
	c.guestToken = token
	c.guestLimitedUntil = time.Time{}
	c.mu.Unlock()
}

// markGuestTokenRateLimited marks the guest token as rate-limited.
func (c *Client) markGuestTokenRateLimited(until time.Time) {
	c.mu.Lock()
	c.guestLimitedUntil = until
	c.mu.Unlock()
}

// getGuestTokenCached returns the current guest token and whether it is usable.
func (c *Client) getGuestTokenCached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.guestToken == "" || time.Now().Before(c.guestLimitedUntil) {
		return "", false
	}
	return c.guestToken, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
