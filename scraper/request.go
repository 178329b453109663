package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

const maxRetries = 3

// doGET executes a GraphQL GET with jitter, per-endpoint budgets, retries,
// ct0 rotation and guest-token refresh.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, error) {
	// Anti-fingerprint jitter
	if err := c.jitter(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.backoff(attempt)); err != nil {
				return nil, err
			}
		}
		if err := c.waitForBudget(ctx, endpoint); err != nil {
			return nil, err
		}

		var (
			body  []byte
			retry bool
			err   error
		)
		if c.creds.valid() {
			body, retry, err = c.sessionAttempt(endpoint, url)
		} else {
			body, retry, err = c.guestAttempt(ctx, endpoint, url)
		}
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		slog.Debug("request failed, retrying", slog.String("endpoint", endpoint), slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return nil, fmt.Errorf("%s failed after %d attempts: %w", endpoint, maxRetries, lastErr)
}

// waitForBudget blocks until the endpoint has request budget left, or
// fails with ErrRateLimited when that would exceed RateLimitWait.
func (c *Client) waitForBudget(ctx context.Context, endpoint string) error {
	deadline := time.Now().Add(c.cfg.RateLimitWait)
	for n := 1; !c.limiter.Allow(endpoint); n++ {
		wait := time.Until(c.limiter.AvailableAt(endpoint))
		if wait <= 0 {
			wait = max(c.backoff(n), 10*time.Millisecond)
		}
		if time.Now().Add(wait).After(deadline) {
			return fmt.Errorf("%s: %w (available in %s)", endpoint, ErrRateLimited, wait.Round(time.Second))
		}
		slog.Info("endpoint budget exhausted, waiting", slog.String("endpoint", endpoint), slog.Duration("wait", wait))
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

// sessionAttempt performs one cookie-authenticated request. retry reports
// whether another attempt may succeed.
func (c *Client) sessionAttempt(endpoint, url string) (body []byte, retry bool, err error) {
	// Proactive ct0 rotation
	if c.creds.ct0Age() > ct0MaxAge {
		c.creds.rotate()
		c.persistSession()
		slog.Info("ct0 rotated (proactive)")
	}

	authToken, ct0 := c.creds.snapshot()
	body, respHdrs, status, err := c.http.DoWithHeaderOrder("GET", url, sessionHeaders(authToken, ct0, c.userAgent), nil, headerOrder)
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		return nil, true, err
	}
	if status == 429 {
		c.recordAPICall(endpoint, false, true)
		c.limiter.MarkRateLimited(endpoint, parseRateLimitReset(respHdrs["x-rate-limit-reset"]))
		return nil, true, fmt.Errorf("%s: %w (HTTP 429)", endpoint, ErrRateLimited)
	}

	errClass := classifyError(body)
	switch {
	case status == 200 && errClass == errNone,
		status == 200 && errClass == errInternal && hasResponseData(body):
		if newCT0 := extractCT0FromHeaders(respHdrs); newCT0 != "" && newCT0 != ct0 {
			c.creds.setCT0(newCT0)
			c.persistSession()
		}
		c.recordAPICall(endpoint, true, false)
		return body, false, nil

	case errClass == errCSRF:
		slog.Warn("CSRF error 353, rotating ct0", slog.String("endpoint", endpoint))
		c.creds.rotate()
		c.persistSession()
		c.recordAPICall(endpoint, false, false)
		return nil, true, fmt.Errorf("%s: csrf token rejected (353)", endpoint)

	case errClass == errInternal:
		c.recordAPICall(endpoint, false, false)
		return nil, true, fmt.Errorf("%s: twitter internal error (131)", endpoint)

	case errClass == errBanned:
		c.recordAPICall(endpoint, false, true)
		c.limiter.MarkRateLimited(endpoint, time.Now().Add(15*time.Minute))
		return nil, true, fmt.Errorf("%s: %w (code 88)", endpoint, ErrRateLimited)

	case errClass != errNone:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("session rejected", slog.String("endpoint", endpoint), slog.String("class", errClass.String()))
		return nil, false, fmt.Errorf("%s: session %s: %w", endpoint, errClass, ErrUnauthorized)

	case status == 401 || status == 403:
		c.recordAPICall(endpoint, false, false)
		return nil, false, fmt.Errorf("%s HTTP %d: %w", endpoint, status, ErrUnauthorized)

	default:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("doGET non-200", slog.String("endpoint", endpoint), slog.Int("status", status), slog.String("body", truncateBytes(body, 500)))
		return nil, status >= 500, fmt.Errorf("%s HTTP %d: %s", endpoint, status, truncateBytes(body, 200))
	}
}

// guestAttempt performs one request with a guest token. A rejected or
// rate-limited token is dropped so the next attempt activates a new one.
func (c *Client) guestAttempt(ctx context.Context, endpoint, url string) (body []byte, retry bool, err error) {
	gt, err := c.guestTokenFor(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("guest token unavailable for %s: %w", endpoint, err)
	}

	body, respHdrs, status, err := c.http.DoWithHeaderOrder("GET", url, guestHeaders(gt, c.userAgent), nil, headerOrder)
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		return nil, true, err
	}

	errClass := classifyError(body)
	switch {
	case status == 429 || errClass == errBanned:
		c.recordAPICall(endpoint, false, true)
		c.markGuestTokenRateLimited(parseRateLimitReset(respHdrs["x-rate-limit-reset"]))
		return nil, true, fmt.Errorf("%s: guest token %w", endpoint, ErrRateLimited)

	case status == 401 || status == 403 || errClass == errAuthExpired:
		slog.Warn("guest token rejected, reacquiring", slog.String("endpoint", endpoint), slog.Int("status", status))
		c.setGuestToken("")
		c.recordAPICall(endpoint, false, false)
		return nil, true, fmt.Errorf("%s (guest) HTTP %d: %w", endpoint, status, ErrUnauthorized)

	case status == 200 && (errClass == errNone || hasResponseData(body)):
		c.recordAPICall(endpoint, true, false)
		return body, false, nil

	case errClass == errInternal:
		c.recordAPICall(endpoint, false, false)
		return nil, true, fmt.Errorf("%s: twitter internal error (131)", endpoint)

	default:
		c.recordAPICall(endpoint, false, false)
		return nil, status >= 500, fmt.Errorf("%s (guest) HTTP %d: %s", endpoint, status, truncateBytes(body, 200))
	}
}

// graphqlURL builds the full URL with JSON-encoded variables and features.
func graphqlURL(base string, variables, features map[string]any) string {
	v, _ := json.Marshal(variables)
	f, _ := json.Marshal(features)
	q := url.Values{}
	q.Set("variables", string(v))
	q.Set("features", string(f))
	return base + "?" + q.Encode()
}
