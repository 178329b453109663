package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

const guestActivateAttempts = 3

// getGuestToken activates a new guest token.
func (c *Client) getGuestToken() (string, error) {
	headers := baseHeaders(c.userAgent)
	body, _, status, err := c.http.DoWithHeaderOrder("POST", apiBase+"/1.1/guest/activate.json", headers, nil, headerOrder)
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("guest token: HTTP %d: %s", status, truncateBytes(body, 200))
	}
	var resp struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse guest token: %w", err)
	}
	if resp.GuestToken == "" {
		return "", errors.New("empty guest token in response")
	}
	return resp.GuestToken, nil
}

// acquireGuestToken fetches a fresh guest token with exponential backoff.
func (c *Client) acquireGuestToken(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := range guestActivateAttempts {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.guestBackoff.Duration(attempt)); err != nil {
				return "", err
			}
		}
		token, err := c.getGuestToken()
		if err == nil {
			c.recordAPICall(opGuestActivate, true, false)
			return token, nil
		}
		c.recordAPICall(opGuestActivate, false, false)
		lastErr = err
		slog.Warn("guest token acquisition failed", slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return "", fmt.Errorf("acquire guest token after %d attempts: %w", guestActivateAttempts, lastErr)
}

// guestTokenFor returns a usable guest token, activating one when the
// cached token is missing or rate-limited.
func (c *Client) guestTokenFor(ctx context.Context) (string, error) {
	if gt, ok := c.getGuestTokenCached(); ok {
		return gt, nil
	}
	token, err := c.acquireGuestToken(ctx)
	if err != nil {
		return "", err
	}
	c.setGuestToken(token)
	slog.Debug("guest token acquired")
	return token, nil
}
