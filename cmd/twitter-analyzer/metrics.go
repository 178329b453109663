package main

import (
	"log/slog"
	"sync/atomic"
)

// apiUsage counts requests the scraper makes to X.
type apiUsage struct {
	calls       atomic.Int64
	failures    atomic.Int64
	rateLimited atomic.Int64
}

// record is installed as scraper.ClientConfig.MetricsHook.
func (u *apiUsage) record(endpoint string, success, rateLimited bool) {
	u.calls.Add(1)
	if !success {
		u.failures.Add(1)
	}
	if rateLimited {
		u.rateLimited.Add(1)
	}
	slog.Debug("x api call",
		slog.String("endpoint", endpoint),
		slog.Bool("success", success),
		slog.Bool("rate_limited", rateLimited))
}

// log writes the totals, typically once at shutdown.
func (u *apiUsage) log() {
	slog.Info("x api usage",
		slog.Int64("calls", u.calls.Load()),
		slog.Int64("failures", u.failures.Load()),
		slog.Int64("rate_limited", u.rateLimited.Load()))
}
