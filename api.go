package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

const (
	analyzePath  = "/api/analyze"
	progressPath = "/api/progress"
)

// API is the remote analysis service.
type API interface {
	// StartAnalysis launches a scrape job. Failures are *RequestError.
	StartAnalysis(ctx context.Context, req AnalysisRequest) error

	// Progress fetches the current job snapshot. Failures are *PollError.
	Progress(ctx context.Context) (*ProgressSnapshot, error)
}

// Doer executes a single HTTP request with a fixed header order.
// *stealth.BrowserClient satisfies it.
type Doer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// HTTPAPI talks to the analysis server over HTTP.
type HTTPAPI struct {
	doer      Doer
	baseURL   string
	userAgent string
}

// NewHTTPAPI creates an HTTPAPI backed by a stealth browser client.
func NewHTTPAPI(cfg Config) (*HTTPAPI, error) {
	cfg.defaults()

	var opts []stealth.ClientOption
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
	}
	opts = append(opts, stealth.WithHeaderOrder(apiHeaderOrder))
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	return NewHTTPAPIWithDoer(cfg.BaseURL, bc, cfg.UserAgent), nil
}

// NewHTTPAPIWithDoer creates an HTTPAPI that sends requests through d.
func NewHTTPAPIWithDoer(baseURL string, d Doer, userAgent string) *HTTPAPI {
	return &HTTPAPI{
		doer:      d,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// StartAnalysis POSTs the request to /api/analyze.
func (a *HTTPAPI) StartAnalysis(ctx context.Context, req AnalysisRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return &RequestError{Err: err}
	}

	body, status, err := a.do(ctx, "POST", analyzePath, bytes.NewReader(payload))
	if err != nil {
		return &RequestError{Err: err}
	}
	if status < 200 || status > 299 {
		return &RequestError{Status: status, Message: errorMessage(body)}
	}
	return nil
}

// Progress GETs /api/progress.
func (a *HTTPAPI) Progress(ctx context.Context) (*ProgressSnapshot, error) {
	body, status, err := a.do(ctx, "GET", progressPath, nil)
	if err != nil {
		return nil, &PollError{Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &PollError{Status: status, Err: fmt.Errorf("%s", truncateBytes(body, 200))}
	}
	var snap ProgressSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, &PollError{Err: fmt.Errorf("decode progress: %w", err)}
	}
	return &snap, nil
}

// do sends one request. The underlying client has no context support, so
// cancellation is checked on both sides of the call.
func (a *HTTPAPI) do(ctx context.Context, method, path string, body io.Reader) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	respBody, _, status, err := a.doer.DoWithHeaderOrder(method, a.baseURL+path, apiHeaders(a.userAgent), body, apiHeaderOrder)
	if err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return respBody, status, nil
}

// errorMessage extracts the "error" field of a JSON error payload.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Error
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
