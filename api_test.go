package analyzer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doerCall struct {
	method  string
	url     string
	headers map[string]string
	body    string
}

type fakeDoer struct {
	mu     sync.Mutex
	calls  []doerCall
	status int
	body   string
	err    error
}

func (d *fakeDoer) DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, _ []string) ([]byte, map[string]string, int, error) {
	call := doerCall{method: method, url: url, headers: headers}
	if body != nil {
		b, _ := io.ReadAll(body)
		call.body = string(b)
	}
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
	if d.err != nil {
		return nil, nil, 0, d.err
	}
	return []byte(d.body), map[string]string{}, d.status, nil
}

func TestStartAnalysisRequestShape(t *testing.T) {
	d := &fakeDoer{status: 200, body: `{"message":"started"}`}
	api := NewHTTPAPIWithDoer("http://localhost:5000/", d, "")

	err := api.StartAnalysis(context.Background(), AnalysisRequest{ProfileURL: "https://x.com/someuser", MaxTweets: 50})
	require.NoError(t, err)

	require.Len(t, d.calls, 1)
	call := d.calls[0]
	assert.Equal(t, "POST", call.method)
	assert.Equal(t, "http://localhost:5000/api/analyze", call.url)
	assert.JSONEq(t, `{"profile_url":"https://x.com/someuser","max_tweets":50}`, call.body)
	assert.Equal(t, "application/json", call.headers["content-type"])
	assert.Equal(t, defaultUserAgent, call.headers["user-agent"])
}

func TestStartAnalysisErrors(t *testing.T) {
	tests := []struct {
		name    string
		doer    *fakeDoer
		status  int
		message string
		user    string
	}{
		{"server message", &fakeDoer{status: 409, body: `{"error":"Already scraping tweets. Please wait."}`}, 409, "Already scraping tweets. Please wait.", "Already scraping tweets. Please wait."},
		{"no message", &fakeDoer{status: 500, body: `internal`}, 500, "", msgStartRejected},
		{"transport", &fakeDoer{err: errors.New("connection refused")}, 0, "", msgStartFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewHTTPAPIWithDoer("http://srv", tt.doer, "")
			err := api.StartAnalysis(context.Background(), AnalysisRequest{ProfileURL: "https://x.com/a", MaxTweets: 1})
			var re *RequestError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.status, re.Status)
			assert.Equal(t, tt.message, re.Message)
			assert.Equal(t, tt.user, re.UserMessage())
		})
	}
}

func TestProgress(t *testing.T) {
	d := &fakeDoer{status: 200, body: `{"status":"running","tweets_scraped":5,"total_expected":10,"estimated_time_remaining":12}`}
	api := NewHTTPAPIWithDoer("http://srv", d, "")

	snap, err := api.Progress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.Equal(t, 5, snap.TweetsScraped)
	assert.Equal(t, 12, snap.EstimatedTimeRemaining)
	assert.Equal(t, "GET", d.calls[0].method)
	assert.Equal(t, "http://srv/api/progress", d.calls[0].url)
}

func TestProgressErrors(t *testing.T) {
	for name, d := range map[string]*fakeDoer{
		"status":    {status: 502, body: "bad gateway"},
		"bad json":  {status: 200, body: "{"},
		"transport": {err: errors.New("timeout")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewHTTPAPIWithDoer("http://srv", d, "").Progress(context.Background())
			var pe *PollError
			assert.True(t, errors.As(err, &pe), "expected PollError, got %v", err)
		})
	}
}

func TestCancelledContextSkipsRequest(t *testing.T) {
	d := &fakeDoer{status: 200, body: `{}`}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewHTTPAPIWithDoer("http://srv", d, "").StartAnalysis(ctx, AnalysisRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.calls)
}
