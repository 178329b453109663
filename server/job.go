package server

import (
	"math"
	"sync"
	"time"

	analyzer "github.com/anatolykoptev/go-twitter-analyzer"
)

// tracker holds the state of the single analysis job. All methods are
// safe for concurrent use.
type tracker struct {
	mu  sync.Mutex
	now func() time.Time

	status   analyzer.Status
	handle   string
	scraped  int
	expected int
	started  time.Time
	top      []analyzer.Tweet
	analyzed int
	errMsg   string
}

func newTracker() *tracker {
	return &tracker{now: time.Now, status: analyzer.StatusIdle}
}

// begin resets the state for a new job. It reports false when a job is
// already running.
func (t *tracker) begin(handle string, expected int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == analyzer.StatusRunning {
		return false
	}
	t.status = analyzer.StatusRunning
	t.handle = handle
	t.scraped = 0
	t.expected = expected
	t.started = t.now()
	t.top = nil
	t.analyzed = 0
	t.errMsg = ""
	return true
}

func (t *tracker) running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status == analyzer.StatusRunning
}

// progress matches scraper.ProgressFunc.
func (t *tracker) progress(scraped, expected int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != analyzer.StatusRunning {
		return
	}
	t.scraped = scraped
	if expected > 0 {
		t.expected = expected
	}
}

func (t *tracker) complete(top []analyzer.Tweet, analyzed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = analyzer.StatusComplete
	t.top = top
	t.analyzed = analyzed
	t.scraped = analyzed
	t.expected = analyzed
}

func (t *tracker) fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = analyzer.StatusError
	t.errMsg = msg
}

func (t *tracker) snapshot() analyzer.ProgressSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := analyzer.ProgressSnapshot{
		Status:        t.status,
		TweetsScraped: t.scraped,
		TotalExpected: t.expected,
	}
	switch t.status {
	case analyzer.StatusRunning:
		snap.EstimatedTimeRemaining = t.eta()
	case analyzer.StatusComplete:
		snap.TopTweets = t.top
		snap.TotalTweetsAnalyzed = t.analyzed
	case analyzer.StatusError:
		snap.Error = t.errMsg
	}
	return snap
}

// eta extrapolates the average time per scraped tweet over the remainder.
// Callers hold t.mu.
func (t *tracker) eta() int {
	if t.scraped <= 0 || t.expected <= t.scraped {
		return 0
	}
	perTweet := t.now().Sub(t.started).Seconds() / float64(t.scraped)
	return int(math.Round(perTweet * float64(t.expected-t.scraped)))
}
