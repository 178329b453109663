package analyzer

import (
	"bytes"
	"math"
	"strconv"
)

// Status is the lifecycle state reported by the progress endpoint.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Terminal reports whether polling should stop on this status.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// AnalysisRequest is the body of POST /api/analyze.
type AnalysisRequest struct {
	ProfileURL string `json:"profile_url"`
	MaxTweets  int    `json:"max_tweets"`
}

// ProgressSnapshot is the payload of GET /api/progress.
type ProgressSnapshot struct {
	Status                 Status  `json:"status"`
	TweetsScraped          int     `json:"tweets_scraped"`
	TotalExpected          int     `json:"total_expected"`
	EstimatedTimeRemaining int     `json:"estimated_time_remaining"`
	TopTweets              []Tweet `json:"top_tweets,omitempty"`
	TotalTweetsAnalyzed    int     `json:"total_tweets_analyzed,omitempty"`
	Error                  string  `json:"error,omitempty"`
}

// Tweet is a scored tweet as returned inside a completed snapshot.
// Every field is optional; missing counts decode as zero.
type Tweet struct {
	Username        string `json:"username,omitempty"`
	Handle          string `json:"handle,omitempty"`
	Text            string `json:"text,omitempty"`
	Timestamp       string `json:"timestamp,omitempty"`
	DisplayTime     string `json:"display_time,omitempty"`
	Replies         Count  `json:"replies"`
	Retweets        Count  `json:"retweets"`
	Likes           Count  `json:"likes"`
	Views           Count  `json:"views"`
	EngagementScore Score  `json:"engagement_score"`
	URL             string `json:"url,omitempty"`
}

// Count is a non-negative statistic that tolerates numbers, numeric strings,
// floats and null on the wire.
type Count int64

// UnmarshalJSON never fails: unparsable values become zero.
func (c *Count) UnmarshalJSON(b []byte) error {
	f, ok := lenientNumber(b)
	if !ok || f < 0 {
		*c = 0
		return nil
	}
	*c = Count(math.Round(f))
	return nil
}

// Score is a percentage computed server-side.
type Score float64

// UnmarshalJSON never fails: unparsable values become zero.
func (s *Score) UnmarshalJSON(b []byte) error {
	f, ok := lenientNumber(b)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		*s = 0
		return nil
	}
	*s = Score(f)
	return nil
}

func lenientNumber(b []byte) (float64, bool) {
	b = bytes.TrimSpace(b)
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
