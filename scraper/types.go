package scraper

import "time"

// User is the subset of a Twitter/X profile the analyzer needs.
type User struct {
	ID          string
	Handle      string
	DisplayName string
	Followers   int
	TweetCount  int
	CreatedAt   time.Time
	Protected   bool
	IsVerified  bool
}

// Tweet is a single timeline entry with its public engagement counters.
type Tweet struct {
	ID         string
	AuthorID   string
	AuthorName string
	Handle     string
	Text       string
	CreatedAt  time.Time
	Replies    int64
	Retweets   int64
	Likes      int64
	Quotes     int64
	Bookmarks  int64
	Views      int64
	IsRetweet  bool
	IsPinned   bool
}

// URL returns the canonical x.com status link.
func (t *Tweet) URL() string {
	if t.Handle == "" || t.ID == "" {
		return ""
	}
	return "https://x.com/" + t.Handle + "/status/" + t.ID
}

// Page is one UserTweets response.
type Page struct {
	Tweets []*Tweet
	// Cursor is the bottom cursor; empty when the timeline is exhausted.
	Cursor string
}

// ProgressFunc receives the number of unique tweets collected so far and
// the target count.
type ProgressFunc func(scraped, expected int)
