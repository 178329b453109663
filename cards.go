package analyzer

import (
	"fmt"
	"time"

	"golang.org/x/text/message"
)

// TweetCard is the display-ready form of a Tweet.
type TweetCard struct {
	Username   string
	Handle     string
	Date       string
	Text       string
	Replies    int64
	Retweets   int64
	Likes      int64
	Views      string
	Engagement string
	URL        string
}

// timestampLayouts are tried in order when parsing ISO-8601 timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CardBuilder turns tweets into cards. It has no side effects.
type CardBuilder struct {
	layout  string
	loc     *time.Location
	printer *message.Printer
}

// NewCardBuilder creates a CardBuilder using the display settings in cfg.
func NewCardBuilder(cfg Config) *CardBuilder {
	cfg.defaults()
	return &CardBuilder{
		layout:  cfg.TimeLayout,
		loc:     cfg.Location,
		printer: message.NewPrinter(cfg.Language),
	}
}

// BuildCards maps every tweet to a card, preserving order.
func (b *CardBuilder) BuildCards(tweets []Tweet) []TweetCard {
	cards := make([]TweetCard, 0, len(tweets))
	for _, t := range tweets {
		cards = append(cards, b.Card(t))
	}
	return cards
}

// Card formats a single tweet.
func (b *CardBuilder) Card(t Tweet) TweetCard {
	username := t.Username
	if username == "" {
		username = "Unknown User"
	}
	text := t.Text
	if text == "" {
		text = "No text available"
	}
	return TweetCard{
		Username:   username,
		Handle:     t.Handle,
		Date:       b.formatDate(t.Timestamp, t.DisplayTime),
		Text:       text,
		Replies:    int64(t.Replies),
		Retweets:   int64(t.Retweets),
		Likes:      int64(t.Likes),
		Views:      b.printer.Sprintf("%d", int64(t.Views)),
		Engagement: formatEngagement(t.EngagementScore),
		URL:        t.URL,
	}
}

// formatDate renders an ISO-8601 timestamp in the configured zone, or
// returns fallback when the timestamp is empty or unparsable.
func (b *CardBuilder) formatDate(timestamp, fallback string) string {
	if timestamp == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, timestamp, b.loc); err == nil {
			return ts.In(b.loc).Format(b.layout)
		}
	}
	return fallback
}

func formatEngagement(s Score) string {
	if s == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(s))
}
