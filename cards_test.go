package analyzer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCardBuilder() *CardBuilder {
	return NewCardBuilder(Config{Location: time.UTC})
}

func TestCardDefaults(t *testing.T) {
	card := testCardBuilder().Card(Tweet{})
	assert.Equal(t, "Unknown User", card.Username)
	assert.Equal(t, "No text available", card.Text)
	assert.Equal(t, "", card.Handle)
	assert.Equal(t, "", card.Date)
	assert.Zero(t, card.Replies)
	assert.Zero(t, card.Retweets)
	assert.Zero(t, card.Likes)
	assert.Equal(t, "0", card.Views)
	assert.Equal(t, "0%", card.Engagement)
	assert.Empty(t, card.URL)
}

func TestCardFormatting(t *testing.T) {
	card := testCardBuilder().Card(Tweet{
		Username:        "Some User",
		Handle:          "@someuser",
		Text:            "hello",
		Timestamp:       "2024-03-05T14:07:09.000Z",
		DisplayTime:     "Mar 5",
		Replies:         3,
		Retweets:        2,
		Likes:           10,
		Views:           1234567,
		EngagementScore: 12.345,
		URL:             "https://x.com/someuser/status/1",
	})
	assert.Equal(t, "3/5/2024, 2:07:09 PM", card.Date)
	assert.Equal(t, "1,234,567", card.Views)
	assert.Equal(t, "12.3%", card.Engagement)
	assert.Equal(t, int64(10), card.Likes)
	assert.Equal(t, "https://x.com/someuser/status/1", card.URL)
}

func TestCardDateFallback(t *testing.T) {
	b := testCardBuilder()
	assert.Equal(t, "2h", b.Card(Tweet{Timestamp: "2h", DisplayTime: "2h"}).Date)
	assert.Equal(t, "Apr 5", b.Card(Tweet{Timestamp: "not a date", DisplayTime: "Apr 5"}).Date)
	assert.Equal(t, "Apr 5", b.Card(Tweet{DisplayTime: "Apr 5"}).Date)
	assert.Equal(t, "1/2/2024, 3:04:05 AM", b.Card(Tweet{Timestamp: "2024-01-02T03:04:05"}).Date)
}

func TestCardZoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	b := NewCardBuilder(Config{Location: loc})
	assert.Equal(t, "1/1/2024, 1:30:00 AM", b.Card(Tweet{Timestamp: "2023-12-31T23:30:00Z"}).Date)
}

func TestBuildCardsPreservesOrder(t *testing.T) {
	cards := testCardBuilder().BuildCards([]Tweet{{Text: "a"}, {Text: "b"}, {Text: "c"}})
	require.Len(t, cards, 3)
	assert.Equal(t, "a", cards[0].Text)
	assert.Equal(t, "c", cards[2].Text)

	assert.Empty(t, testCardBuilder().BuildCards(nil))
}

func TestTweetLenientDecoding(t *testing.T) {
	body := `{
		"username": "u",
		"replies": "7",
		"retweets": 2.6,
		"likes": null,
		"views": "n/a",
		"engagement_score": "4.25"
	}`
	var tw Tweet
	require.NoError(t, json.Unmarshal([]byte(body), &tw))
	assert.Equal(t, Count(7), tw.Replies)
	assert.Equal(t, Count(3), tw.Retweets)
	assert.Equal(t, Count(0), tw.Likes)
	assert.Equal(t, Count(0), tw.Views)
	assert.InDelta(t, 4.25, float64(tw.EngagementScore), 1e-9)
}

func TestSnapshotDecoding(t *testing.T) {
	body := `{
		"status": "complete",
		"tweets_scraped": 50,
		"total_expected": 50,
		"estimated_time_remaining": 0,
		"top_tweets": [{"username": "a", "likes": 5}],
		"total_tweets_analyzed": 50
	}`
	var snap ProgressSnapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	assert.True(t, snap.Status.Terminal())
	require.Len(t, snap.TopTweets, 1)
	assert.Equal(t, Count(5), snap.TopTweets[0].Likes)
	assert.Equal(t, 50, snap.TotalTweetsAnalyzed)
	assert.False(t, StatusRunning.Terminal())
}
