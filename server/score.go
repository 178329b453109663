package server

import (
	"cmp"
	"math"
	"slices"
	"time"

	analyzer "github.com/anatolykoptev/go-twitter-analyzer"
	"github.com/anatolykoptev/go-twitter-analyzer/scraper"
)

// Score ranks a tweet: replies weigh 3, retweets 2, likes 1 and bookmarks
// 1.5, scaled by 1+views/10000 when views are known. Rounds half to even.
func Score(t *scraper.Tweet) float64 {
	base := 3*float64(t.Replies) + 2*float64(t.Retweets) + float64(t.Likes) + 1.5*float64(t.Bookmarks)
	if t.Views > 0 {
		base *= 1 + float64(t.Views)/10000
	}
	return math.RoundToEven(base)
}

// EngagementRate is the percentage of viewers that interacted, or 0
// without a view count.
func EngagementRate(t *scraper.Tweet) float64 {
	if t.Views <= 0 {
		return 0
	}
	interactions := t.Replies + t.Retweets + t.Likes + t.Quotes + t.Bookmarks
	return float64(interactions) / float64(t.Views) * 100
}

// Rank orders tweets by Score, highest first, and returns the top n in
// wire form. Ties keep timeline order.
func Rank(tweets []*scraper.Tweet, n int) []analyzer.Tweet {
	type scored struct {
		tweet *scraper.Tweet
		score float64
	}
	ranked := make([]scored, 0, len(tweets))
	for _, t := range tweets {
		ranked = append(ranked, scored{tweet: t, score: Score(t)})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]analyzer.Tweet, 0, min(n, len(ranked)))
	for _, r := range ranked[:min(n, len(ranked))] {
		out = append(out, wireTweet(r.tweet))
	}
	return out
}

func wireTweet(t *scraper.Tweet) analyzer.Tweet {
	w := analyzer.Tweet{
		Username:        t.AuthorName,
		Text:            t.Text,
		Replies:         analyzer.Count(t.Replies),
		Retweets:        analyzer.Count(t.Retweets),
		Likes:           analyzer.Count(t.Likes),
		Views:           analyzer.Count(t.Views),
		EngagementScore: analyzer.Score(math.Round(EngagementRate(t)*100) / 100),
		URL:             t.URL(),
	}
	if t.Handle != "" {
		w.Handle = "@" + t.Handle
	}
	if !t.CreatedAt.IsZero() {
		w.Timestamp = t.CreatedAt.UTC().Format(time.RFC3339)
		w.DisplayTime = t.CreatedAt.UTC().Format("Jan 2")
	}
	return w
}
