package scraper

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const twitterTimeLayout = "Mon Jan 02 15:04:05 +0000 2006"

// parseUserByScreenName parses the UserByScreenName GraphQL response.
func parseUserByScreenName(body []byte) (*User, error) {
	var raw struct {
		Data struct {
			User struct {
				Result *userResult `json:"result"`
			} `json:"user"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal UserByScreenName: %w", err)
	}
	if raw.Data.User.Result == nil {
		if len(raw.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, raw.Errors[0].Message)
		}
		return nil, ErrUserNotFound
	}
	return parseUserResult(*raw.Data.User.Result)
}

// parseTweetTimeline parses a UserTweets response in either the timeline
// or timeline_v2 shape and returns the page with its bottom cursor.
func parseTweetTimeline(body []byte, defaultAuthorID string) (*Page, error) {
	var raw struct {
		Data struct {
			User struct {
				Result struct {
					TypeName string `json:"__typename"`
					Timeline struct {
						Timeline timelineObj `json:"timeline"`
					} `json:"timeline"`
					TimelineV2 struct {
						Timeline timelineObj `json:"timeline"`
					} `json:"timeline_v2"`
				} `json:"result"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal tweet timeline: %w", err)
	}
	if raw.Data.User.Result.TypeName == "UserUnavailable" {
		return nil, ErrUserSuspended
	}
	tl := raw.Data.User.Result.Timeline.Timeline
	if len(tl.Instructions) == 0 {
		tl = raw.Data.User.Result.TimelineV2.Timeline
	}
	return extractTweetsFromTimeline(tl, defaultAuthorID), nil
}

// --- Timeline types ---

type timelineObj struct {
	Instructions []timelineInstruction `json:"instructions"`
}

type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
	Entry   *timelineEntry  `json:"entry"`
}

type timelineEntry struct {
	EntryID   string          `json:"entryId"`
	SortIndex string          `json:"sortIndex"`
	Content   timelineContent `json:"content"`
}

type timelineContent struct {
	EntryType   string          `json:"entryType"`
	TypeName    string          `json:"__typename"`
	ItemContent json.RawMessage `json:"itemContent"`
	Items       []struct {
		EntryID string `json:"entryId"`
		Item    struct {
			ItemContent json.RawMessage `json:"itemContent"`
		} `json:"item"`
	} `json:"items"`
	Value      string `json:"value"`
	CursorType string `json:"cursorType"`
}

func (c timelineContent) isCursor() bool {
	return c.EntryType == "TimelineTimelineCursor" || c.TypeName == "TimelineTimelineCursor"
}

type userResult struct {
	TypeName string `json:"__typename"`
	Reason   string `json:"reason"`
	RestID   string `json:"rest_id"`
	Core     struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
		CreatedAt  string `json:"created_at"`
	} `json:"core"`
	Legacy struct {
		Name           string `json:"name"`
		ScreenName     string `json:"screen_name"`
		FollowersCount int    `json:"followers_count"`
		StatusesCount  int    `json:"statuses_count"`
		CreatedAt      string `json:"created_at"`
		Verified       bool   `json:"verified"`
		Protected      bool   `json:"protected"`
	} `json:"legacy"`
	Privacy struct {
		Protected bool `json:"protected"`
	} `json:"privacy"`
	IsBlueVerified bool `json:"is_blue_verified"`
}

func (r userResult) name() string {
	return firstNonEmpty(r.Core.Name, r.Legacy.Name)
}

func (r userResult) screenName() string {
	return firstNonEmpty(r.Core.ScreenName, r.Legacy.ScreenName)
}

type tweetResult struct {
	TypeName string       `json:"__typename"`
	RestID   string       `json:"rest_id"`
	Tweet    *tweetResult `json:"tweet"`
	Core     struct {
		UserResults struct {
			Result userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	NoteTweet struct {
		NoteTweetResults struct {
			Result struct {
				Text string `json:"text"`
			} `json:"result"`
		} `json:"note_tweet_results"`
	} `json:"note_tweet"`
	Legacy struct {
		FullText              string          `json:"full_text"`
		CreatedAt             string          `json:"created_at"`
		FavoriteCount         int64           `json:"favorite_count"`
		RetweetCount          int64           `json:"retweet_count"`
		ReplyCount            int64           `json:"reply_count"`
		QuoteCount            int64           `json:"quote_count"`
		BookmarkCount         int64           `json:"bookmark_count"`
		UserIDStr             string          `json:"user_id_str"`
		RetweetedStatusResult json.RawMessage `json:"retweeted_status_result"`
	} `json:"legacy"`
	Views struct {
		Count string `json:"count"`
	} `json:"views"`
}

// unwrap returns the inner tweet of a TweetWithVisibilityResults wrapper.
func (r tweetResult) unwrap() tweetResult {
	if r.TypeName == "TweetWithVisibilityResults" && r.Tweet != nil {
		return *r.Tweet
	}
	return r
}

// --- Extraction helpers ---

func extractTweetsFromTimeline(tl timelineObj, defaultAuthorID string) *Page {
	page := &Page{}
	for _, instruction := range tl.Instructions {
		entries := instruction.Entries
		if instruction.Entry != nil {
			entries = append(entries, *instruction.Entry)
		}
		pinned := instruction.Type == "TimelinePinEntry"
		for _, entry := range entries {
			if entry.Content.isCursor() {
				if entry.Content.CursorType == "Bottom" || strings.Contains(entry.EntryID, "cursor-bottom") {
					page.Cursor = entry.Content.Value
				}
				continue
			}
			contents := make([]json.RawMessage, 0, 1+len(entry.Content.Items))
			if entry.Content.ItemContent != nil {
				contents = append(contents, entry.Content.ItemContent)
			}
			for _, it := range entry.Content.Items {
				if it.Item.ItemContent != nil {
					contents = append(contents, it.Item.ItemContent)
				}
			}
			for _, raw := range contents {
				t, ok := parseTimelineItem(raw, defaultAuthorID)
				if !ok {
					continue
				}
				t.IsPinned = pinned
				page.Tweets = append(page.Tweets, t)
			}
		}
	}
	return page
}

func parseTimelineItem(raw json.RawMessage, defaultAuthorID string) (*Tweet, bool) {
	var item struct {
		TypeName     string `json:"__typename"`
		ItemType     string `json:"itemType"`
		TweetResults struct {
			Result *tweetResult `json:"result"`
		} `json:"tweet_results"`
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, false
	}
	if item.TypeName != "TimelineTweet" && item.ItemType != "TimelineTweet" {
		return nil, false
	}
	if item.TweetResults.Result == nil {
		return nil, false
	}
	t, err := parseTweetResult(item.TweetResults.Result.unwrap(), defaultAuthorID)
	if err != nil {
		slog.Debug("skip tweet parse error", slog.Any("error", err))
		return nil, false
	}
	return t, true
}

func parseUserResult(r userResult) (*User, error) {
	if r.TypeName == "UserUnavailable" {
		if strings.EqualFold(r.Reason, "Suspended") {
			return nil, ErrUserSuspended
		}
		return nil, fmt.Errorf("%w: unavailable (%s)", ErrUserNotFound, r.Reason)
	}
	if r.RestID == "" {
		return nil, fmt.Errorf("%w: empty rest_id (typename=%s)", ErrUserNotFound, r.TypeName)
	}
	return &User{
		ID:          r.RestID,
		Handle:      r.screenName(),
		DisplayName: r.name(),
		Followers:   r.Legacy.FollowersCount,
		TweetCount:  r.Legacy.StatusesCount,
		CreatedAt:   parseTwitterTime(firstNonEmpty(r.Core.CreatedAt, r.Legacy.CreatedAt)),
		Protected:   r.Legacy.Protected || r.Privacy.Protected,
		IsVerified:  r.Legacy.Verified || r.IsBlueVerified,
	}, nil
}

func parseTweetResult(r tweetResult, defaultAuthorID string) (*Tweet, error) {
	if r.RestID == "" {
		return nil, fmt.Errorf("empty tweet rest_id (typename=%s)", r.TypeName)
	}

	author := r.Core.UserResults.Result
	authorID := firstNonEmpty(r.Legacy.UserIDStr, author.RestID, defaultAuthorID)

	text := r.Legacy.FullText
	if long := r.NoteTweet.NoteTweetResults.Result.Text; long != "" {
		text = long
	}

	return &Tweet{
		ID:         r.RestID,
		AuthorID:   authorID,
		AuthorName: author.name(),
		Handle:     author.screenName(),
		Text:       text,
		CreatedAt:  parseTwitterTime(r.Legacy.CreatedAt),
		Replies:    r.Legacy.ReplyCount,
		Retweets:   r.Legacy.RetweetCount,
		Likes:      r.Legacy.FavoriteCount,
		Quotes:     r.Legacy.QuoteCount,
		Bookmarks:  r.Legacy.BookmarkCount,
		Views:      ParseCount(r.Views.Count),
		IsRetweet:  len(r.Legacy.RetweetedStatusResult) > 0 && string(r.Legacy.RetweetedStatusResult) != "null",
	}, nil
}

func parseTwitterTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(twitterTimeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
