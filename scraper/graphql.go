package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// GetUserByScreenName fetches a user profile by handle.
func (c *Client) GetUserByScreenName(ctx context.Context, handle string) (*User, error) {
	variables := map[string]any{
		"screen_name":              strings.TrimPrefix(handle, "@"),
		"withSafetyModeUserFields": true,
	}
	u := graphqlURL(endpoints[opUserByScreenName].url(graphqlBase), variables, gqlFeatures())

	body, err := c.doGET(ctx, opUserByScreenName, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opUserByScreenName, err)
	}
	return parseUserByScreenName(body)
}

// GetUserTweets fetches one page of a user's timeline. An empty cursor
// requests the newest page.
func (c *Client) GetUserTweets(ctx context.Context, userID string, count int, cursor string) (*Page, error) {
	variables := map[string]any{
		"userId":                                 userID,
		"count":                                  count,
		"includePromotedContent":                 false,
		"withQuickPromoteEligibilityTweetFields": true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	u := graphqlURL(endpoints[opUserTweets].url(graphqlBase), variables, gqlFeatures())

	body, err := c.doGET(ctx, opUserTweets, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opUserTweets, err)
	}
	return parseTweetTimeline(body, userID)
}

// UserTweets collects up to maxTweets of handle's own tweets from the
// timeline, newest first. Retweets are skipped and duplicates across pages
// are dropped. progress, if non-nil, is called after every page.
//
// On a mid-pagination failure the tweets gathered so far are returned
// together with the error.
func (c *Client) UserTweets(ctx context.Context, handle string, maxTweets int, progress ProgressFunc) ([]*Tweet, error) {
	if maxTweets <= 0 {
		return nil, nil
	}
	user, err := c.GetUserByScreenName(ctx, handle)
	if err != nil {
		return nil, err
	}
	if user.Protected {
		return nil, fmt.Errorf("@%s: %w", user.Handle, ErrUserProtected)
	}

	var (
		tweets []*Tweet
		seen   = make(map[string]struct{})
		cursor string
		empty  int
	)
	for len(tweets) < maxTweets {
		if err := ctx.Err(); err != nil {
			return tweets, err
		}

		page, err := c.GetUserTweets(ctx, user.ID, c.cfg.PageSize, cursor)
		if err != nil {
			if errors.Is(err, ErrUserSuspended) {
				return nil, err
			}
			return tweets, err
		}

		added := 0
		for _, t := range page.Tweets {
			if t.IsRetweet {
				continue
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			if t.Handle == "" {
				t.Handle = user.Handle
			}
			if t.AuthorName == "" {
				t.AuthorName = user.DisplayName
			}
			tweets = append(tweets, t)
			added++
			if len(tweets) == maxTweets {
				break
			}
		}
		if progress != nil {
			progress(len(tweets), maxTweets)
		}
		slog.Debug("timeline page",
			slog.String("handle", user.Handle),
			slog.Int("added", added),
			slog.Int("total", len(tweets)))

		if added == 0 {
			empty++
		} else {
			empty = 0
		}
		if page.Cursor == "" || page.Cursor == cursor || empty >= c.cfg.MaxEmptyPages {
			break
		}
		cursor = page.Cursor
	}
	return tweets, nil
}
