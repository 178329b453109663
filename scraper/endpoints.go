package scraper

import "fmt"

const (
	graphqlBase = "https://x.com/i/api/graphql"
	apiBase     = "https://api.twitter.com"
)

// BearerToken is the public web-app bearer token.
const BearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

// Operation names double as rate-limit buckets.
const (
	opUserByScreenName = "UserByScreenName"
	opUserTweets       = "UserTweets"
	opGuestActivate    = "GuestActivate"
)

// endpoint is a GraphQL query ID and name.
type endpoint struct {
	ID   string
	Name string
}

func (e endpoint) url(base string) string {
	return fmt.Sprintf("%s/%s/%s", base, e.ID, e.Name)
}

var endpoints = map[string]endpoint{
	opUserByScreenName: {ID: "1VOOyvKkiI3FMmkeDNxM9A", Name: opUserByScreenName},
	opUserTweets:       {ID: "HeWHY26ItCfUmm1e6ITjeA", Name: opUserTweets},
}

// gqlFeatures returns the feature flags the web client sends with
// profile and timeline queries.
func gqlFeatures() map[string]any {
	return map[string]any{
		"articles_preview_enabled":                                                false,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"hidden_profile_subscriptions_enabled":                                    true,
		"longform_notetweets_consumption_enabled":                                 true,
		"longform_notetweets_inline_media_enabled":                                true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"rweb_video_timestamps_enabled":                                           true,
		"standardized_nudges_misinfo":                                             true,
		"subscriptions_verification_info_verified_since_enabled":                  true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"verified_phone_label_enabled":                                            false,
		"view_counts_everywhere_api_enabled":                                      true,
	}
}
