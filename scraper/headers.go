package scraper

import stealth "github.com/anatolykoptev/go-stealth"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// baseHeaders are shared by session and guest requests.
func baseHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	h := map[string]string{
		"authorization":             "Bearer " + BearerToken,
		"x-twitter-active-user":     "yes",
		"x-twitter-client-language": "en",
		"content-type":              "application/json",
		"user-agent":                userAgent,
		"accept":                    "*/*",
		"accept-language":           "en-US,en;q=0.9",
		"accept-encoding":           "gzip, deflate, br",
		"referer":                   "https://x.com/",
		"origin":                    "https://x.com",
		"sec-fetch-dest":            "empty",
		"sec-fetch-mode":            "cors",
		"sec-fetch-site":            "same-origin",
	}
	for k, v := range stealth.ClientHintsHeaders(userAgent) {
		h[k] = v
	}
	return h
}

// sessionHeaders authenticate with the auth_token/ct0 cookie pair.
func sessionHeaders(authToken, ct0, userAgent string) map[string]string {
	h := baseHeaders(userAgent)
	h["x-csrf-token"] = ct0
	h["x-twitter-auth-type"] = "OAuth2Session"
	h["cookie"] = "auth_token=" + authToken + "; ct0=" + ct0
	return h
}

// guestHeaders authenticate with an activated guest token.
func guestHeaders(guestToken, userAgent string) map[string]string {
	h := baseHeaders(userAgent)
	h["x-guest-token"] = guestToken
	return h
}

// headerOrder keeps the wire order consistent with the TLS fingerprint.
var headerOrder = []string{
	"authorization",
	"content-type",
	"x-csrf-token",
	"x-guest-token",
	"x-twitter-auth-type",
	"x-twitter-active-user",
	"x-twitter-client-language",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"cookie",
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
	"referer",
	"origin",
}
