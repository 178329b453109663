package analyzer

import (
	"regexp"
	"strings"
)

// profileURLRe accepts x.com and twitter.com profile URLs with an optional
// www. prefix and trailing slash. Handles are 1-15 word characters.
var profileURLRe = regexp.MustCompile(`^https?://(?:www\.)?(?:twitter|x)\.com/([A-Za-z0-9_]{1,15})/?$`)

// ValidateProfileURL checks a user-entered profile URL and returns its handle.
func ValidateProfileURL(raw string) (string, error) {
	if raw == "" {
		return "", &ValidationError{Input: raw, Message: msgEmptyURL}
	}
	m := profileURLRe.FindStringSubmatch(raw)
	if m == nil {
		return "", &ValidationError{Input: raw, Message: msgInvalidURL}
	}
	return m[1], nil
}

// DisplayHandle extracts the last non-empty path segment of a profile URL,
// without a leading @.
func DisplayHandle(profileURL string) string {
	trimmed := strings.TrimRight(profileURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimPrefix(trimmed, "@")
}
