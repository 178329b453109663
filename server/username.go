package server

import (
	"errors"
	"regexp"
	"strings"
)

const (
	msgInvalidProfile = "Invalid profile URL or username format. Please enter a valid Twitter/X profile URL (e.g., https://twitter.com/username or https://x.com/username) or just the username."
	msgInvalidHandle  = "Invalid Twitter username format. Twitter usernames can only contain letters, numbers, and underscores, and must be 15 characters or less."
)

var (
	errInvalidProfile = errors.New("invalid profile reference")
	errInvalidHandle  = errors.New("invalid handle")
)

// Tried in order; the first non-reserved capture wins.
var usernamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:twitter\.com|x\.com)/([^/?]+)`),
	regexp.MustCompile(`@([a-zA-Z0-9_]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9_]+)$`),
}

var handleRe = regexp.MustCompile(`^[a-zA-Z0-9_]{1,15}$`)

// reservedPaths are x.com routes that look like profiles but are not.
var reservedPaths = map[string]bool{
	"home":          true,
	"explore":       true,
	"notifications": true,
	"messages":      true,
	"search":        true,
}

// ExtractUsername accepts a profile URL, an @handle or a bare handle and
// returns the lowercased handle.
func ExtractUsername(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, re := range usernamePatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		name := strings.TrimPrefix(m[1], "@")
		if reservedPaths[name] {
			continue
		}
		if !handleRe.MatchString(name) {
			return "", errInvalidHandle
		}
		return name, nil
	}
	return "", errInvalidProfile
}

func usernameMessage(err error) string {
	if errors.Is(err, errInvalidHandle) {
		return msgInvalidHandle
	}
	return msgInvalidProfile
}
