package scraper

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// GenerateCT0 returns a random 32-byte hex string usable as a ct0 CSRF token.
func GenerateCT0() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("0", 64)
	}
	return hex.EncodeToString(b)
}

// ct0MaxAge is the maximum age of a ct0 token before proactive rotation.
const ct0MaxAge = 4 * time.Hour

// extractCT0FromHeaders returns the ct0 value from a set-cookie header.
func extractCT0FromHeaders(headers map[string]string) string {
	for _, part := range strings.Split(headers["set-cookie"], ";") {
		if val, ok := strings.CutPrefix(strings.TrimSpace(part), "ct0="); ok && val != "" {
			return val
		}
	}
	return ""
}
