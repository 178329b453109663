package analyzer

import "fmt"

// Percent returns scraped/expected as a whole percentage capped at 100.
// An expected total of zero yields 0.
func Percent(scraped, expected int) int {
	if expected <= 0 {
		return 0
	}
	// Integer round-half-up of 100*scraped/expected.
	p := (200*scraped + expected) / (2 * expected)
	return max(0, min(p, 100))
}

// FormatTimeRemaining renders seconds as "N seconds", "N minutes" or
// "H hours M minutes" with singular units where the count is 1.
func FormatTimeRemaining(seconds int) string {
	switch {
	case seconds < 60:
		return plural(seconds, "second")
	case seconds < 3600:
		return plural(seconds/60, "minute")
	default:
		return plural(seconds/3600, "hour") + " " + plural((seconds%3600)/60, "minute")
	}
}

// StatusText is the one-line progress description for a snapshot.
func StatusText(s *ProgressSnapshot) string {
	text := fmt.Sprintf("Analyzed %d of %d tweets", s.TweetsScraped, s.TotalExpected)
	if s.EstimatedTimeRemaining > 0 && s.Status != StatusComplete {
		text += " - Estimated time remaining: " + FormatTimeRemaining(s.EstimatedTimeRemaining)
	}
	return text
}

// completeText replaces the status line once results are in.
func completeText(s *ProgressSnapshot) string {
	return fmt.Sprintf("Analyzed %d tweets", s.TotalTweetsAnalyzed)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
