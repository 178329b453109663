package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var countRe = regexp.MustCompile(`(\d+(?:\.\d+)?)([KkMmBb])?`)

var countSuffix = map[string]float64{
	"k": 1e3,
	"m": 1e6,
	"b": 1e9,
}

// ParseCount converts an abbreviated counter as rendered by x.com
// ("1.2K", "3M", "1,234", "") to an integer. Unparsable input yields 0.
func ParseCount(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	m := countRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	if mult, ok := countSuffix[strings.ToLower(m[2])]; ok {
		n *= mult
	}
	// Truncate like the web client, tolerating float error such as 2.3*1000.
	return int64(math.Floor(n + 1e-6))
}
