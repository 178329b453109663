package scraper

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

var (
	// ErrUserNotFound is returned when the handle does not resolve to an account.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserSuspended is returned for suspended accounts.
	ErrUserSuspended = errors.New("user suspended")
	// ErrUserProtected is returned when the timeline is not publicly visible.
	ErrUserProtected = errors.New("user tweets are protected")
	// ErrRateLimited is returned when an endpoint budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthorized is returned when the session is rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// errorClass categorizes Twitter API error responses for targeted handling.
type errorClass int

const (
	errNone          errorClass = iota
	errBanned                   // 88: rate limit abuse
	errSuspended                // 64: account suspended
	errLocked                   // 326: account locked
	errCSRF                     // 353: csrf token mismatch
	errAuthExpired              // 32: could not authenticate
	errBlocked                  // 161: blocked from performing action
	errNotAuthorized            // 179, 219: not authorized
	errInternal                 // 131: internal error
)

func (c errorClass) String() string {
	switch c {
	case errNone:
		return "none"
	case errBanned:
		return "banned"
	case errSuspended:
		return "suspended"
	case errLocked:
		return "locked"
	case errCSRF:
		return "csrf"
	case errAuthExpired:
		return "auth_expired"
	case errBlocked:
		return "blocked"
	case errNotAuthorized:
		return "not_authorized"
	case errInternal:
		return "internal"
	}
	return "class(" + strconv.Itoa(int(c)) + ")"
}

// classifyError inspects a response body for known Twitter error codes.
func classifyError(body []byte) errorClass {
	var errResp struct {
		Errors []struct {
			Code int `json:"code"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return errNone
	}

	for _, e := range errResp.Errors {
		switch e.Code {
		case 88:
			return errBanned
		case 64:
			return errSuspended
		case 326:
			return errLocked
		case 353:
			return errCSRF
		case 32:
			return errAuthExpired
		case 161:
			return errBlocked
		case 179, 219:
			return errNotAuthorized
		case 131:
			return errInternal
		}
	}
	return errNone
}

// parseRateLimitReset parses the X-Rate-Limit-Reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}

// hasResponseData returns true if the JSON body contains a non-null "data" field.
func hasResponseData(body []byte) bool {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return false
	}
	return len(probe.Data) > 0 && string(probe.Data) != "null"
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
