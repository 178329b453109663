package analyzer

import (
	"errors"
	"fmt"
)

// Messages shown to the user through View.ShowError.
const (
	msgEmptyURL      = "Please enter a valid X profile URL"
	msgInvalidURL    = "Please enter a valid X profile URL (e.g., https://x.com/username)"
	msgStartRejected = "Failed to analyze profile"
	msgStartFailed   = "An error occurred while analyzing the profile"
	msgScrapeFailed  = "An error occurred during scraping"
	msgPollTimeout   = "Analysis timed out while waiting for results"
	msgNoTweets      = "No tweets found or unable to analyze tweets."
	msgStarting      = "Starting analysis..."
)

var (
	// ErrSubmitDisabled is returned by Submit while an analysis is starting or polling.
	ErrSubmitDisabled = errors.New("submission disabled: analysis in progress")

	// ErrPollTimeout ends a session that exceeded Config.PollTimeout.
	ErrPollTimeout = errors.New("progress polling timed out")

	// ErrSessionCancelled ends a session that was cancelled or superseded.
	ErrSessionCancelled = errors.New("analysis session cancelled")
)

// ValidationError rejects a profile URL before any network call.
type ValidationError struct {
	Input   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid profile url: " + e.Message
}

// RequestError is a failed start-analysis call.
// Status is zero when the request never got an HTTP response.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("start analysis: HTTP %d: %s", e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("start analysis: HTTP %d", e.Status)
	case e.Err != nil:
		return "start analysis: " + e.Err.Error()
	}
	return "start analysis failed"
}

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage is the text surfaced in the view: the server-provided message,
// or a generic fallback.
func (e *RequestError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return msgStartRejected
	}
	return msgStartFailed
}

// PollError is a transient failure while fetching progress. Polling continues.
type PollError struct {
	Status int
	Err    error
}

func (e *PollError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("poll progress: HTTP %d", e.Status)
	}
	return fmt.Sprintf("poll progress: %v", e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// ServerReportedError is a progress snapshot with status "error".
type ServerReportedError struct {
	Message string
}

func (e *ServerReportedError) Error() string {
	if e.Message == "" {
		return "server reported scrape error"
	}
	return "server reported scrape error: " + e.Message
}
