package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Controller validates profile URLs, starts analysis jobs, polls their
// progress and renders the results through a View.
//
// State machine: idle → submitting → polling → (complete | error) → idle.
type Controller struct {
	api   API
	view  View
	cfg   Config
	cards *CardBuilder

	mu         sync.Mutex
	generation uint64
	session    *Session
	busy       bool
}

// NewController creates a Controller. Zero-value config fields get defaults.
func NewController(api API, view View, cfg Config) *Controller {
	cfg.defaults()
	return &Controller{
		api:   api,
		view:  view,
		cfg:   cfg,
		cards: NewCardBuilder(cfg),
	}
}

// Submit validates profileURL, starts an analysis of up to maxTweets tweets
// and begins polling. ctx bounds both the start request and the session.
//
// Invalid input returns a *ValidationError without touching the network.
// While another analysis is starting or polling, Submit returns
// ErrSubmitDisabled.
func (c *Controller) Submit(ctx context.Context, profileURL string, maxTweets int) (*Session, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrSubmitDisabled
	}
	if _, err := ValidateProfileURL(profileURL); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			c.showError(ve.Message)
		}
		c.mu.Unlock()
		return nil, err
	}
	if maxTweets <= 0 {
		maxTweets = c.cfg.DefaultMaxTweets
	}

	c.busy = true
	c.view.ClearError()
	c.view.ShowLoading(msgStarting)
	c.view.HideResults()
	c.view.SetSubmitEnabled(false)

	handle := DisplayHandle(profileURL)
	c.view.ShowProfile(handle, "@"+handle)
	c.mu.Unlock()

	err := c.api.StartAnalysis(ctx, AnalysisRequest{ProfileURL: profileURL, MaxTweets: maxTweets})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		msg := msgStartFailed
		var re *RequestError
		if errors.As(err, &re) {
			msg = re.UserMessage()
		}
		slog.Warn("start analysis failed", slog.String("handle", handle), slog.Any("error", err))
		c.showError(msg)
		c.release()
		return nil, err
	}

	slog.Info("analysis started", slog.String("handle", handle), slog.Int("max_tweets", maxTweets))
	return c.startSession(ctx, handle), nil
}

// Render replaces the displayed tweets with cards built from tweets.
func (c *Controller) Render(tweets []Tweet) []TweetCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.render(tweets)
}

// Busy reports whether submission is currently disabled.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// startSession cancels any prior session and launches a new polling task.
// Submit refuses while busy and release clears c.session, so a prior
// session only exists here when startSession is called directly.
// Caller holds c.mu.
func (c *Controller) startSession(ctx context.Context, handle string) *Session {
	if c.session != nil {
		c.session.Cancel()
	}
	c.generation++
	s := newSession(ctx, c.generation, handle, c.cfg.PollTimeout)
	c.session = s
	go c.poll(s)
	return s
}

// poll drives one session on a fixed cadence until a terminal snapshot
// arrives or the session context ends. Polls of a session never overlap.
func (c *Controller) poll(s *Session) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	fails := 0
	for {
		select {
		case <-s.ctx.Done():
			c.abandon(s)
			return
		case <-ticker.C:
		}

		snap, err := c.api.Progress(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				c.abandon(s)
				return
			}
			fails++
			slog.Warn("progress poll failed",
				slog.Uint64("generation", s.generation),
				slog.Int("consec_fails", fails),
				slog.Any("error", err))
			c.backoff(s, fails)
			continue
		}
		fails = 0

		if c.apply(s, snap) {
			return
		}
	}
}

// backoff waits past the regular cadence after repeated poll failures.
func (c *Controller) backoff(s *Session, fails int) {
	extra := c.cfg.PollBackoff.Duration(fails-1) - c.cfg.PollInterval
	if extra <= 0 {
		return
	}
	select {
	case <-time.After(extra):
	case <-s.ctx.Done():
	}
}

// apply updates the view from a snapshot. It returns true when the session
// has ended.
func (c *Controller) apply(s *Session, snap *ProgressSnapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.generation != c.generation || c.session != s {
		slog.Debug("discarding stale progress",
			slog.Uint64("generation", s.generation),
			slog.Uint64("current", c.generation))
		s.finish(nil, ErrSessionCancelled)
		return true
	}

	c.view.SetProgress(Percent(snap.TweetsScraped, snap.TotalExpected), StatusText(snap))

	switch snap.Status {
	case StatusComplete:
		cards := c.render(snap.TopTweets)
		c.view.SetProgress(100, completeText(snap))
		c.view.ShowResults()
		c.release()
		slog.Info("analysis complete",
			slog.String("handle", s.handle),
			slog.Int("analyzed", snap.TotalTweetsAnalyzed),
			slog.Int("top", len(cards)))
		s.finish(&Result{Handle: s.handle, Snapshot: snap, Cards: cards}, nil)
		return true

	case StatusError:
		c.showError(msgScrapeFailed)
		c.release()
		slog.Warn("server reported scrape error", slog.String("handle", s.handle), slog.String("error", snap.Error))
		s.finish(nil, &ServerReportedError{Message: snap.Error})
		return true
	}
	return false
}

// abandon ends a session whose context was cancelled or timed out.
func (c *Controller) abandon(s *Session) {
	err := s.abortReason()

	c.mu.Lock()
	if c.session == s {
		if errors.Is(err, ErrPollTimeout) {
			c.showError(msgPollTimeout)
		} else {
			c.view.HideLoading()
		}
		c.release()
	}
	c.mu.Unlock()

	slog.Debug("analysis session ended", slog.Uint64("generation", s.generation), slog.Any("reason", err))
	s.finish(nil, err)
}

// render clears previous output and shows cards or the empty placeholder.
// Caller holds c.mu.
func (c *Controller) render(tweets []Tweet) []TweetCard {
	c.view.ClearTweets()
	if len(tweets) == 0 {
		c.view.ShowPlaceholder(msgNoTweets)
		return nil
	}
	cards := c.cards.BuildCards(tweets)
	for _, card := range cards {
		c.view.AppendCard(card)
	}
	return cards
}

// showError displays msg and hides the loading indicator. Caller holds c.mu.
func (c *Controller) showError(msg string) {
	c.view.ShowError(msg)
	c.view.HideLoading()
}

// release re-enables submission and forgets the active session.
// Caller holds c.mu.
func (c *Controller) release() {
	c.busy = false
	c.session = nil
	c.view.SetSubmitEnabled(true)
}
