package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Result is the outcome of a completed analysis.
type Result struct {
	Handle   string
	Snapshot *ProgressSnapshot
	Cards    []TweetCard
}

// Session is one analysis run: it owns the polling task started by Submit.
// A Controller holds at most one active Session.
type Session struct {
	generation uint64
	handle     string

	ctx    context.Context
	cancel context.CancelCauseFunc
	stop   context.CancelFunc

	done   chan struct{}
	once   sync.Once
	result *Result
	err    error
}

func newSession(parent context.Context, generation uint64, handle string, timeout time.Duration) *Session {
	ctx, cancel := context.WithCancelCause(parent)
	stop := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, stop = context.WithTimeoutCause(ctx, timeout, ErrPollTimeout)
	}
	return &Session{
		generation: generation,
		handle:     handle,
		ctx:        ctx,
		cancel:     cancel,
		stop:       stop,
		done:       make(chan struct{}),
	}
}

// Generation is the controller-assigned sequence number of this session.
func (s *Session) Generation() uint64 { return s.generation }

// Handle is the profile handle being analyzed.
func (s *Session) Handle() string { return s.handle }

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Cancel stops polling. The session ends with ErrSessionCancelled.
func (s *Session) Cancel() {
	s.cancel(ErrSessionCancelled)
}

// Wait blocks until the session ends or ctx is done.
func (s *Session) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-s.done:
		return s.result, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// finish records the outcome once and releases the session's context.
func (s *Session) finish(res *Result, err error) {
	s.once.Do(func() {
		s.result = res
		s.err = err
		s.stop()
		s.cancel(ErrSessionCancelled)
		close(s.done)
	})
}

// abortReason maps the cause of a cancelled session context to the error
// the session ends with.
func (s *Session) abortReason() error {
	cause := context.Cause(s.ctx)
	switch {
	case errors.Is(cause, ErrPollTimeout), errors.Is(cause, ErrSessionCancelled):
		return cause
	case cause == nil:
		return ErrSessionCancelled
	}
	return fmt.Errorf("%w: %w", ErrSessionCancelled, cause)
}
