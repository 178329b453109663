package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI replays scripted progress responses. The last response repeats.
type fakeAPI struct {
	mu        sync.Mutex
	starts    []AnalysisRequest
	startErr  error
	responses []progressResponse
	polls     int
}

type progressResponse struct {
	snap *ProgressSnapshot
	err  error
}

func (f *fakeAPI) StartAnalysis(_ context.Context, req AnalysisRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, req)
	return f.startErr
}

func (f *fakeAPI) Progress(_ context.Context) (*ProgressSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if len(f.responses) == 0 {
		return &ProgressSnapshot{Status: StatusRunning}, nil
	}
	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return r.snap, r.err
}

func (f *fakeAPI) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func (f *fakeAPI) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts)
}

// recordingView records every call the controller makes.
type recordingView struct {
	mu            sync.Mutex
	errors        []string
	loading       bool
	progress      []int
	status        string
	profile       string
	clears        int
	placeholder   string
	cards         []TweetCard
	resultsShown  int
	submitEnabled bool
}

func newRecordingView() *recordingView { return &recordingView{submitEnabled: true} }

func (v *recordingView) ShowError(msg string) {
	v.mu.Lock()
	v.errors = append(v.errors, msg)
	v.mu.Unlock()
}
func (v *recordingView) ClearError() {}
func (v *recordingView) ShowLoading(status string) {
	v.mu.Lock()
	v.loading = true
	v.status = status
	v.mu.Unlock()
}
func (v *recordingView) HideLoading() {
	v.mu.Lock()
	v.loading = false
	v.mu.Unlock()
}
func (v *recordingView) SetProgress(percent int, status string) {
	v.mu.Lock()
	v.progress = append(v.progress, percent)
	v.status = status
	v.mu.Unlock()
}
func (v *recordingView) ShowProfile(name, handle string) {
	v.mu.Lock()
	v.profile = name + " " + handle
	v.mu.Unlock()
}
func (v *recordingView) ClearTweets() {
	v.mu.Lock()
	v.clears++
	v.cards = nil
	v.placeholder = ""
	v.mu.Unlock()
}
func (v *recordingView) ShowPlaceholder(msg string) {
	v.mu.Lock()
	v.placeholder = msg
	v.mu.Unlock()
}
func (v *recordingView) AppendCard(card TweetCard) {
	v.mu.Lock()
	v.cards = append(v.cards, card)
	v.mu.Unlock()
}
func (v *recordingView) ShowResults() {
	v.mu.Lock()
	v.resultsShown++
	v.mu.Unlock()
}
func (v *recordingView) HideResults() {}
func (v *recordingView) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	v.submitEnabled = enabled
	v.mu.Unlock()
}

func (v *recordingView) snapshot() recordingView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return recordingView{
		errors:        append([]string(nil), v.errors...),
		loading:       v.loading,
		progress:      append([]int(nil), v.progress...),
		status:        v.status,
		profile:       v.profile,
		clears:        v.clears,
		placeholder:   v.placeholder,
		cards:         append([]TweetCard(nil), v.cards...),
		resultsShown:  v.resultsShown,
		submitEnabled: v.submitEnabled,
	}
}

func testConfig() Config {
	return Config{
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  5 * time.Second,
		PollBackoff: stealth.BackoffConfig{
			InitialWait: time.Millisecond,
			MaxWait:     2 * time.Millisecond,
			Multiplier:  2.0,
		},
		Location: time.UTC,
	}
}

func waitSession(t *testing.T, s *Session) (*Result, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	res, err := s.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "session did not finish")
	return res, err
}

func completeSnapshot(tweets ...Tweet) *ProgressSnapshot {
	return &ProgressSnapshot{
		Status:              StatusComplete,
		TweetsScraped:       50,
		TotalExpected:       50,
		TopTweets:           tweets,
		TotalTweetsAnalyzed: 50,
	}
}

func TestSubmitRejectsInvalidURLWithoutNetwork(t *testing.T) {
	for _, input := range []string{"", "someuser", "https://x.com/", "https://facebook.com/someuser", "https://x.com/a/b"} {
		api := &fakeAPI{}
		view := newRecordingView()
		c := NewController(api, view, testConfig())

		s, err := c.Submit(context.Background(), input, 10)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "input %q", input)
		assert.Nil(t, s)
		assert.Zero(t, api.startCount())
		assert.Zero(t, api.pollCount())
		assert.False(t, c.Busy())
		assert.Len(t, view.snapshot().errors, 1)
	}
}

func TestSubmitCompleteRendersOnceAndStopsPolling(t *testing.T) {
	api := &fakeAPI{responses: []progressResponse{
		{snap: &ProgressSnapshot{Status: StatusRunning, TweetsScraped: 10, TotalExpected: 50, EstimatedTimeRemaining: 40}},
		{snap: completeSnapshot(Tweet{Username: "a", Likes: 3}, Tweet{Username: "b"})},
	}}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	s, err := c.Submit(context.Background(), "https://x.com/someuser", 50)
	require.NoError(t, err)
	assert.Equal(t, "someuser", s.Handle())
	assert.True(t, c.Busy())

	res, err := waitSession(t, s)
	require.NoError(t, err)
	require.Len(t, res.Cards, 2)
	assert.Equal(t, "a", res.Cards[0].Username)

	polls := api.pollCount()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, polls, api.pollCount(), "polled after completion")

	got := view.snapshot()
	assert.Equal(t, 1, got.clears)
	assert.Equal(t, 1, got.resultsShown)
	assert.Len(t, got.cards, 2)
	assert.Equal(t, "Analyzed 50 tweets", got.status)
	assert.Equal(t, 100, got.progress[len(got.progress)-1])
	assert.Contains(t, got.progress, 20)
	assert.Equal(t, "someuser @someuser", got.profile)
	assert.True(t, got.submitEnabled)
	assert.False(t, c.Busy())
	assert.Empty(t, got.errors)

	require.Len(t, api.starts, 1)
	assert.Equal(t, AnalysisRequest{ProfileURL: "https://x.com/someuser", MaxTweets: 50}, api.starts[0])
}

func TestSubmitCompleteWithoutTweetsShowsPlaceholder(t *testing.T) {
	api := &fakeAPI{responses: []progressResponse{{snap: completeSnapshot()}}}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	s, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	require.NoError(t, err)
	res, err := waitSession(t, s)
	require.NoError(t, err)
	assert.Empty(t, res.Cards)
	assert.Equal(t, msgNoTweets, view.snapshot().placeholder)
}

func TestSubmitServerErrorDoesNotRender(t *testing.T) {
	api := &fakeAPI{responses: []progressResponse{
		{snap: &ProgressSnapshot{Status: StatusError, Error: "The account @someuser doesn't exist."}},
	}}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	s, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	require.NoError(t, err)

	_, err = waitSession(t, s)
	var se *ServerReportedError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "The account @someuser doesn't exist.", se.Message)

	got := view.snapshot()
	assert.Zero(t, got.clears)
	assert.Empty(t, got.cards)
	assert.Zero(t, got.resultsShown)
	assert.Equal(t, []string{msgScrapeFailed}, got.errors)
	assert.False(t, got.loading)
	assert.True(t, got.submitEnabled)
	assert.False(t, c.Busy())
}

func TestSubmitDisabledWhilePolling(t *testing.T) {
	api := &fakeAPI{}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	s, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	require.NoError(t, err)
	assert.False(t, view.snapshot().submitEnabled)

	for range 3 {
		_, err := c.Submit(context.Background(), "https://x.com/other", 5)
		assert.ErrorIs(t, err, ErrSubmitDisabled)
	}
	assert.Equal(t, 1, api.startCount())

	s.Cancel()
	_, err = waitSession(t, s)
	assert.ErrorIs(t, err, ErrSessionCancelled)
	assert.False(t, c.Busy())
	assert.True(t, view.snapshot().submitEnabled)
}

func TestSubmitStartFailure(t *testing.T) {
	api := &fakeAPI{startErr: &RequestError{Status: 400, Message: "Invalid Twitter username format."}}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	s, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	assert.Nil(t, s)
	var re *RequestError
	require.True(t, errors.As(err, &re))

	got := view.snapshot()
	assert.Equal(t, []string{"Invalid Twitter username format."}, got.errors)
	assert.True(t, got.submitEnabled)
	assert.False(t, got.loading)
	assert.False(t, c.Busy())
	assert.Zero(t, api.pollCount())
}

func TestSubmitStartFailureGenericMessage(t *testing.T) {
	api := &fakeAPI{startErr: errors.New("boom")}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	_, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	require.Error(t, err)
	assert.Equal(t, []string{msgStartFailed}, view.snapshot().errors)
}

func TestSubmitDefaultsMaxTweets(t *testing.T) {
	api := &fakeAPI{responses: []progressResponse{{snap: completeSnapshot()}}}
	c := NewController(api, newRecordingView(), testConfig())

	s, err := c.Submit(context.Background(), "https://x.com/someuser", 0)
	require.NoError(t, err)
	_, _ = waitSession(t, s)
	assert.Equal(t, DefaultMaxTweets, api.starts[0].MaxTweets)
}

func TestPollErrorsKeepPolling(t *testing.T) {
	api := &fakeAPI{responses: []progressResponse{
		{err: &PollError{Err: errors.New("connection reset")}},
		{err: &PollError{Status: 502}},
		{snap: completeSnapshot(Tweet{Username: "a"})},
	}}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	s, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	require.NoError(t, err)
	res, err := waitSession(t, s)
	require.NoError(t, err)
	assert.Len(t, res.Cards, 1)
	assert.GreaterOrEqual(t, api.pollCount(), 3)
	assert.Empty(t, view.snapshot().errors)
}

func TestPollTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.PollTimeout = 30 * time.Millisecond
	api := &fakeAPI{}
	view := newRecordingView()
	c := NewController(api, view, cfg)

	s, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	require.NoError(t, err)
	_, err = waitSession(t, s)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, []string{msgPollTimeout}, view.snapshot().errors)
	assert.False(t, c.Busy())
}

func TestParentContextCancelEndsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController(&fakeAPI{}, newRecordingView(), testConfig())

	s, err := c.Submit(ctx, "https://x.com/someuser", 5)
	require.NoError(t, err)
	cancel()

	_, err = waitSession(t, s)
	assert.ErrorIs(t, err, ErrSessionCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaleSessionResponseDiscarded(t *testing.T) {
	api := &fakeAPI{}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	old, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	require.NoError(t, err)

	c.mu.Lock()
	current := c.startSession(context.Background(), "other")
	c.mu.Unlock()
	defer current.Cancel()

	assert.Greater(t, current.Generation(), old.Generation())
	assert.True(t, c.apply(old, completeSnapshot(Tweet{Username: "stale"})))

	_, err = waitSession(t, old)
	assert.ErrorIs(t, err, ErrSessionCancelled)

	got := view.snapshot()
	assert.Zero(t, got.clears)
	assert.Empty(t, got.cards)
	assert.True(t, c.Busy(), "newer session must keep submission disabled")
}

func TestStartSessionCancelsPrior(t *testing.T) {
	api := &fakeAPI{}
	view := newRecordingView()
	c := NewController(api, view, testConfig())

	old, err := c.Submit(context.Background(), "https://x.com/someuser", 5)
	require.NoError(t, err)

	c.mu.Lock()
	current := c.startSession(context.Background(), "other")
	c.mu.Unlock()
	defer current.Cancel()

	_, err = waitSession(t, old)
	assert.ErrorIs(t, err, ErrSessionCancelled)

	select {
	case <-current.Done():
		t.Fatal("replacement session ended early")
	default:
	}
	assert.True(t, c.Busy())
	assert.Empty(t, view.snapshot().errors, "a replaced session shows nothing")
}

func TestRender(t *testing.T) {
	view := newRecordingView()
	c := NewController(&fakeAPI{}, view, testConfig())

	cards := c.Render([]Tweet{{Username: "a"}, {Username: "b"}})
	assert.Len(t, cards, 2)
	assert.Len(t, view.snapshot().cards, 2)

	assert.Nil(t, c.Render(nil))
	got := view.snapshot()
	assert.Empty(t, got.cards)
	assert.Equal(t, msgNoTweets, got.placeholder)
	assert.Equal(t, 2, got.clears)
}
