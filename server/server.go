// Package server exposes the profile analysis HTTP API: one background
// scrape at a time, polled for progress until it completes or fails.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/anatolykoptev/go-twitter-analyzer/scraper"
)

const (
	msgBusy        = "Already scraping tweets. Please wait."
	msgBadRequest  = "Invalid request body."
	msgStarted     = "Started scraping tweets for @%s. This may take a few minutes depending on the account activity."
	msgNoTweets    = "No tweets found for @%s. The profile may have very few or no public tweets."
	msgNotFound    = "The account @%s doesn't exist."
	msgSuspended   = "The account @%s has been suspended."
	msgProtected   = "The account @%s is private/protected."
	msgThrottled   = "Twitter is rate limiting requests right now. Please try again later."
	msgTimedOut    = "Scraping @%s took too long and was stopped."
	msgScrapeError = "Failed to scrape tweets for @%s."

	maxBodyBytes = 1 << 16
)

// Source yields a profile's tweets; *scraper.Client implements it.
type Source interface {
	UserTweets(ctx context.Context, handle string, maxTweets int, progress scraper.ProgressFunc) ([]*scraper.Tweet, error)
}

// Server runs analysis jobs against a Source.
type Server struct {
	cfg     Config
	src     Source
	jobs    *tracker
	limiter *ipLimiter
	router  *mux.Router

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a server. Jobs run until Close or the end of ListenAndServe.
func New(cfg Config, src Source) *Server {
	cfg.defaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		src:     src,
		jobs:    newTracker(),
		limiter: newIPLimiter(cfg.RequestsPerSecond, cfg.Burst),
		ctx:     ctx,
		cancel:  cancel,
	}

	r := mux.NewRouter()
	r.Use(requestLogger)
	r.Handle("/api/analyze", s.limiter.Limit(http.HandlerFunc(s.handleAnalyze))).Methods(http.MethodPost)
	r.HandleFunc("/api/progress", s.handleProgress).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.Close()
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and stops any running job.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("analysis server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", ln.Addr(), err)
	case <-ctx.Done():
	}

	slog.Info("shutting down analysis server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close cancels the running job and waits for it to finish.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileURL string `json:"profile_url"`
		MaxTweets  int    `json:"max_tweets"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if s.jobs.running() {
		sendJSONError(w, http.StatusConflict, msgBusy)
		return
	}
	handle, err := ExtractUsername(req.ProfileURL)
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, usernameMessage(err))
		return
	}

	maxTweets := s.cfg.maxTweets(req.MaxTweets)
	if !s.jobs.begin(handle, maxTweets) {
		sendJSONError(w, http.StatusConflict, msgBusy)
		return
	}
	s.wg.Add(1)
	go s.run(handle, maxTweets)

	sendJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf(msgStarted, handle)})
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, s.jobs.snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// run scrapes, ranks and publishes one job.
func (s *Server) run(handle string, maxTweets int) {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.JobTimeout)
	defer cancel()

	log := slog.With(slog.String("handle", handle), slog.Int("max_tweets", maxTweets))
	log.Info("scrape started")

	tweets, err := s.src.UserTweets(ctx, handle, maxTweets, s.jobs.progress)
	if err != nil {
		if len(tweets) == 0 {
			log.Warn("scrape failed", slog.Any("error", err))
			s.jobs.fail(failureMessage(handle, err))
			return
		}
		log.Warn("scrape ended early, ranking partial result", slog.Int("tweets", len(tweets)), slog.Any("error", err))
	}
	if len(tweets) == 0 {
		s.jobs.fail(fmt.Sprintf(msgNoTweets, handle))
		return
	}

	s.jobs.complete(Rank(tweets, s.cfg.TopN), len(tweets))
	log.Info("scrape complete", slog.Int("tweets", len(tweets)))
}

func failureMessage(handle string, err error) string {
	switch {
	case errors.Is(err, scraper.ErrUserNotFound):
		return fmt.Sprintf(msgNotFound, handle)
	case errors.Is(err, scraper.ErrUserSuspended):
		return fmt.Sprintf(msgSuspended, handle)
	case errors.Is(err, scraper.ErrUserProtected):
		return fmt.Sprintf(msgProtected, handle)
	case errors.Is(err, scraper.ErrRateLimited):
		return msgThrottled
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf(msgTimedOut, handle)
	}
	return fmt.Sprintf(msgScrapeError, handle)
}
