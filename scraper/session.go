package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
)

const sessionFile = "session.json"

// credentials is the cookie pair of a logged-in web session. ct0 doubles
// as the CSRF token and is rotated independently of auth_token.
type credentials struct {
	mu             sync.Mutex
	authToken      string
	ct0            string
	ct0RefreshedAt time.Time
}

func (c *credentials) valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authToken != ""
}

// snapshot returns (authToken, ct0) under lock.
func (c *credentials) snapshot() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authToken, c.ct0
}

func (c *credentials) ct0Age() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ct0RefreshedAt.IsZero() {
		return 24 * time.Hour
	}
	return time.Since(c.ct0RefreshedAt)
}

// rotate replaces ct0 with a freshly generated token.
func (c *credentials) rotate() {
	c.setCT0(GenerateCT0())
}

func (c *credentials) setCT0(ct0 string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ct0 = ct0
	c.ct0RefreshedAt = time.Now()
}

// sessionDir returns the directory for persisting session cookies, or ""
// when persistence is disabled.
func sessionDir(override string) string {
	switch override {
	case "-":
		return ""
	case "":
		return filepath.Join(xdg.StateHome, "twitter-analyzer", "sessions")
	}
	return override
}

type savedSession struct {
	AuthToken string    `json:"auth_token"`
	CT0       string    `json:"ct0"`
	SavedAt   time.Time `json:"saved_at"`
}

// saveSession persists auth_token and ct0 to disk.
func saveSession(dir, authToken, ct0 string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(savedSession{AuthToken: authToken, CT0: ct0, SavedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, sessionFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", path, err)
	}
	slog.Debug("session saved", slog.String("dir", dir))
	return nil
}

// loadSession loads a persisted session, returning empty values when none
// exists or it is older than ttl.
func loadSession(dir string, ttl time.Duration) (authToken, ct0 string, err error) {
	if dir == "" {
		return "", "", nil
	}
	data, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", nil
		}
		return "", "", err
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", "", fmt.Errorf("parse session: %w", err)
	}
	if time.Since(s.SavedAt) > ttl {
		slog.Debug("session expired", slog.Time("saved_at", s.SavedAt))
		return "", "", nil
	}
	return s.AuthToken, s.CT0, nil
}

// resolveCredentials merges configured cookies with a persisted session.
// A saved session is reused when no auth_token is configured or when it
// belongs to the configured one, which keeps a rotated ct0 across restarts.
func resolveCredentials(cfg ClientConfig) *credentials {
	creds := &credentials{authToken: cfg.AuthToken, ct0: cfg.CT0}
	savedAuth, savedCT0, err := loadSession(sessionDir(cfg.SessionDir), cfg.SessionTTL)
	if err != nil {
		slog.Warn("load session failed", slog.Any("error", err))
	}
	if savedAuth != "" && (creds.authToken == "" || creds.authToken == savedAuth) {
		creds.authToken = savedAuth
		if creds.ct0 == "" {
			creds.ct0 = savedCT0
		}
	}
	if creds.authToken == "" {
		return creds
	}
	if creds.ct0 == "" {
		creds.ct0 = GenerateCT0()
	}
	creds.ct0RefreshedAt = time.Now()
	return creds
}
