// Package logging builds the process slog logger. Every record passes
// through a redacting handler so session cookies, CSRF tokens and guest
// tokens never reach log output, verbose mode included.
package logging

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces redacted values.
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute keys that are always redacted.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"proxy-authorization": true,
	"auth_token":          true,
	"ct0":                 true,
	"x-csrf-token":        true,
	"x-guest-token":       true,
	"guest_token":         true,
	"password":            true,
	"secret":              true,
}

// sensitiveKeywords redact any key containing them.
var sensitiveKeywords = []string{"token", "password", "secret", "cookie", "csrf", "credential"}

var sensitivePatterns = []*regexp.Regexp{
	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	// Cookie strings carrying session credentials
	regexp.MustCompile(`(?i)(auth_token|ct0)=[^;\s]+`),
	// ct0 values: 32 random bytes, hex encoded
	regexp.MustCompile(`^[0-9a-f]{64}$`),
	// Proxy URLs with inline credentials
	regexp.MustCompile(`://[^/@\s]+:[^/@\s]+@`),
}

// SecureHandler wraps an slog.Handler and redacts sensitive attributes
// before passing records on.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler, or slog.Default().Handler() when nil.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(out)}
}

func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr redacts by key first, then by string value, recursing into groups.
func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			out[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}
	switch a.Value.Kind() {
	case slog.KindString:
		if isSensitiveValue(a.Value.String()) {
			return slog.String(a.Key, MaskValue)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && isSensitiveValue(err.Error()) {
			return slog.String(a.Key, MaskValue)
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(v string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(v) {
			return true
		}
	}
	return false
}

// Options selects the output format and level.
type Options struct {
	Verbose bool
	JSON    bool
}

// New returns a redacting logger writing to w. Verbose enables debug
// records; otherwise info and above are written.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	ho := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	if opts.JSON {
		inner = slog.NewJSONHandler(w, ho)
	} else {
		inner = slog.NewTextHandler(w, ho)
	}
	return slog.New(NewSecureHandler(inner))
}
