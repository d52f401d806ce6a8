package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"notely/internal/config"
)

// ServiceName is attached to every record as the "service" attribute.
const ServiceName = "notely"

var (
	singleton atomic.Pointer[slog.Logger]
	once      sync.Once

	discard = slog.New(discardHandler{})
)

// discardHandler mirrors slog.DiscardHandler (Go 1.24+) for older toolchains.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Init initializes the singleton logger from the provided config.
// It is thread-safe and idempotent - the first call wins,
// and subsequent calls return the same logger instance.
func Init(cfg config.Config) (*slog.Logger, error) {
	once.Do(func() {
		singleton.Store(New(cfg, os.Stdout))
	})

	return singleton.Load(), nil
}

// New builds a logger writing to w using the level and format from cfg.
// Unknown levels fall back to info, unknown formats to JSON.
func New(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.LogLevel),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("service", ServiceName)
}

// ParseLevel maps a LOG_LEVEL value onto a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the singleton logger instance.
// Before Init is called it returns a logger that discards everything,
// so packages can log unconditionally in tests.
func L() *slog.Logger {
	if l := singleton.Load(); l != nil {
		return l
	}
	return discard
}
