// Package logging builds the application's logrus logger and the HTTP request
// logger plugged into chi's middleware.RequestLogger.
package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/user/emojicringe-go/config"
)

// New returns a logger writing to stderr with the configured level and format.
// An unknown level falls back to info rather than failing start-up.
func New(cfg *config.LogConfig) *logrus.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit destination, used by tests.
func NewWithWriter(cfg *config.LogConfig, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
	return logger
}

// RequestLogger logs one line per request with method, path, status, size,
// duration and the chi request id.
func RequestLogger(logger logrus.FieldLogger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&requestFormatter{logger: logger})
}

type requestFormatter struct {
	logger logrus.FieldLogger
}

func (f *requestFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	entry := f.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"remote_addr": r.RemoteAddr,
	})
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		entry = entry.WithField("request_id", reqID)
	}
	return &requestEntry{entry: entry}
}

type requestEntry struct {
	entry *logrus.Entry
}

func (e *requestEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	entry := e.entry.WithFields(logrus.Fields{
		"status":      status,
		"bytes":       bytes,
		"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
	})
	switch {
	case status >= http.StatusInternalServerError:
		entry.Error("request completed")
	case status >= http.StatusBadRequest:
		entry.Warn("request completed")
	default:
		entry.Info("request completed")
	}
}

func (e *requestEntry) Panic(v interface{}, stack []byte) {
	e.entry.WithFields(logrus.Fields{
		"panic": v,
		"stack": string(stack),
	}).Error("request panicked")
}

// FromRequest returns the request-scoped entry created by RequestLogger, so
// handler logs carry the same request id. Without one it falls back to the
// standard logrus logger.
func FromRequest(r *http.Request) logrus.FieldLogger {
	if e, ok := middleware.GetLogEntry(r).(*requestEntry); ok {
		return e.entry
	}
	return logrus.StandardLogger()
}
