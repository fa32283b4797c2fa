// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"

	"userauth/backend/internal/config"
)

// New returns a logger whose handler and level follow the deployment environment:
// text/debug for local, JSON/debug for dev and JSON/info for prod. Unknown
// environments get the prod profile.
func New(env string, w io.Writer) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Err is the attribute used for errors across the code base.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
