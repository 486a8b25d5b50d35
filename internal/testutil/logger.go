// Package testutil holds small helpers shared by the package test suites.
package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards all output. The session,
// storage and realtime suites pass it wherever a *slog.Logger is required.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
