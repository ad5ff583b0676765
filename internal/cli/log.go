// Package cli implements the streamenc command-line interface.
//
// The CLI exists mainly as a demonstration harness for the package: it
// encodes a small built-in value graph — including a deferred field and
// a record stream — to stdout, so the pull-driven, backpressure-aware
// behavior can be observed from the command line rather than only from
// tests. It is built with cobra and logs through charmbracelet/log.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w, filtered at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
