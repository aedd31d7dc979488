package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with timestamps formatted as "HH:MM:SS.ms"
// (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// envLogLevel overrides the starting log level, e.g. ATLAS_LOG_LEVEL=debug.
const envLogLevel = "ATLAS_LOG_LEVEL"

// levelFromEnv returns the level named by ATLAS_LOG_LEVEL. ok is false when
// the variable is unset or empty.
func levelFromEnv(lookup func(string) (string, bool)) (lvl log.Level, ok bool, err error) {
	v, set := lookup(envLogLevel)
	if !set || v == "" {
		return 0, false, nil
	}
	lvl, err = log.ParseLevel(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", envLogLevel, err)
	}
	return lvl, true, nil
}

// progress times a pipeline stage and logs its completion once.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, e.g.
// "server ready queue=sqlite cache=redis elapsed=1.2s".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return log.Default()
	}
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
