// Package logging builds the process-wide logrus logger, matching the
// teacher's text-formatted, level-filtered logger shape.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseLevel maps the spec's five level names onto logrus levels. Unknown
// input falls back to info, matching the CLI default.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	case "trace":
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// New builds a *logrus.Logger writing to out at the given level, using a
// text formatter with full timestamps — the same shape as the teacher's
// defaultFormatter().
func New(level logrus.Level, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return l
}

// WithTask returns an entry tagged with a task correlation id, used by the
// supervisor to thread one id through the log lines of a single exec/ping/
// terminal task.
func WithTask(l *logrus.Logger, kind, id string) *logrus.Entry {
	return l.WithFields(logrus.Fields{"task_kind": kind, "task_id": id})
}

// Fields is a small convenience alias so callers don't need to import
// logrus directly for the common case.
type Fields = logrus.Fields
