// ABOUTME: Global structured logger built on logrus.
// ABOUTME: Writes to stderr so command output on stdout stays machine-readable.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Init configures level and format. Format is "json" or "text"; anything
// else falls back to text.
func Init(level, format string) {
	Log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		if level != "" {
			Log.Warnf("invalid log level %q, defaulting to warn", level)
		}
		lvl = logrus.WarnLevel
	}
	Log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	Log.Debugf("log level set to %s", Log.GetLevel())
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}
