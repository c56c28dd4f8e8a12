// Package logger builds the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stdout. Production output is JSON with the
// field names log collectors expect; development output is human readable.
func New(level string, production bool) *logrus.Logger {
	return NewWithWriter(os.Stdout, level, production)
}

func NewWithWriter(out io.Writer, level string, production bool) *logrus.Logger {
	log := logrus.New()
	log.Out = out

	if production {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	} else {
		log.Formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		log.Warnf("unknown LOG_LEVEL %q, falling back to info", level)
	}
	log.SetLevel(lvl)
	return log
}
