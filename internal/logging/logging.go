// Package logging builds the process logger and carries per-request log entries through
// the gin context.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const entryKey = "log_entry"

// New returns a logger writing to stdout. format is "json" or "text"; an unknown level
// falls back to info.
func New(level, format string) *logrus.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// WithEntry attaches a request-scoped entry to c.
func WithEntry(c *gin.Context, entry *logrus.Entry) {
	c.Set(entryKey, entry)
}

// Entry returns the request-scoped entry, or an entry on the standard logger when none
// was attached.
func Entry(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(entryKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
