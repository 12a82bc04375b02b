// Package diag wires structured logging for the executor and assembler,
// with plain-text or JSON output and an optional color toggle.
package diag

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Format selects the on-disk/on-wire shape of log lines.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// NewLogger builds a *logrus.Logger configured for a single run. color only
// affects the "text" formatter; JSON output is never colorized.
func NewLogger(out io.Writer, format Format, color bool, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	switch format {
	case FormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors:    !color,
			FullTimestamp:    false,
			DisableTimestamp: true,
		})
	}
	return log
}
