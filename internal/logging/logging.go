// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options select the logger's verbosity and output encoding.
type Options struct {
	Verbose bool
	// Format is "text" or "json".
	Format string
	Output io.Writer
}

// New returns a logger writing to stderr unless Output is set. Verbose
// enables debug output.
func New(opts Options) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if opts.Output != nil {
		log.SetOutput(opts.Output)
	}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("unknown log format %q", opts.Format)
	}

	log.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log, nil
}
