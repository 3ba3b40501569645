package runtime

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// CreateLogger returns a logrus logger with the given level, defaulting to
// "warn" when level is empty. Components should derive entries from it using
// WithField or WithFields rather than creating loggers of their own.
func CreateLogger(level string) (*logrus.Logger, error) {
	return CreateLoggerWithOutput(level, os.Stderr)
}

// CreateLoggerWithOutput is like CreateLogger, but writes to out.
func CreateLoggerWithOutput(level string, out io.Writer) (*logrus.Logger, error) {
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unable to parse logging level: %s", level)
	}

	logger := logrus.New()
	logger.Out = out
	logger.Level = lvl
	return logger, nil
}
