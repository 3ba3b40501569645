package runtime

import (
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	debugOnce   sync.Once
	debugLogger *logrus.Logger
)

// debugPattern compiles the comma separated list of glob patterns in the
// DEBUG environment variable, for example DEBUG=system,ioext or DEBUG=*.
func debugPattern(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	pattern = regexp.QuoteMeta(pattern)
	pattern = strings.Replace(pattern, "\\*", ".*?", -1)
	pattern = strings.Replace(pattern, ",", "|", -1)
	return regexp.MustCompile("^(" + pattern + ")$")
}

func debugDisabled(string, ...interface{}) {}

// Debug returns a debug(format, args...) function that prints messages to
// stderr if name matches the DEBUG environment variable.
//
// This is for development tracing only, messages with value in production
// belong in the logrus logger passed to the component.
func Debug(name string) func(string, ...interface{}) {
	p := debugPattern(os.Getenv("DEBUG"))
	if p == nil || !p.MatchString(name) {
		return debugDisabled
	}

	debugOnce.Do(func() {
		debugLogger = logrus.New()
		debugLogger.Out = os.Stderr
		debugLogger.Level = logrus.DebugLevel
		debugLogger.Formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000000",
		}
	})
	entry := debugLogger.WithField("component", name)

	return func(format string, args ...interface{}) {
		entry.Debugf(format, args...)
	}
}
