// Package logger provides the shared logging setup for the benchmark runner.
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	root *logrus.Logger
)

// Init configures the process-wide logger. Level and format are taken from
// the LOG_LEVEL and LOG_FORMAT environment variables ("info" and "text" when
// unset). Safe to call more than once; only the first call configures.
func Init() *logrus.Logger {
	once.Do(func() {
		root = logrus.New()

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.InfoLevel
		}
		root.SetLevel(level)

		if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
			root.SetFormatter(&logrus.JSONFormatter{})
		} else {
			root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}
		root.SetOutput(os.Stdout)
	})
	return root
}

// Named returns an entry tagged with the given component name.
func Named(component string) *logrus.Entry {
	return Init().WithField("component", component)
}
