// Package logging provides the shared structured logger for LifeLedger sync.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	global *logrus.Logger
	once   sync.Once
)

// Init initializes the global logger with the given level. Safe to call
// more than once; only the first call takes effect.
func Init(level string) {
	once.Do(func() {
		global = newLogger(level)
	})
}

// Get returns the global logger instance.
func Get() *logrus.Logger {
	if global == nil {
		Init("info")
	}
	return global
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

// WithComponent returns an entry tagged with the component name.
// Components log through this so every line carries its origin.
func WithComponent(name string) *logrus.Entry {
	return Get().WithField("component", name)
}
