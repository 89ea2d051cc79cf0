package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// global accessible logger
var (
	Logger *logrus.Logger
)

// This init function is also for testing cases, where the entry point is not
// main function. Packages log through the global logger and would nil pointer
// dereference if we don't init here.
func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(os.Getenv("MOODTUNES_LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
}
