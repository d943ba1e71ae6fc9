package contract

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger. Output goes to stderr so that
// stdout stays reserved for results.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// ConfigureLogger applies the --log-level and --log-format settings.
func ConfigureLogger(level, format string) error {
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid --log-level value: %w", err)
		}
		Logger.SetLevel(lvl)
	}
	switch format {
	case "", "text":
		Logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid --log-format value '%s'. must be text, json", format)
	}
	return nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning with an optional cause.
func LogWarn(msg string, err error) {
	entry := logrus.NewEntry(Logger)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(msg)
}

// LogDebug logs a debug message with structured fields.
func LogDebug(msg string, fields logrus.Fields) {
	Logger.WithFields(fields).Debug(msg)
}
