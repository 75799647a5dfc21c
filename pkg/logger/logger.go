// Package logger is the process-wide logrus logger. Until Init runs, output
// goes to stderr at warn level so early failures are still visible.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	log      *logrus.Logger
	fallback = newFallback()
)

func newFallback() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

func std() *logrus.Logger {
	if log != nil {
		return log
	}
	return fallback
}

// Init configures the logger. Unknown levels fall back to info and unknown
// formats to text with full timestamps.
func Init(level, format string) error {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetOutput(os.Stdout)

	log = l
	return nil
}

// SetOutput redirects log output. The terminal client uses it to keep stdout
// for the conversation.
func SetOutput(w io.Writer) {
	std().SetOutput(w)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return std().WithFields(fields)
}

func Debug(args ...interface{}) { std().Debug(args...) }
func Info(args ...interface{})  { std().Info(args...) }
func Warn(args ...interface{})  { std().Warn(args...) }
func Error(args ...interface{}) { std().Error(args...) }
func Fatal(args ...interface{}) { std().Fatal(args...) }

func Debugf(format string, args ...interface{}) { std().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { std().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { std().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { std().Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { std().Fatalf(format, args...) }
