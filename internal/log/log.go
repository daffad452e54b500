// Package log wires logrus with daily rotated files, one per level, so the
// terminal stays free for the TUI.
package log

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/mrnim94/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// Options controls where log output goes.
type Options struct {
	Dir    string // rotated files are written here; "" disables file output
	Stdout bool   // also write to stderr (headless commands)
	Level  logrus.Level
}

// InitLogger configures the package logger and returns it.
func InitLogger(opts Options) *logrus.Logger {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logger.SetLevel(opts.Level)

	if opts.Stdout {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(io.Discard)
	}

	logger.ReplaceHooks(make(logrus.LevelHooks))
	if opts.Dir != "" {
		if hook, err := fileHook(opts.Dir); err == nil {
			logger.AddHook(hook)
		} else if opts.Stdout {
			logger.Warnf("file logging disabled: %v", err)
		}
	}
	return logger
}

func fileHook(dir string) (logrus.Hook, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	writer := func(name string) (io.Writer, error) {
		return rotatelogs.New(
			filepath.Join(dir, name+"_%Y%m%d.log"),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
	}
	info, err := writer("info")
	if err != nil {
		return nil, err
	}
	errs, err := writer("error")
	if err != nil {
		return nil, err
	}
	return lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: info,
		logrus.InfoLevel:  info,
		logrus.WarnLevel:  info,
		logrus.ErrorLevel: errs,
		logrus.FatalLevel: errs,
		logrus.PanicLevel: errs,
	}, &logrus.JSONFormatter{}), nil
}

// GetLogLevel parses a level name, defaulting to info.
func GetLogLevel(name string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// WithField returns an entry carrying one structured field.
func WithField(key string, value interface{}) *logrus.Entry {
	return logger.WithField(key, value)
}

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Info(args ...interface{})                  { logger.Info(args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
