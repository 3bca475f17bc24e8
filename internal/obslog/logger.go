// Package obslog provides the structured logger used across the simulation
// core. It wraps logrus the way the teacher's pkg/logger and
// infrastructure/logging packages do, but replaces the formatter with the
// fixed core log-line shape: "(<time>)[<name>(<uid>)]:: <body>".
package obslog

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// PrintLevel mirrors the core's print-level filtering knob (spec §9).
type PrintLevel int

const (
	PrintNone PrintLevel = iota
	PrintSummary
	PrintNormal
	PrintDebug
	PrintTrace
)

// Logger wraps a logrus.Logger scoped to a single named core object.
type Logger struct {
	*logrus.Logger
	name string
	uid  int64
}

// Config controls logger construction.
type Config struct {
	Level  string // "trace","debug","info","warn","error"
	Output io.Writer
}

// New creates a root logger. Output defaults to stdout.
func New(cfg Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetFormatter(&coreFormatter{})

	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	return &Logger{Logger: l}
}

// NewDefault creates a logger with info level to stdout, matching the
// teacher's NewDefault convenience constructor.
func NewDefault(name string) *Logger {
	return New(Config{Level: "info"}).Named(name, 0)
}

// Named returns a logger scoped to a specific object name/uid; this is what
// produces the "[<name>(<uid>)]" segment of the log line.
func (l *Logger) Named(name string, uid int64) *Logger {
	return &Logger{Logger: l.Logger, name: name, uid: uid}
}

// WithField mirrors the teacher's convenience wrapper, stamping the
// object name/uid onto every entry produced from this logger.
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.entry().WithField(key, value)
}

// WithFields mirrors the teacher's convenience wrapper.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.entry().WithFields(fields)
}

func (l *Logger) entry() *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"core_name": l.name,
		"core_uid":  l.uid,
	})
}

func (l *Logger) Tracef(format string, args ...interface{}) { l.entry().Tracef(format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry().Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry().Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry().Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry().Errorf(format, args...) }

// coreFormatter renders "(<time>)[<name>(<uid>)]:: <body>" per spec §6.
type coreFormatter struct{}

func (f *coreFormatter) Format(e *logrus.Entry) ([]byte, error) {
	name, _ := e.Data["core_name"].(string)
	uid, _ := e.Data["core_uid"].(int64)

	line := fmt.Sprintf("(%s)[%s(%d)]:: %s\n",
		e.Time.Format("15:04:05.000"), name, uid, e.Message)
	return []byte(line), nil
}
