// Package logger provides structured, per-subsystem logging on top of
// logrus.
//
// Each subsystem (forge, server, cli, ledger, ...) gets its own logger
// tagged with a "system" field. Output on a terminal is text, everything
// else gets JSON lines.
package logger

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

type Log interface {
	WithField(name string, value interface{}) Log
	WithFields(fields Fields) Log
	WithError(err error) Log
	Debug(args ...interface{})
	Debugf(msg string, args ...interface{})
	Info(args ...interface{})
	Infof(msg string, args ...interface{})
	Warn(args ...interface{})
	Warnf(msg string, args ...interface{})
	Error(args ...interface{})
	Errorf(msg string, args ...interface{})
}

// Fields is a set of keys/values to include in a structured log message.
type Fields map[string]interface{}

// Factory produces the logger for a subsystem.
type Factory func(subsystem string) Log

type logrusLog struct {
	*logrus.Entry
}

func (l *logrusLog) WithField(name string, value interface{}) Log {
	return &logrusLog{Entry: l.Entry.WithField(name, value)}
}

func (l *logrusLog) WithFields(fields Fields) Log {
	return &logrusLog{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLog) WithError(err error) Log {
	return &logrusLog{Entry: l.Entry.WithError(err)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// NewFactory returns a Factory writing to out.
func NewFactory(registry *Registry, out io.Writer) Factory {
	terminal := isTerminal(out)
	return func(subsystem string) Log {
		l := logrus.New()
		l.SetLevel(registry.Level(subsystem))
		l.SetOutput(out)
		if terminal {
			l.SetFormatter(&logrus.TextFormatter{
				TimestampFormat: timestampFormat,
				FullTimestamp:   true,
				DisableQuote:    true,
			})
		} else {
			l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
		}
		registry.register(subsystem, l)
		return &logrusLog{Entry: l.WithField("system", subsystem)}
	}
}

// Stderr is the factory used by the CLI and server.
func Stderr(registry *Registry) Factory {
	return NewFactory(registry, os.Stderr)
}

type noOpLog struct{}

// NoOp is a Factory for when logging is not wanted, mostly tests.
func NoOp(string) Log { return noOpLog{} }

func (noOpLog) WithField(string, interface{}) Log { return noOpLog{} }
func (noOpLog) WithFields(Fields) Log             { return noOpLog{} }
func (noOpLog) WithError(error) Log               { return noOpLog{} }
func (noOpLog) Debug(...interface{})              {}
func (noOpLog) Debugf(string, ...interface{})     {}
func (noOpLog) Info(...interface{})               {}
func (noOpLog) Infof(string, ...interface{})      {}
func (noOpLog) Warn(...interface{})               {}
func (noOpLog) Warnf(string, ...interface{})      {}
func (noOpLog) Error(...interface{})              {}
func (noOpLog) Errorf(string, ...interface{})     {}
