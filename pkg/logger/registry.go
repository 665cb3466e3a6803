package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const defaultLevel = logrus.InfoLevel

var levels = map[string]logrus.Level{
	"trace":   logrus.TraceLevel,
	"debug":   logrus.DebugLevel,
	"info":    logrus.InfoLevel,
	"warn":    logrus.WarnLevel,
	"warning": logrus.WarnLevel,
	"error":   logrus.ErrorLevel,
}

// ValidLevels returns the accepted level names, sorted.
func ValidLevels() []string {
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseLevel reports whether name is a known level.
func ParseLevel(name string) (logrus.Level, error) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return defaultLevel, fmt.Errorf("invalid log level %q (valid: %s)", name, strings.Join(ValidLevels(), ", "))
	}
	return level, nil
}

// Registry tracks the level of each subsystem and the loggers created for
// it.
type Registry struct {
	mu          sync.Mutex
	fallback    logrus.Level
	bySubsystem map[string]logrus.Level
	loggers     map[string]*logrus.Logger
}

// NewRegistry parses a level spec. The spec is either a bare level ("debug")
// applied to every subsystem, or comma separated subsystem=level pairs,
// optionally mixed with one bare level used as the fallback:
//
//	info,forge=debug,server=warn
func NewRegistry(spec string) (*Registry, error) {
	r := &Registry{
		fallback:    defaultLevel,
		bySubsystem: make(map[string]logrus.Level),
		loggers:     make(map[string]*logrus.Logger),
	}
	if strings.TrimSpace(spec) == "" {
		return r, nil
	}
	for _, part := range strings.Split(spec, ",") {
		subsystem, name, found := strings.Cut(part, "=")
		if !found {
			level, err := ParseLevel(subsystem)
			if err != nil {
				return nil, err
			}
			r.fallback = level
			continue
		}
		level, err := ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("subsystem %s: %w", strings.TrimSpace(subsystem), err)
		}
		r.bySubsystem[strings.TrimSpace(subsystem)] = level
	}
	return r, nil
}

// Level returns the configured level for subsystem.
func (r *Registry) Level(subsystem string) logrus.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level, ok := r.bySubsystem[subsystem]; ok {
		return level
	}
	return r.fallback
}

// SetLevel changes the level of a subsystem, including loggers already
// handed out.
func (r *Registry) SetLevel(subsystem string, level logrus.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySubsystem[subsystem] = level
	if l, ok := r.loggers[subsystem]; ok {
		l.SetLevel(level)
	}
}

func (r *Registry) register(subsystem string, l *logrus.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[subsystem] = l
}
