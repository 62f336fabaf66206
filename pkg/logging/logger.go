package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents the logging verbosity level
type Level int

const (
	// LevelQuiet shows only warnings and errors
	LevelQuiet Level = iota
	// LevelNormal shows flow milestones (default)
	LevelNormal
	// LevelVerbose shows individual automation steps
	LevelVerbose
	// LevelDebug shows everything, including network filter decisions
	LevelDebug
)

// ParseLevel converts a verbosity name to a Level.
// The second return value is false for unknown names.
func ParseLevel(name string) (Level, bool) {
	switch name {
	case "quiet":
		return LevelQuiet, true
	case "normal", "":
		return LevelNormal, true
	case "verbose":
		return LevelVerbose, true
	case "debug":
		return LevelDebug, true
	default:
		return LevelNormal, false
	}
}

// output is shared by a logger and every child derived from it.
type output struct {
	mu        sync.Mutex
	logger    *log.Logger
	file      *os.File
	closeOnce sync.Once
}

// Logger provides component-scoped levelled logging.
//
// Lines are formatted as "[timestamp] [component] [LEVEL] message". Child
// loggers created with With share the parent's destination and level.
type Logger struct {
	component string
	level     Level
	out       *output
}

// New creates a logger writing to w.
func New(w io.Writer, component string, level Level) *Logger {
	return &Logger{
		component: component,
		level:     level,
		out:       &output{logger: log.New(w, "", 0)},
	}
}

// NewFile creates a logger that appends to the file at path, creating parent
// directories as needed.
//
// If the file cannot be opened it returns a fallback logger that writes to
// stderr along with the error, so callers can warn and keep going.
func NewFile(path, component string, level Level) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return newFallbackLogger(component, level, err), err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, level, err), err
	}

	l := New(file, component, level)
	l.out.file = file
	return l, nil
}

func newFallbackLogger(component string, level Level, err error) *Logger {
	l := New(os.Stderr, component, level)
	l.Warnf("failed to initialize file logging: %v", err)
	l.Warnf("falling back to stderr logging")
	return l
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New(io.Discard, "discard", LevelQuiet)
}

// With returns a child logger for another component.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{component: component, level: l.level, out: l.out}
}

// Level returns the configured verbosity.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) write(min Level, tag, format string, v ...interface{}) {
	if l == nil || l.level < min {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, v...)

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, tag, message)
}

// Infof logs a flow milestone.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.write(LevelNormal, "INFO", format, v...)
}

// Verbosef logs an individual step.
func (l *Logger) Verbosef(format string, v ...interface{}) {
	l.write(LevelVerbose, "VERBOSE", format, v...)
}

// Debugf logs internal details.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, v...)
}

// Warnf logs a warning. Shown at every level.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write(LevelQuiet, "WARN", format, v...)
}

// Errorf logs an error. Shown at every level.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write(LevelQuiet, "ERROR", format, v...)
}

// Close closes the log file, if any. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.out.closeOnce.Do(func() {
		if l.out.file != nil {
			err = l.out.file.Close()
		}
	})
	return err
}
