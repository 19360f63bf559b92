package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F is a shorthand for creating a Field
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      Level  // Minimum log level
	FilePath   string // Path to log file
	MaxSize    int64  // Max size in bytes before rotation
	MaxBackups int    // Max number of rotated files kept
	Console    bool   // Mirror entries to stderr
}

// DefaultConfig returns the default logger configuration. Console output is
// off so log lines never mix into CLI or TUI output.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Level:      INFO,
		FilePath:   filepath.Join(home, ".ironclock", "logs", "ironclock.log"),
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 5,
		Console:    false,
	}
}

// core is the shared state behind a Logger and all its WithFields children,
// so rotation and writes stay serialized across derived loggers.
type core struct {
	config  Config
	mu      sync.Mutex
	file    *os.File
	writers []io.Writer
}

// Logger is a leveled logger writing to a rotating file
type Logger struct {
	core   *core
	fields []Field
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Init initializes the global logger
func Init(config Config) error {
	var err error
	once.Do(func() {
		globalLogger, err = New(config)
	})
	return err
}

// New creates a new logger instance
func New(config Config) (*Logger, error) {
	c := &core{config: config}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		if err := c.open(); err != nil {
			return nil, err
		}
		if err := c.rotateIfNeeded(); err != nil {
			return nil, err
		}
	} else if config.Console {
		c.writers = []io.Writer{os.Stderr}
	}

	return &Logger{core: c}, nil
}

func (c *core) open() error {
	file, err := os.OpenFile(c.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	c.file = file
	c.writers = []io.Writer{file}
	if c.config.Console {
		c.writers = append(c.writers, os.Stderr)
	}
	return nil
}

// rotateIfNeeded rotates when the current file exceeds MaxSize. Callers hold
// no lock during New; log() calls it under the mutex.
func (c *core) rotateIfNeeded() error {
	if c.file == nil {
		return nil
	}
	info, err := c.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < c.config.MaxSize {
		return nil
	}
	return c.rotate()
}

// rotate shifts ironclock.log to .1, .1 to .2 and so on, dropping the oldest
func (c *core) rotate() error {
	c.file.Close()

	for i := c.config.MaxBackups - 1; i >= 1; i-- {
		os.Rename(
			fmt.Sprintf("%s.%d", c.config.FilePath, i),
			fmt.Sprintf("%s.%d", c.config.FilePath, i+1),
		)
	}
	if _, err := os.Stat(c.config.FilePath); err == nil {
		if err := os.Rename(c.config.FilePath, c.config.FilePath+".1"); err != nil {
			return err
		}
	}
	return c.open()
}

func (c *core) log(level Level, msg string, fields []Field) {
	if level < c.config.Level {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rotateIfNeeded()

	caller := "???"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s: %s",
		time.Now().Format("2006-01-02 15:04:05.000"), level, caller, msg)
	if len(fields) > 0 {
		b.WriteString(" |")
		for _, f := range fields {
			fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
		}
	}
	b.WriteByte('\n')

	for _, w := range c.writers {
		w.Write([]byte(b.String()))
	}
}

// WithFields creates a derived logger whose entries carry the preset fields
func (l *Logger) WithFields(fields ...Field) *Logger {
	combined := make([]Field, 0, len(l.fields)+len(fields))
	combined = append(combined, l.fields...)
	combined = append(combined, fields...)
	return &Logger{core: l.core, fields: combined}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) {
	l.core.log(DEBUG, msg, append(l.fields, fields...))
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) {
	l.core.log(INFO, msg, append(l.fields, fields...))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) {
	l.core.log(WARN, msg, append(l.fields, fields...))
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) {
	l.core.log(ERROR, msg, append(l.fields, fields...))
}

// Close closes the underlying log file
func (l *Logger) Close() error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	if l.core.file != nil {
		return l.core.file.Close()
	}
	return nil
}

// Global logger functions

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	if globalLogger != nil {
		globalLogger.Debug(msg, fields...)
	}
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	if globalLogger != nil {
		globalLogger.Info(msg, fields...)
	}
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	if globalLogger != nil {
		globalLogger.Warn(msg, fields...)
	}
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	if globalLogger != nil {
		globalLogger.Error(msg, fields...)
	}
}

// WithFields creates a derived logger from the global logger
func WithFields(fields ...Field) *Logger {
	if globalLogger != nil {
		return globalLogger.WithFields(fields...)
	}
	return nil
}

// Close closes the global logger
func Close() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}
