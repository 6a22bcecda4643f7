package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents log level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel parses a log level string
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Options configures a Logger
type Options struct {
	Level      Level
	Format     string // console or json
	Console    io.Writer
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	Source     string
}

// Logger is the main logger
type Logger struct {
	mu     sync.Mutex
	zl     zerolog.Logger
	level  Level
	closer io.Closer
}

// NewLogger creates a new logger. The console writer gets human readable
// output, the log file (if any) gets JSON lines.
func NewLogger(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var writers []io.Writer
	if strings.EqualFold(opts.Format, "json") {
		writers = append(writers, console)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: "15:04:05",
			NoColor:    console != os.Stderr,
		})
	}

	var closer io.Closer
	if opts.FilePath != "" {
		file, err := CreateLogFile(opts.FilePath, opts.MaxSizeMB, opts.MaxBackups)
		if err != nil {
			return nil, err
		}
		closer = file
		writers = append(writers, file)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
	if opts.Source != "" {
		ctx = ctx.Str("source", opts.Source)
	}

	return &Logger{
		zl:     ctx.Logger().Level(opts.Level.zerolog()),
		level:  opts.Level,
		closer: closer,
	}, nil
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zl = l.zl.Level(level.zerolog())
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) event(level Level) *zerolog.Event {
	l.mu.Lock()
	zl := l.zl
	l.mu.Unlock()

	switch level {
	case DEBUG:
		return zl.Debug()
	case WARN:
		return zl.Warn()
	case ERROR:
		return zl.Error()
	default:
		return zl.Info()
	}
}

func (l *Logger) log(level Level, format string, args []interface{}) {
	if len(args) == 0 {
		l.event(level).Msg(format)
		return
	}
	l.event(level).Msgf(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args)
}

// WithFields logs message with structured fields attached
func (l *Logger) WithFields(level Level, message string, fields map[string]interface{}) {
	l.event(level).Fields(fields).Msg(message)
}

// Close closes the log file if one was opened
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// CreateLogFile creates a size-rotated log file writer
func CreateLogFile(logPath string, maxSizeMB, maxBackups int) (io.WriteCloser, error) {
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}, nil
}

// Global logger instance
var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()

	if l == nil {
		// Return a default logger if not initialized
		l, _ = NewLogger(Options{Level: WARN, Source: "procsup"})
	}
	return l
}
