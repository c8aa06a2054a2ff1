// logger/logger.go
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const colorReset = "\033[0m"

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// levelTag maps each level to its console prefix and ANSI color.
var levelTag = map[LogLevel]struct {
	label string
	color string
}{
	DEBUG: {"[DEBUG] ", "\033[90m"},
	INFO:  {"[INFO]  ", ""},
	WARN:  {"[WARN]  ", "\033[33m"},
	ERROR: {"[ERROR] ", "\033[31m"},
}

// Logger writes leveled messages to a console writer (with color) and an
// optional log file (without color).
type Logger struct {
	console  io.Writer
	file     *os.File
	minLevel LogLevel
}

var (
	std  *Logger
	once sync.Once
	mu   sync.Mutex
)

// ensureInitialized creates a console-only logger if Init was never called.
func ensureInitialized() {
	once.Do(func() {
		if std == nil {
			std = &Logger{console: os.Stdout, minLevel: DEBUG}
		}
	})
}

// Init initializes the process logger with optional file and console output.
// If filename is empty, logs only to console. If console is false, logs only
// to the file.
func Init(filename string, console bool) error {
	mu.Lock()
	defer mu.Unlock()

	if std != nil && std.file != nil {
		std.file.Close()
	}

	l := &Logger{minLevel: DEBUG}
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
	}
	if console {
		l.console = os.Stdout
	}
	if l.file == nil && l.console == nil {
		return fmt.Errorf("no output destination specified")
	}

	std = l
	return nil
}

// SetLevel sets the minimum log level. Messages below it are dropped.
func SetLevel(level LogLevel) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	std.minLevel = level
}

// Close closes the log file if one is open.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if std != nil && std.file != nil {
		std.file.Close()
		std.file = nil
	}
}

func (l *Logger) emit(level LogLevel, msg string) {
	if level < l.minLevel {
		return
	}
	tag := levelTag[level]
	if l.console != nil {
		prefix := tag.label
		if tag.color != "" {
			prefix = tag.color + tag.label + colorReset
		}
		log.New(l.console, prefix, log.Ldate|log.Ltime).Output(4, msg)
	}
	if l.file != nil {
		log.New(l.file, tag.label, log.Ldate|log.Ltime).Output(4, msg)
	}
}

func write(level LogLevel, msg string) {
	ensureInitialized()
	mu.Lock()
	l := std
	mu.Unlock()
	l.emit(level, msg)
}

// Debug logs a debug message.
func Debug(v ...interface{}) { write(DEBUG, fmt.Sprint(v...)) }

// Debugf logs a formatted debug message.
func Debugf(format string, v ...interface{}) { write(DEBUG, fmt.Sprintf(format, v...)) }

// Info logs an info message.
func Info(v ...interface{}) { write(INFO, fmt.Sprint(v...)) }

// Infof logs a formatted info message.
func Infof(format string, v ...interface{}) { write(INFO, fmt.Sprintf(format, v...)) }

// Warn logs a warning message.
func Warn(v ...interface{}) { write(WARN, fmt.Sprint(v...)) }

// Warnf logs a formatted warning message.
func Warnf(format string, v ...interface{}) { write(WARN, fmt.Sprintf(format, v...)) }

// Error logs an error message.
func Error(v ...interface{}) { write(ERROR, fmt.Sprint(v...)) }

// Errorf logs a formatted error message.
func Errorf(format string, v ...interface{}) { write(ERROR, fmt.Sprintf(format, v...)) }

// Fatal logs an error message and exits the process.
func Fatal(v ...interface{}) {
	write(ERROR, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs a formatted error message and exits the process.
func Fatalf(format string, v ...interface{}) {
	write(ERROR, fmt.Sprintf(format, v...))
	os.Exit(1)
}
