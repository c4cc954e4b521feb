package logging

// Structured logging for ipview

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelVerbose
	LogLevelDebug
)

// ParseLevel parses a config-file level name.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "silent":
		return LogLevelSilent, nil
	case "error":
		return LogLevelError, nil
	case "", "info":
		return LogLevelInfo, nil
	case "verbose":
		return LogLevelVerbose, nil
	case "debug":
		return LogLevelDebug, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger provides structured logging
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	file     *os.File
	fileLog  *log.Logger
	stdout   *log.Logger
	stderr   *log.Logger
	format   string
	logEvery int
	counter  int
}

// NewLogger creates a new logger
func NewLogger(level LogLevel, logFile string) (*Logger, error) {
	return NewLoggerWithOptions(level, logFile, "text", 1)
}

// NewLoggerWithOptions creates a logger with an output format ("text" or
// "json") and a console sampling rate: only every logEvery-th message is
// printed to the console when no log file is configured.
func NewLoggerWithOptions(level LogLevel, logFile, format string, logEvery int) (*Logger, error) {
	if format == "" {
		format = "text"
	}
	if logEvery < 1 {
		logEvery = 1
	}
	l := &Logger{
		level:    level,
		stdout:   log.New(os.Stdout, "", 0),
		stderr:   log.New(os.Stderr, "", 0),
		format:   format,
		logEvery: logEvery,
	}

	// Open log file if specified
	if logFile != "" {
		file, err := os.Create(logFile)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		l.file = file
		l.fileLog = log.New(file, "", log.LstdFlags)
	}

	return l, nil
}

// Close closes the logger and flushes all data
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	if l.level >= LogLevelError {
		l.write("ERROR: ", fmt.Sprintf(format, v...), true)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	if l.level >= LogLevelInfo {
		l.write("INFO: ", fmt.Sprintf(format, v...), false)
	}
}

// Verbose logs a verbose message
func (l *Logger) Verbose(format string, v ...interface{}) {
	if l.level >= LogLevelVerbose {
		l.write("VERBOSE: ", fmt.Sprintf(format, v...), false)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level >= LogLevelDebug {
		l.write("DEBUG: ", fmt.Sprintf(format, v...), false)
	}
}

// levelLabel maps the error flag to the JSON level name.
func levelLabel(isError bool) string {
	if isError {
		return "error"
	}
	return "info"
}

// write writes a message to the appropriate outputs
func (l *Logger) write(prefix, msg string, isError bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := prefix + msg
	if l.format == "json" {
		entry := struct {
			Time    string `json:"time"`
			Level   string `json:"level"`
			Message string `json:"message"`
		}{time.Now().Format(time.RFC3339), levelLabel(isError), msg}
		if b, err := json.Marshal(entry); err == nil {
			out = string(b)
		}
	}

	l.counter++

	// Always write to log file if available. Without a file the sampling
	// rate gates console output instead.
	if l.fileLog != nil {
		l.fileLog.Println(out)
	} else if l.logEvery > 1 && l.counter%l.logEvery != 0 {
		return
	}

	// Errors go to stderr, others to stdout (but only if verbose/debug)
	if isError {
		l.stderr.Println(out)
	} else if l.level >= LogLevelVerbose {
		l.stdout.Println(out)
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// LogCapture logs the outcome of one capture session
func (l *Logger) LogCapture(iface string, packets int, totalBytes uint64, elapsed time.Duration, err error) {
	if err != nil {
		l.Info("FAILED capture on %s after %s (%d packets, %d bytes) - error: %v",
			iface, elapsed.Round(time.Millisecond), packets, totalBytes, err)
		return
	}
	l.Verbose("FINISHED capture on %s in %s (%d packets, %d bytes)",
		iface, elapsed.Round(time.Millisecond), packets, totalBytes)
}

// LogStartup logs startup information
func (l *Logger) LogStartup(iface string, snaplen int, promiscuous bool, samplingMs, refreshMs int, configPath string) {
	l.Info("Starting ipview")
	l.Verbose("  Interface: %s", iface)
	l.Verbose("  Snaplen: %d", snaplen)
	l.Verbose("  Promiscuous: %v", promiscuous)
	l.Verbose("  Sampling interval: %d ms", samplingMs)
	l.Verbose("  Chart refresh: %d ms", refreshMs)
	l.Verbose("  Config: %s", configPath)
}

// LogHex logs hex data (for debug level)
func (l *Logger) LogHex(label string, data []byte) {
	if l.level >= LogLevelDebug {
		hexStr := fmt.Sprintf("%x", data)
		// Format as hex with spaces every 2 bytes
		formatted := ""
		for i := 0; i < len(hexStr); i += 2 {
			if i > 0 {
				formatted += " "
			}
			if i+2 <= len(hexStr) {
				formatted += hexStr[i : i+2]
			} else {
				formatted += hexStr[i:]
			}
		}
		l.Debug("%s: %s", label, formatted)
	}
}

// MultiWriter creates an io.Writer that writes to multiple writers
type MultiWriter struct {
	writers []io.Writer
}

// NewMultiWriter creates a new multi-writer
func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes to all writers
func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		n, err = w.Write(p)
		if err != nil {
			return n, err
		}
	}
	return len(p), nil
}
