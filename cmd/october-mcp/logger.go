package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// maxLogFileMB bounds the log file; it is trimmed on startup
const maxLogFileMB = 10

var levels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// leveledLogger writes to stderr and, when configured, to a log file.
// stdout belongs to the MCP stdio transport.
type leveledLogger struct {
	level   int
	logFile *os.File
}

func (l *leveledLogger) setLevel(level string) {
	if n, ok := levels[strings.ToLower(level)]; ok {
		l.level = n
	}
}

func (l *leveledLogger) logf(level, format string, args ...interface{}) {
	if levels[level] < l.level {
		return
	}
	line := fmt.Sprintf("["+strings.ToUpper(level)+"] "+format+"\n", args...)
	fmt.Fprint(os.Stderr, line)
	if l.logFile != nil {
		fmt.Fprint(l.logFile, line)
	}
}

func (l *leveledLogger) Debug(format string, args ...interface{}) { l.logf("debug", format, args...) }
func (l *leveledLogger) Info(format string, args ...interface{})  { l.logf("info", format, args...) }
func (l *leveledLogger) Warn(format string, args ...interface{})  { l.logf("warn", format, args...) }
func (l *leveledLogger) Error(format string, args ...interface{}) { l.logf("error", format, args...) }

var logger = &leveledLogger{level: levels["info"]}

// initLogger routes the standard logger (used by the indexer and watcher)
// to stderr and the optional log file. OCTOBER_LOG_FILE wins over the
// configured path.
func initLogger(level, path string) {
	logger.setLevel(level)
	log.SetOutput(os.Stderr)

	if env := os.Getenv("OCTOBER_LOG_FILE"); env != "" {
		path = env
	}
	if path == "" {
		return
	}

	rotateLogFile(path, maxLogFileMB)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to open log file %s: %v\n", path, err)
		return
	}
	logger.logFile = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}

// rotateLogFile drops the oldest tenth of a log file larger than limitMB,
// cutting at a line boundary
func rotateLogFile(path string, limitMB int) {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= int64(limitMB)*1024*1024 {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	cut := len(data) / 10
	if i := bytes.IndexByte(data[cut:], '\n'); i >= 0 {
		cut += i + 1
	} else {
		cut = len(data)
	}
	if err := os.WriteFile(path, data[cut:], 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to rotate log file %s: %v\n", path, err)
	}
}
