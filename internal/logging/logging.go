// Package logging provides leveled logging on top of the standard logger.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/natefinch/lumberjack"
)

// Level is the severity of a log message.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var current atomic.Int32

func init() {
	current.Store(int32(LevelInfo))
}

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// SetLevel changes the minimum level that is written.
func SetLevel(l Level) {
	current.Store(int32(l))
}

// GetLevel returns the minimum level that is written.
func GetLevel() Level {
	return Level(current.Load())
}

// Setup sends the standard logger to stderr and, when file is set, to a
// rotating log file as well.
func Setup(level Level, file string) {
	SetLevel(level)
	var w io.Writer = os.Stderr
	if file != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		})
	}
	log.SetOutput(w)
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	if GetLevel() <= LevelDebug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message.
func Info(format string, args ...any) {
	if GetLevel() <= LevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	if GetLevel() <= LevelWarn {
		log.Printf("[WARN] "+format, args...)
	}
}

// Error logs an error.
func Error(format string, args ...any) {
	if GetLevel() <= LevelError {
		log.Printf("[ERROR] "+format, args...)
	}
}
