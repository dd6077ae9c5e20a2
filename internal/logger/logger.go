// Package logger provides leveled logging for the digest pipeline.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

type leveled struct {
	min Level
	out *log.Logger
}

var std *leveled

// Init initializes the default logger. Format "text" adds caller file:line;
// any other format keeps timestamps only.
func Init(level, format string) {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	std = &leveled{min: parseLevel(level), out: log.New(os.Stderr, "", flags)}
}

// SetOutput redirects log output, primarily for tests.
func SetOutput(w io.Writer) {
	if std != nil {
		std.out.SetOutput(w)
	}
}

func emit(lvl Level, tag, format string, args ...interface{}) {
	if std == nil || lvl < std.min {
		return
	}
	_ = std.out.Output(3, fmt.Sprintf(tag+format, args...))
}

func Debug(format string, args ...interface{}) { emit(DebugLevel, "[DEBUG] ", format, args...) }
func Info(format string, args ...interface{})  { emit(InfoLevel, "[INFO] ", format, args...) }
func Warn(format string, args ...interface{})  { emit(WarnLevel, "[WARN] ", format, args...) }
func Error(format string, args ...interface{}) { emit(ErrorLevel, "[ERROR] ", format, args...) }

// Fatal logs at error level and exits the process.
func Fatal(format string, args ...interface{}) {
	if std != nil {
		_ = std.out.Output(3, fmt.Sprintf("[FATAL] "+format, args...))
	}
	os.Exit(1)
}
