/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger provides levelled logging for stages and runners.
// Components receive a Logger through options and fall back to the
// package default.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level defines log levels
type Level int32

const (
	// DEBUG per-record and per-group detail
	DEBUG Level = iota
	// INFO plan decisions and run summaries
	INFO
	// WARN degraded but continuing
	WARN
	// ERROR failures
	ERROR
	// OFF disables logging
	OFF
)

// String returns string representation of log level
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
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, case insensitive
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "OFF", "NONE":
		return OFF, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Logger interface defines basic methods for logging
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	// SetLevel sets the minimum level written
	SetLevel(level Level)
	// With returns a logger sharing the output and level that prefixes
	// every message with name, e.g. "run=3f2a".
	With(name string) Logger
}

// defaultLogger writes "[time] [LEVEL] prefix message" lines. Safe for
// concurrent use.
type defaultLogger struct {
	level  *atomic.Int32
	logger *log.Logger
	prefix string
}

// NewLogger creates a new logger
//
// Example:
//
//	l := NewLogger(INFO, os.Stdout)
//	l.Info("stage %s planned row-wise", name)
func NewLogger(level Level, output io.Writer) Logger {
	lvl := &atomic.Int32{}
	lvl.Store(int32(level))
	return &defaultLogger{
		level:  lvl,
		logger: log.New(output, "", 0),
	}
}

func (l *defaultLogger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func (l *defaultLogger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *defaultLogger) With(name string) Logger {
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + " " + name
	}
	return &defaultLogger{level: l.level, logger: l.logger, prefix: prefix}
}

func (l *defaultLogger) log(level Level, format string, args ...interface{}) {
	current := Level(l.level.Load())
	if current == OFF || level < current {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		l.logger.Printf("[%s] [%s] %s %s", timestamp, level.String(), l.prefix, message)
		return
	}
	l.logger.Printf("[%s] [%s] %s", timestamp, level.String(), message)
}

// discardLogger is a logger that discards all log output
type discardLogger struct{}

// NewDiscardLogger creates a logger that discards all logs
func NewDiscardLogger() Logger {
	return discardLogger{}
}

func (discardLogger) Debug(format string, args ...interface{}) {}
func (discardLogger) Info(format string, args ...interface{})  {}
func (discardLogger) Warn(format string, args ...interface{})  {}
func (discardLogger) Error(format string, args ...interface{}) {}
func (discardLogger) SetLevel(level Level)                     {}
func (d discardLogger) With(name string) Logger                { return d }

var defaultInstance atomic.Value

func init() {
	defaultInstance.Store(holder{NewLogger(INFO, os.Stdout)})
}

// holder keeps the stored dynamic type constant for atomic.Value
type holder struct{ Logger }

// SetDefault sets the global default logger
func SetDefault(logger Logger) {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	defaultInstance.Store(holder{logger})
}

// GetDefault gets the global default logger
func GetDefault() Logger {
	return defaultInstance.Load().(holder).Logger
}

// Debug uses the default logger to record debug information
func Debug(format string, args ...interface{}) {
	GetDefault().Debug(format, args...)
}

// Info uses the default logger to record information
func Info(format string, args ...interface{}) {
	GetDefault().Info(format, args...)
}

// Warn uses the default logger to record warnings
func Warn(format string, args ...interface{}) {
	GetDefault().Warn(format, args...)
}

// Error uses the default logger to record errors
func Error(format string, args ...interface{}) {
	GetDefault().Error(format, args...)
}
