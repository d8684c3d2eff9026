/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging for harness components
type Logger struct {
	logger    logr.Logger
	component string
	logLevel  string
}

var (
	rootMu  sync.RWMutex
	rootLog logr.Logger
	rootSet bool
)

// SetRoot replaces the root logger all component loggers derive from.
// Tests use this to capture output.
func SetRoot(l logr.Logger) {
	rootMu.Lock()
	defer rootMu.Unlock()
	rootLog = l
	rootSet = true
}

func root() logr.Logger {
	rootMu.RLock()
	if rootSet {
		defer rootMu.RUnlock()
		return rootLog
	}
	rootMu.RUnlock()

	rootMu.Lock()
	defer rootMu.Unlock()
	if !rootSet {
		rootLog = newZapRoot()
		rootSet = true
	}
	return rootLog
}

func newZapRoot() logr.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if getLogLevel() == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zl)
}

// NewLogger creates a new logger for the specified component
func NewLogger(component string) *Logger {
	return &Logger{
		logger:    root().WithName(component),
		component: component,
		logLevel:  getLogLevel(),
	}
}

// Info logs an info message with structured key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	if l.shouldLog("info") {
		l.logger.Info(msg, keysAndValues...)
	}
}

// Error logs an error message with structured key-value pairs
func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(err, msg, keysAndValues...)
}

// Debug logs a debug message (only shown if debug logging is enabled)
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	if l.shouldLog("debug") {
		l.logger.V(1).Info(msg, keysAndValues...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	if l.shouldLog("warn") {
		l.logger.Info("WARNING: "+msg, keysAndValues...)
	}
}

// WithValues returns a new logger with additional key-value pairs
func (l *Logger) WithValues(keysAndValues ...interface{}) *Logger {
	return &Logger{
		logger:    l.logger.WithValues(keysAndValues...),
		component: l.component,
		logLevel:  l.logLevel,
	}
}

// WithName returns a new logger with an additional name segment
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		logger:    l.logger.WithName(name),
		component: l.component + "." + name,
		logLevel:  l.logLevel,
	}
}

// GetComponent returns the component name
func (l *Logger) GetComponent() string {
	return l.component
}

// getLogLevel gets the current log level from environment
func getLogLevel() string {
	level := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if level == "" {
		return "info" // default
	}
	return level
}

// shouldLog determines if a message should be logged based on the current log level
func (l *Logger) shouldLog(messageLevel string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, exists := levels[l.logLevel]
	if !exists {
		currentLevel = levels["info"]
	}

	msgLevel, exists := levels[messageLevel]
	if !exists {
		msgLevel = levels["info"]
	}

	return msgLevel >= currentLevel
}

// Component loggers for common use cases
func ResolverLogger() *Logger {
	return NewLogger("resolver")
}

func ClientLogger() *Logger {
	return NewLogger("client")
}

func ScenarioLogger() *Logger {
	return NewLogger("scenario")
}

func CleanupLogger() *Logger {
	return NewLogger("cleanup")
}
