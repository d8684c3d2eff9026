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
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger("test-component")
	assert.NotNil(t, logger)
	assert.Equal(t, "test-component", logger.GetComponent())
}

func TestWithName(t *testing.T) {
	logger := NewLogger("base")
	childLogger := logger.WithName("child")
	assert.Equal(t, "base.child", childLogger.GetComponent())
}

func TestWithValues(t *testing.T) {
	logger := NewLogger("test")
	loggerWithValues := logger.WithValues("key", "value")
	assert.NotNil(t, loggerWithValues)
	assert.Equal(t, "test", loggerWithValues.GetComponent())
}

func TestComponentLoggers(t *testing.T) {
	resolverLogger := ResolverLogger()
	assert.NotNil(t, resolverLogger)
	assert.Contains(t, resolverLogger.GetComponent(), "resolver")

	clientLogger := ClientLogger()
	assert.NotNil(t, clientLogger)
	assert.Contains(t, clientLogger.GetComponent(), "client")

	cleanupLogger := CleanupLogger()
	assert.NotNil(t, cleanupLogger)
	assert.Contains(t, cleanupLogger.GetComponent(), "cleanup")
}

func TestSetRootCapturesOutput(t *testing.T) {
	var lines []string
	SetRoot(funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{}))
	defer SetRoot(logr.Discard())

	logger := NewLogger("capture")
	logger.Info("hello", "key", "value")

	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "capture")
	assert.Contains(t, lines[0], "hello")
}

func TestLoggingMethods(t *testing.T) {
	logger := NewLogger("test")

	// These should not panic
	logger.Info("test info message", "key", "value")
	logger.Debug("test debug message", "key", "value")
	logger.Warn("test warning message", "key", "value")
	logger.Error(nil, "test error message", "key", "value")
}
