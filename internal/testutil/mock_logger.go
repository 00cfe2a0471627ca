// Package testutil provides common test doubles for the opinionspace platform.
package testutil

import (
	"sync"

	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry so tests can
// verify logging behaviour.
type MockLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// LogMessage is a single entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	return &MockLogger{Messages: make([]LogMessage, 0)}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, LogMessage{Level: level, Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger { return m }
func (m *MockLogger) Named(name string) logging.Logger            { return m }

var _ logging.Logger = (*MockLogger)(nil)

// GetMessages returns a copy of all captured entries.
func (m *MockLogger) GetMessages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogMessage, len(m.Messages))
	copy(out, m.Messages)
	return out
}

// HasMessage reports whether an entry with the given level and message was
// captured.
func (m *MockLogger) HasMessage(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logged := range m.Messages {
		if logged.Level == level && logged.Message == msg {
			return true
		}
	}
	return false
}
