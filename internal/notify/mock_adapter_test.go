package notify

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter is an in-memory Adapter for tests. It records every sent
// message and can be configured to fail.
type MockAdapter struct {
	mu       sync.Mutex
	sent     []Message
	failSend error
	closed   bool
}

// NewMockAdapter creates a MockAdapter.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// FailSends makes subsequent Send calls return err (nil restores success).
func (m *MockAdapter) FailSends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend = err
}

// Sent returns a copy of all sent messages.
func (m *MockAdapter) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *MockAdapter) Connect(ctx context.Context) error { return nil }

func (m *MockAdapter) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock: closed")
	}
	if m.failSend != nil {
		return m.failSend
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
