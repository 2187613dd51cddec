package websocket

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockConn struct {
	id       string
	received [][]byte
	closed   bool
	sendErr  error
	mu       sync.Mutex
}

func newMockConn(id string) *mockConn {
	return &mockConn{id: id}
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) getReceived() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.received))
	copy(out, m.received)
	return out
}

func (m *mockConn) frames(t *testing.T) []map[string]interface{} {
	t.Helper()
	var frames []map[string]interface{}
	for _, raw := range m.getReceived() {
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &frame), "frame %s", raw)
		frames = append(frames, frame)
	}
	return frames
}

func (m *mockConn) framesOfType(t *testing.T, frameType string) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, f := range m.frames(t) {
		if f["type"] == frameType {
			out = append(out, f)
		}
	}
	return out
}
