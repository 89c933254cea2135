package websocket

import (
	"testing"
	"time"

	"ai-answer-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }
func (noopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (noopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

func (h *Hub) clientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func TestHubDropsSlowConsumerWithoutPanic(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	go hub.Run()

	client := &Client{Hub: hub, SessionID: "sess-1", Send: make(chan []byte)}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.clientCount("sess-1") == 1 },
		time.Second, 5*time.Millisecond)

	// Nothing reads Send, so delivery overflows the buffer and the hub
	// must unregister the client rather than crash the Run loop.
	hub.Send("sess-1", []byte(`{"stage":"search","status":"start"}`))

	require.Eventually(t, func() bool { return hub.clientCount("sess-1") == 0 },
		time.Second, 5*time.Millisecond)

	// Send was closed exactly once, by the unregister path.
	_, open := <-client.Send
	assert.False(t, open)

	// Delivering to the now-empty session is a no-op.
	hub.Send("sess-1", []byte(`{"stage":"search","status":"end"}`))
}

func TestHubDeliversPerSession(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	go hub.Run()

	a := &Client{Hub: hub, SessionID: "sess-1", Send: make(chan []byte, 4)}
	b := &Client{Hub: hub, SessionID: "sess-2", Send: make(chan []byte, 4)}
	hub.register <- a
	hub.register <- b
	require.Eventually(t, func() bool {
		return hub.clientCount("sess-1") == 1 && hub.clientCount("sess-2") == 1
	}, time.Second, 5*time.Millisecond)

	hub.Send("sess-1", []byte(`{"status":"start"}`))

	select {
	case msg := <-a.Send:
		assert.Equal(t, `{"status":"start"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("expected a delivery for sess-1")
	}

	select {
	case <-b.Send:
		t.Fatal("sess-2 must not receive sess-1 events")
	default:
	}
}
