package notify

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records everything written to it and can be told to fail
type fakeWriter struct {
	mu       sync.Mutex
	messages [][]byte
	failSend bool
	closed   bool
}

func (f *fakeWriter) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("connection reset")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	f.messages = append(f.messages, buf)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func decodeProgress(t *testing.T, raw []byte) ProgressEvent {
	t.Helper()
	var env struct {
		Type string        `json:"type"`
		Data ProgressEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Equal(t, TypeProgress, env.Type)
	return env.Data
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()

	w1 := &fakeWriter{}
	w2 := &fakeWriter{}
	c1 := hub.Register("session-1", w1)
	c2 := hub.Register("session-1", w2)

	assert.Equal(t, 2, hub.ConnectionCount("session-1"))
	assert.Equal(t, "session-1", c1.SessionID())

	hub.Unregister(c1)
	assert.Equal(t, 1, hub.ConnectionCount("session-1"))

	// unregister is idempotent
	hub.Unregister(c1)
	assert.Equal(t, 1, hub.ConnectionCount("session-1"))

	// the session key is dropped when the set empties
	hub.Unregister(c2)
	assert.Equal(t, 0, hub.ConnectionCount("session-1"))
	hub.mu.RLock()
	_, exists := hub.sessions["session-1"]
	hub.mu.RUnlock()
	assert.False(t, exists)
}

func TestHubBroadcastProgress(t *testing.T) {
	hub := NewHub()

	w1 := &fakeWriter{}
	w2 := &fakeWriter{}
	hub.Register("session-1", w1)
	hub.Register("session-1", w2)

	other := &fakeWriter{}
	hub.Register("session-2", other)

	hub.BroadcastProgress("session-1", "validating", 10, "validating file...")

	for _, w := range []*fakeWriter{w1, w2} {
		require.Len(t, w.messages, 1)
		event := decodeProgress(t, w.messages[0])
		assert.Equal(t, "session-1", event.SessionID)
		assert.Equal(t, "validating", event.Stage)
		assert.Equal(t, 10, event.Progress)
		assert.Equal(t, "validating file...", event.Message)
		assert.NotEmpty(t, event.Timestamp)
	}

	// other sessions receive nothing
	assert.Empty(t, other.messages)
}

func TestHubBroadcastError(t *testing.T) {
	hub := NewHub()
	w := &fakeWriter{}
	hub.Register("session-1", w)

	hub.BroadcastError("session-1", "INTERNAL_ERROR", "an unexpected error occurred")

	require.Len(t, w.messages, 1)
	var env struct {
		Type string     `json:"type"`
		Data ErrorEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.messages[0], &env))
	assert.Equal(t, TypeError, env.Type)
	assert.Equal(t, "session-1", env.Data.SessionID)
	assert.Equal(t, "INTERNAL_ERROR", env.Data.Error.Code)
	assert.Equal(t, "an unexpected error occurred", env.Data.Error.Message)
}

func TestHubBroadcastToEmptySessionIsNoOp(t *testing.T) {
	hub := NewHub()

	assert.NotPanics(t, func() {
		hub.BroadcastProgress("nobody-listening", "storing", 60, "storing file...")
		hub.BroadcastError("nobody-listening", "INTERNAL_ERROR", "boom")
	})
}

func TestHubDeadConnectionIsPruned(t *testing.T) {
	hub := NewHub()

	healthy := &fakeWriter{}
	dead := &fakeWriter{failSend: true}
	hub.Register("session-1", healthy)
	hub.Register("session-1", dead)

	hub.BroadcastProgress("session-1", "uploading", 30, "uploading...")

	// the healthy connection still got the event
	require.Len(t, healthy.messages, 1)
	// the dead one was removed and closed
	assert.Equal(t, 1, hub.ConnectionCount("session-1"))
	assert.True(t, dead.closed)

	// subsequent broadcasts no longer attempt the dead connection
	hub.BroadcastProgress("session-1", "storing", 60, "storing file...")
	assert.Len(t, healthy.messages, 2)
	assert.Equal(t, 1, hub.ConnectionCount("session-1"))
}

func TestHubHeartbeat(t *testing.T) {
	hub := NewHub()
	w := &fakeWriter{}
	conn := hub.Register("session-1", w)

	require.NoError(t, hub.Heartbeat(conn))

	require.Len(t, w.messages, 1)
	var hb heartbeat
	require.NoError(t, json.Unmarshal(w.messages[0], &hb))
	assert.Equal(t, TypeHeartbeat, hb.Type)
	assert.NotEmpty(t, hb.Timestamp)
}

func TestHubConcurrentUse(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := &fakeWriter{}
			conn := hub.Register("session-1", w)
			hub.BroadcastProgress("session-1", "storing", 60, "storing file...")
			hub.Unregister(conn)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.ConnectionCount("session-1"))
}
