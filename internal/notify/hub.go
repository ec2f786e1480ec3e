package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Message type tags pushed to clients
const (
	TypeProgress  = "upload_progress"
	TypeError     = "upload_error"
	TypeHeartbeat = "heartbeat"
)

// ProgressEvent reports one completed pipeline stage to listeners
type ProgressEvent struct {
	SessionID string `json:"sessionId"`
	Stage     string `json:"stage"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorEvent reports a pipeline failure to listeners
type ErrorEvent struct {
	SessionID string         `json:"sessionId"`
	Error     ErrorEventBody `json:"error"`
	Timestamp string         `json:"timestamp"`
}

// ErrorEventBody carries the error code and message inside an ErrorEvent
type ErrorEventBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type heartbeat struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// MessageWriter is the connection surface the hub writes to. It is satisfied
// by *websocket.Conn.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn is one registered listener for a session
type Conn struct {
	sessionID string
	writer    MessageWriter
	writeMu   sync.Mutex
}

// SessionID returns the session this connection listens to
func (c *Conn) SessionID() string {
	return c.sessionID
}

func (c *Conn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writer.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks open progress connections per session and fans events out to
// them. It is constructed once in main and injected into the HTTP layer;
// all methods are safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Conn]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Conn]struct{})}
}

// Register tracks a new connection for sessionID
func (h *Hub) Register(sessionID string, w MessageWriter) *Conn {
	conn := &Conn{sessionID: sessionID, writer: w}

	h.mu.Lock()
	set, ok := h.sessions[sessionID]
	if !ok {
		set = make(map[*Conn]struct{})
		h.sessions[sessionID] = set
	}
	set[conn] = struct{}{}
	h.mu.Unlock()

	log.Info().Str("session_id", sessionID).Msg("websocket connection registered")
	return conn
}

// Unregister removes a connection from its session's set. It is idempotent;
// the session key is dropped when its set becomes empty.
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	set, ok := h.sessions[conn.sessionID]
	if ok {
		if _, present := set[conn]; present {
			delete(set, conn)
			if len(set) == 0 {
				delete(h.sessions, conn.sessionID)
			}
		} else {
			ok = false
		}
	}
	h.mu.Unlock()

	if ok {
		log.Info().Str("session_id", conn.sessionID).Msg("websocket connection unregistered")
	}
}

// ConnectionCount returns the number of connections registered for sessionID
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// BroadcastProgress delivers a progress event to every connection registered
// for sessionID. Broadcasting to a session with no listeners is a no-op.
func (h *Hub) BroadcastProgress(sessionID, stage string, progress int, message string) {
	event := envelope{
		Type: TypeProgress,
		Data: ProgressEvent{
			SessionID: sessionID,
			Stage:     stage,
			Progress:  progress,
			Message:   message,
			Timestamp: now(),
		},
	}
	h.broadcast(sessionID, event)
}

// BroadcastError delivers an error event to every connection registered for
// sessionID
func (h *Hub) BroadcastError(sessionID, code, message string) {
	event := envelope{
		Type: TypeError,
		Data: ErrorEvent{
			SessionID: sessionID,
			Error:     ErrorEventBody{Code: code, Message: message},
			Timestamp: now(),
		},
	}
	h.broadcast(sessionID, event)
}

// Heartbeat replies to an inbound client message with the current timestamp
func (h *Hub) Heartbeat(conn *Conn) error {
	data, err := json.Marshal(heartbeat{Type: TypeHeartbeat, Timestamp: now()})
	if err != nil {
		return err
	}
	return conn.write(data)
}

func (h *Hub) broadcast(sessionID string, event envelope) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to marshal event")
		return
	}

	// snapshot under the read lock so a failed send can unregister without
	// racing the iteration
	h.mu.RLock()
	set := h.sessions[sessionID]
	conns := make([]*Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.write(data); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to send event, dropping connection")
			h.Unregister(conn)
			_ = conn.writer.Close()
		}
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
