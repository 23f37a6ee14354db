package telemetry

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// NewConnectionID mints a fresh identifier for a newly accepted
// connection, used to correlate its connection and audit log entries.
func NewConnectionID() string { return uuid.NewString() }

// ConnectionEvent is one entry in the connection log: an open, a close,
// or a framed packet crossing the wire in either direction.
type ConnectionEvent struct {
	ConnectionID string    `json:"connection_id"`
	Event        string    `json:"event"`
	Bytes        int       `json:"bytes,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	At           time.Time `json:"at"`
}

// ConnectionLogger records connection lifecycle and traffic events.
type ConnectionLogger struct{ w *Writer }

// NewConnectionLogger opens a connection logger rooted at dir.
func NewConnectionLogger(dir string) *ConnectionLogger {
	return &ConnectionLogger{w: NewWriter(filepath.Join(dir, "connections"), "connections")}
}

func (l *ConnectionLogger) Opened(connID string) error {
	return l.w.Write(ConnectionEvent{ConnectionID: connID, Event: "open", At: time.Now().UTC()})
}

func (l *ConnectionLogger) Closed(connID, reason string) error {
	return l.w.Write(ConnectionEvent{ConnectionID: connID, Event: "close", Reason: reason, At: time.Now().UTC()})
}

func (l *ConnectionLogger) PacketIn(connID string, bytes int) error {
	return l.w.Write(ConnectionEvent{ConnectionID: connID, Event: "packet_in", Bytes: bytes, At: time.Now().UTC()})
}

func (l *ConnectionLogger) PacketOut(connID string, bytes int) error {
	return l.w.Write(ConnectionEvent{ConnectionID: connID, Event: "packet_out", Bytes: bytes, At: time.Now().UTC()})
}

func (l *ConnectionLogger) Close() error { return l.w.Close() }

// AuditEvent records a protocol-level rejection: a malformed packet, a
// tag-tree that failed its prerequisite resolution, an unparseable chat
// compound, or similar.
type AuditEvent struct {
	ConnectionID string    `json:"connection_id"`
	Reason       string    `json:"reason"`
	At           time.Time `json:"at"`
}

// AuditLogger records protocol violations, independent of the plain
// traffic log so operators can tail just the things worth investigating.
type AuditLogger struct{ w *Writer }

// NewAuditLogger opens an audit logger rooted at dir.
func NewAuditLogger(dir string) *AuditLogger {
	return &AuditLogger{w: NewWriter(filepath.Join(dir, "audit"), "audit")}
}

func (l *AuditLogger) Write(connID, reason string) error {
	return l.w.Write(AuditEvent{ConnectionID: connID, Reason: reason, At: time.Now().UTC()})
}

func (l *AuditLogger) Close() error { return l.w.Close() }
