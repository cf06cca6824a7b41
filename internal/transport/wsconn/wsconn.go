// Package wsconn wraps a *websocket.Conn with a mutex-guarded writer, shared
// between the realtime ticker and probe-result workers per spec.md §4.1's
// shared writer discipline: one send holds the lock for the duration of one
// frame, and only the ticker's own failures terminate the session.
package wsconn

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Writer serializes writes to an underlying *websocket.Conn so multiple
// goroutines can safely share one outbound connection.
type Writer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// New wraps conn in a Writer.
func New(conn *websocket.Conn) *Writer {
	return &Writer{conn: conn}
}

// WriteText sends payload as a single text frame.
func (w *Writer) WriteText(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, payload)
}

// WriteBinary sends payload as a single binary frame.
func (w *Writer) WriteBinary(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.BinaryMessage, payload)
}

// Close closes the underlying connection.
func (w *Writer) Close() error {
	return w.conn.Close()
}

// Conn exposes the underlying connection for reads, which are not shared
// and so need no locking — only one goroutine (the demux) ever reads.
func (w *Writer) Conn() *websocket.Conn {
	return w.conn
}
