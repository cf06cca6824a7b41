// Package pty bridges a local pseudo-terminal to a remote WebSocket, per
// spec.md §4.6: PTY->WS and WS->PTY byte forwarding, resize/heartbeat
// control messages, and a Starting->Running->Draining->Closed lifecycle.
package pty

import (
	"encoding/json"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
)

const readBufferSize = 8 * 1024

// State is the bridge's lifecycle stage.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateDraining
	StateClosed
)

// heartbeat is the inbound keep-alive control message; it is parsed and
// discarded.
type heartbeat struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// resizeMsg is the inbound resize control message.
type resizeMsg struct {
	Type string `json:"type"`
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

// Bridge owns one PTY session: a spawned process attached to a pseudo
// terminal, and the WS connection tunneling its I/O.
type Bridge struct {
	conn   *websocket.Conn
	cmd    *exec.Cmd
	master *os.File

	writeMu   sync.Mutex
	state     atomic.Int32
	closeOnce sync.Once
}

// Open spawns entry attached to a 24x80 pseudo-terminal and wires it to
// conn. env is appended to the child's environment (TERM, LANG, per
// spec.md §4.6). If Open fails, conn is left open for the caller to close;
// otherwise Run closes conn when the session ends.
func Open(conn *websocket.Conn, entry string, args []string, env []string) (*Bridge, error) {
	cmd := exec.Command(entry, args...)
	cmd.Env = append(os.Environ(), env...)

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: 80})
	if err != nil {
		return nil, err
	}

	b := &Bridge{conn: conn, cmd: cmd, master: master}
	b.state.Store(int32(StateStarting))
	return b, nil
}

// State returns the bridge's current lifecycle stage.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

// Run wires the PTY<->WS pump and blocks until either side terminates,
// then kills and reaps the child. It is safe to call once per Bridge.
func (b *Bridge) Run() {
	b.state.Store(int32(StateRunning))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.pumpPTYToWS()
	}()
	go func() {
		defer wg.Done()
		b.pumpWSToPTY()
	}()
	wg.Wait()

	b.state.Store(int32(StateClosed))
}

// pumpPTYToWS is the blocking master-read loop: each chunk becomes one
// binary WS frame. It ends on master EOF, a read error, or a WS send
// failure.
func (b *Bridge) pumpPTYToWS() {
	buf := make([]byte, readBufferSize)
	for {
		n, err := b.master.Read(buf)
		if n > 0 {
			if werr := b.writeBinary(buf[:n]); werr != nil {
				b.terminate()
				return
			}
		}
		if err != nil {
			b.terminate()
			return
		}
	}
}

// pumpWSToPTY reads frames from conn and applies them to the PTY master,
// per spec.md §4.6's per-frame-kind handling.
func (b *Bridge) pumpWSToPTY() {
	for {
		msgType, payload, err := b.conn.ReadMessage()
		if err != nil {
			b.terminate()
			return
		}

		switch msgType {
		case websocket.TextMessage:
			b.handleText(payload)
		case websocket.BinaryMessage:
			b.writeMaster(payload)
		case websocket.CloseMessage:
			b.terminate()
			return
		default:
			// ping/pong: ignore
		}
	}
}

func (b *Bridge) handleText(payload []byte) {
	var hb heartbeat
	if err := json.Unmarshal(payload, &hb); err == nil && hb.Type == "heartbeat" {
		return
	}

	var rs resizeMsg
	if err := json.Unmarshal(payload, &rs); err == nil && rs.Type == "resize" {
		b.resize(rs.Cols, rs.Rows)
		return
	}

	b.writeMaster(payload)
}

func (b *Bridge) resize(cols, rows uint16) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	pty.Setsize(b.master, &pty.Winsize{Cols: cols, Rows: rows})
}

// winsize reports the master's current terminal dimensions; used by tests
// to assert a resize control message actually reached the PTY.
func (b *Bridge) winsize() (cols, rows uint16, err error) {
	ws, err := pty.GetsizeFull(b.master)
	if err != nil {
		return 0, 0, err
	}
	return ws.Cols, ws.Rows, nil
}

func (b *Bridge) writeMaster(payload []byte) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	b.master.Write(payload)
}

func (b *Bridge) writeBinary(payload []byte) error {
	return b.conn.WriteMessage(websocket.BinaryMessage, payload)
}

// terminate enters the Draining state and kills/reaps the child and closes
// the shared file descriptors exactly once, regardless of which pump
// observes the terminating event first. Closing master and conn here is
// what unblocks whichever pump is still in its blocking read, so Run's
// wg.Wait() can complete.
func (b *Bridge) terminate() {
	b.closeOnce.Do(func() {
		b.state.Store(int32(StateDraining))

		if b.cmd.Process != nil {
			b.cmd.Process.Kill()
		}
		b.cmd.Wait()
		b.master.Close()
		b.conn.Close()
	})
}
