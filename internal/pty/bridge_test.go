package pty

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialTestBridge(t *testing.T, entry string, args []string) (*Bridge, *websocket.Conn, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConnCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConnCh <- c
	}))

	wsURL := "ws" + srv.URL[len("http"):]
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	serverConn := <-serverConnCh

	bridge, err := Open(serverConn, entry, args, []string{"TERM=xterm-256color"})
	require.NoError(t, err)

	cleanup := func() {
		clientConn.Close()
		srv.Close()
	}
	return bridge, clientConn, cleanup
}

func TestBridge_StateMachine_StartsAsStarting(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX pty only")
	}

	bridge, _, cleanup := dialTestBridge(t, "/bin/cat", nil)
	defer cleanup()

	require.Equal(t, StateStarting, bridge.State())
}

func TestBridge_ResizeUpdatesMasterWinsize(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX pty only")
	}

	bridge, clientConn, cleanup := dialTestBridge(t, "/bin/cat", nil)
	defer cleanup()

	go bridge.Run()
	time.Sleep(50 * time.Millisecond)

	require.Equal(t, StateRunning, bridge.State())

	err := clientConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"resize","cols":120,"rows":40}`))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	cols, rows, err := bridge.winsize()
	require.NoError(t, err)
	require.Equal(t, uint16(120), cols)
	require.Equal(t, uint16(40), rows)

	clientConn.Close()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, StateClosed, bridge.State())
}
