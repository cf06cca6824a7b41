package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_TCP_ClosedPortYieldsNullValue(t *testing.T) {
	// Reserve a port, then close it immediately so connect is refused.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := Run(ctx, Request{TaskID: 7, Type: "tcp", Target: addr})
	require.NoError(t, err)
	require.Equal(t, "ping_result", res.Type)
	require.Equal(t, uint64(7), res.TaskID)
	require.Nil(t, res.Value)
}

func TestRun_TCP_OpenPortYieldsValue(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := Run(ctx, Request{TaskID: 1, Type: "tcp", Target: l.Addr().String()})
	require.NoError(t, err)
	require.NotNil(t, res.Value)
}

func TestRun_UnknownTypeIsUnrunnable(t *testing.T) {
	_, err := Run(context.Background(), Request{Type: "carrier-pigeon", Target: "x"})
	require.Error(t, err)
}
