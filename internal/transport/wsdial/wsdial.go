// Package wsdial connects to the control plane's WebSocket endpoints with a
// bounded handshake timeout, per spec.md §4.2. Retry is the supervisor's
// job, not the dialer's.
package wsdial

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// HandshakeTimeout is the hard bound on WS connect, per spec.md §5.
const HandshakeTimeout = 10 * time.Second

// Dial connects to url within HandshakeTimeout, using tlsCfg for wss://
// connections (nil is fine for ws://). It returns the sentinel-shaped
// errors the spec calls "connect timeout" / "handshake failed" wrapped
// around the underlying cause.
func Dial(ctx context.Context, url string, tlsCfg *tls.Config) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: HandshakeTimeout,
		TLSClientConfig:  tlsCfg,
	}

	ctx, cancel := context.WithTimeout(ctx, HandshakeTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, url, http.Header{})
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("connect timeout: %w", err)
		}
		return nil, fmt.Errorf("handshake failed: %w", err)
	}
	return conn, nil
}
