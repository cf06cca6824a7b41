// Package endpoint derives the four control-plane URLs the agent talks to
// from a Config: basic-info upload, realtime WebSocket, exec callback, and
// the terminal WebSocket base.
package endpoint

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/komari-monitor/komari-agent-go/internal/config"
)

// URLs holds the four derived endpoints for one Config.
type URLs struct {
	BasicInfo    string
	Realtime     string
	ExecCallback string
	TerminalBase string
}

// Derive builds URLs from cfg. If cfg.WSBase is empty, it is derived from
// cfg.HTTPBase by mapping http->ws and https->wss on the same host and port.
func Derive(cfg *config.Config) (URLs, error) {
	httpBase := strings.TrimRight(cfg.HTTPBase, "/")

	wsBase := strings.TrimRight(cfg.WSBase, "/")
	if wsBase == "" {
		derived, err := httpToWS(httpBase)
		if err != nil {
			return URLs{}, err
		}
		wsBase = derived
	}

	q := url.QueryEscape(cfg.Token)

	return URLs{
		BasicInfo:    fmt.Sprintf("%s/api/clients/uploadBasicInfo?token=%s", httpBase, q),
		Realtime:     fmt.Sprintf("%s/api/clients/report?token=%s", wsBase, q),
		ExecCallback: fmt.Sprintf("%s/api/clients/task/result?token=%s", httpBase, q),
		TerminalBase: fmt.Sprintf("%s/api/clients/terminal?token=%s", wsBase, q),
	}, nil
}

// TerminalURL appends the per-session request id to the terminal base URL,
// as the supervisor does for each inbound "terminal" command.
func TerminalURL(base, requestID string) string {
	return base + "&id=" + url.QueryEscape(requestID)
}

func httpToWS(httpBase string) (string, error) {
	u, err := url.Parse(httpBase)
	if err != nil {
		return "", fmt.Errorf("parse http-server: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q in http-server", u.Scheme)
	}

	return strings.TrimRight(u.String(), "/"), nil
}
