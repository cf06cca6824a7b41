package endpoint

import (
	"testing"

	"github.com/komari-monitor/komari-agent-go/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDerive_WSBaseFromHTTP(t *testing.T) {
	cfg := &config.Config{HTTPBase: "http://h:8080", Token: "T"}

	u, err := Derive(cfg)
	require.NoError(t, err)
	require.Equal(t, "ws://h:8080/api/clients/report?token=T", u.Realtime)
	require.Equal(t, "http://h:8080/api/clients/uploadBasicInfo?token=T", u.BasicInfo)
	require.Equal(t, "http://h:8080/api/clients/task/result?token=T", u.ExecCallback)
}

func TestDerive_HTTPSMapsToWSS(t *testing.T) {
	cfg := &config.Config{HTTPBase: "https://h:8443", Token: "T"}

	u, err := Derive(cfg)
	require.NoError(t, err)
	require.Equal(t, "wss://h:8443/api/clients/report?token=T", u.Realtime)
}

func TestDerive_ExplicitWSBaseWins(t *testing.T) {
	cfg := &config.Config{HTTPBase: "http://h:8080", WSBase: "wss://other:9000", Token: "T"}

	u, err := Derive(cfg)
	require.NoError(t, err)
	require.Equal(t, "wss://other:9000/api/clients/report?token=T", u.Realtime)
}

func TestTerminalURL_AppendsID(t *testing.T) {
	got := TerminalURL("wss://h/api/clients/terminal?token=T", "req-1")
	require.Equal(t, "wss://h/api/clients/terminal?token=T&id=req-1", got)
}
