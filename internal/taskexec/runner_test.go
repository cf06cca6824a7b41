package taskexec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/komari-monitor/komari-agent-go/internal/transport/httpclient"
	"github.com/stretchr/testify/require"
)

func TestRun_PostsCombinedOutputAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("command shape differs on windows")
	}

	var got Result
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := httpclient.New(nil)
	err := Run(context.Background(), client, srv.URL, Request{
		TaskID:  "e1",
		Command: "echo hi; exit 3",
	})
	require.NoError(t, err)
	require.Equal(t, "e1", got.TaskID)
	require.Equal(t, "hi\n", got.Result)
	require.Equal(t, 3, got.ExitCode)
	require.NotEmpty(t, got.FinishedAt)
}

func TestRun_ConcatenatesStdoutThenStderrNotInterleaved(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("command shape differs on windows")
	}

	var got Result
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := httpclient.New(nil)
	// Writes to stderr first, then stdout, so an arrival-ordered capture
	// would read "err-line\nout-line\n" — the result must still be
	// all of stdout followed by all of stderr, regardless of write order.
	err := Run(context.Background(), client, srv.URL, Request{
		TaskID:  "e2",
		Command: "echo err-line 1>&2; echo out-line",
	})
	require.NoError(t, err)
	require.Equal(t, "out-line\nerr-line\n", got.Result)
}
