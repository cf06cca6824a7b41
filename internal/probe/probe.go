// Package probe runs the agent's on-demand reachability checks: ICMP, TCP
// connect, and HTTP GET, per spec.md §4.4.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/komari-monitor/komari-agent-go/internal/agierr"
)

// Request is the inbound "ping" command envelope.
type Request struct {
	TaskID uint64 `json:"ping_task_id"`
	Type   string `json:"ping_type"`
	Target string `json:"ping_target"`
}

// Result is the outbound probe callback. Value is nil on a negative
// outcome (timeout, refused, non-2xx) — that is a successful probe with a
// failing result, not an error, per spec.md §4.4.
type Result struct {
	Type       string `json:"type"`
	TaskID     uint64 `json:"task_id"`
	PingType   string `json:"ping_type"`
	Value      *int64 `json:"value"`
	FinishedAt string `json:"finished_at"`
}

const (
	icmpTimeout = 3 * time.Second
	tcpTimeout  = 10 * time.Second
	httpUA      = "curl/11.45.14"
)

// Run executes req and returns the callback record. It returns an error
// only for the "could not be run at all" cases (agierr.CodeProbeUnrunnable)
// spec.md §4.4 calls out: unknown ping_type or raw-socket privilege denial,
// and also an ICMP target whose DNS lookup fails. Negative outcomes (timeout, refused connection, non-2xx) are reported as
// Result.Value == nil with no error.
func Run(ctx context.Context, req Request) (Result, error) {
	result := Result{
		Type:     "ping_result",
		TaskID:   req.TaskID,
		PingType: req.Type,
	}

	var (
		ms  int64
		ok  bool
		err error
	)

	switch req.Type {
	case "icmp":
		ms, ok, err = runICMP(ctx, req.Target)
	case "tcp":
		ms, ok, err = runTCP(ctx, req.Target)
	case "http":
		ms, ok, err = runHTTP(ctx, req.Target)
	default:
		return Result{}, agierr.CodeProbeUnrunnable.WithCause(fmt.Errorf("unknown ping_type %q", req.Type))
	}

	if err != nil {
		return Result{}, agierr.CodeProbeUnrunnable.WithCause(err)
	}

	if ok {
		result.Value = &ms
	}
	result.FinishedAt = finishedAt()
	return result, nil
}

func runTCP(ctx context.Context, target string) (ms int64, ok bool, err error) {
	start := time.Now()
	d := net.Dialer{Timeout: tcpTimeout}
	conn, derr := d.DialContext(ctx, "tcp", target)
	if derr != nil {
		return 0, false, nil
	}
	defer conn.Close()
	return time.Since(start).Milliseconds(), true, nil
}

// runHTTP imposes no timeout of its own: spec.md §5 requires the HTTP
// probe to wait indefinitely for a response, unlike the TCP connect case.
func runHTTP(ctx context.Context, target string) (ms int64, ok bool, err error) {
	req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if rerr != nil {
		// A malformed target URL is a negative outcome, not a probe-engine
		// error: the probe ran, it just couldn't reach anything.
		return 0, false, nil
	}
	req.Header.Set("User-Agent", httpUA)

	start := time.Now()
	resp, herr := http.DefaultClient.Do(req)
	if herr != nil {
		return 0, false, nil
	}
	defer resp.Body.Close()

	elapsed := time.Since(start).Milliseconds()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return elapsed, true, nil
	}
	return 0, false, nil
}

func finishedAt() string {
	return time.Now().Format(time.RFC3339)
}

// MarshalResult is a thin convenience wrapper used by callers that need the
// raw JSON bytes for the shared WS writer.
func MarshalResult(r Result) ([]byte, error) {
	return json.Marshal(r)
}
