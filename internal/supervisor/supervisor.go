// Package supervisor owns the agent's outer reconnect loop, the inner
// metrics ticker, and the inbound command demultiplexer, per spec.md §4.1.
package supervisor

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/komari-monitor/komari-agent-go/internal/config"
	"github.com/komari-monitor/komari-agent-go/internal/endpoint"
	"github.com/komari-monitor/komari-agent-go/internal/logging"
	"github.com/komari-monitor/komari-agent-go/internal/metrics"
	"github.com/komari-monitor/komari-agent-go/internal/probe"
	"github.com/komari-monitor/komari-agent-go/internal/pty"
	"github.com/komari-monitor/komari-agent-go/internal/syncval"
	"github.com/komari-monitor/komari-agent-go/internal/taskexec"
	"github.com/komari-monitor/komari-agent-go/internal/transport/httpclient"
	"github.com/komari-monitor/komari-agent-go/internal/transport/tlsconfig"
	"github.com/komari-monitor/komari-agent-go/internal/transport/wsconn"
	"github.com/komari-monitor/komari-agent-go/internal/transport/wsdial"
)

const reconnectDelay = 5 * time.Second

// envelope is the minimal shape every inbound control-plane message has:
// a "message" discriminator, plus the raw bytes for type-specific
// re-parsing.
type envelope struct {
	Message string `json:"message"`
}

// Supervisor is the agent's single long-lived control loop.
type Supervisor struct {
	cfg     *config.Config
	urls    endpoint.URLs
	tlsCfg  *tls.Config
	log     *logrus.Logger
	sampler *metrics.Sampler
	http    *httpclient.Client

	// cadence is the startup-immutable, concurrently-read tick interval
	// spec.md §9 calls out as the "global mutable cadence" cell.
	cadence *syncval.Cell[time.Duration]

	m metricsRegistry
}

// New builds a Supervisor from cfg. version is the agent's own build
// version, stamped into BasicInfo.
func New(cfg *config.Config, urls endpoint.URLs, log *logrus.Logger, version string) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		urls:    urls,
		tlsCfg:  tlsconfig.Build(cfg.TLS, cfg.SkipVerify),
		log:     log,
		sampler: metrics.New(string(cfg.IPProvider), version),
		http:    httpclient.New(tlsconfig.Build(cfg.TLS, cfg.SkipVerify)),
		cadence: syncval.New(time.Duration(cfg.RealtimeIntervalMs) * time.Millisecond),
		m:       newMetricsRegistry(prometheus.DefaultRegisterer),
	}
}

// Run is the outer reconnect loop: it never returns except on ctx.Done().
func (s *Supervisor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.connectAndServe(ctx); err != nil {
			s.log.WithError(err).Warn("session ended")
			s.m.reconnects.Inc()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// connectAndServe dials the realtime endpoint, uploads BasicInfo once, and
// runs the inner loop (ticker + demux) until the session ends.
func (s *Supervisor) connectAndServe(ctx context.Context) error {
	conn, err := wsdial.Dial(ctx, s.urls.Realtime, s.tlsCfg)
	if err != nil {
		return err
	}
	writer := wsconn.New(conn)
	defer writer.Close()

	basic := s.sampler.BuildBasic(ctx, s.cfg.Fake)
	if err := s.http.PostJSON(ctx, s.urls.BasicInfo, basic); err != nil {
		s.log.WithError(err).Warn("basic info upload failed")
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	demuxDone := make(chan struct{})
	go func() {
		defer close(demuxDone)
		s.demux(sessionCtx, writer)
	}()

	tickErr := s.tickLoop(sessionCtx, writer)
	cancel()
	writer.Close() // unblocks the demux's pending ReadMessage
	<-demuxDone
	return tickErr
}

// tickLoop is the inner metrics loop: sample, send, self-correct cadence,
// per spec.md §4.1. A send failure terminates the loop and triggers a
// reconnect; nothing else does.
func (s *Supervisor) tickLoop(ctx context.Context, writer *wsconn.Writer) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		start := time.Now()

		info := s.sampler.BuildRealtime(s.cfg.Fake, s.cfg.RealtimeIntervalMs)
		payload, err := json.Marshal(info)
		if err != nil {
			s.log.WithError(err).Error("marshal realtime info")
			return err
		}

		if err := writer.WriteText(payload); err != nil {
			return err
		}
		s.m.ticksSent.Inc()

		elapsed := time.Since(start)
		s.m.lastTickSeconds.Set(elapsed.Seconds())

		timer.Reset(computeSleep(s.cadence.Load(), elapsed))
	}
}

// computeSleep implements spec.md §4.1 step 5 and the property spec.md §8
// tests: sleep exactly max(0, target-elapsed); ticks are edge-triggered, so
// an overrun tick is followed immediately by the next one, with no
// catch-up accumulation.
func computeSleep(target, elapsed time.Duration) time.Duration {
	sleep := target - elapsed
	if sleep < 0 {
		return 0
	}
	return sleep
}

// demux reads inbound frames and dispatches them to detached task workers,
// per spec.md §4.1. It returns when the connection's read loop ends (EOF,
// close, or ctx cancellation via a concurrent writer/reader close).
func (s *Supervisor) demux(ctx context.Context, writer *wsconn.Writer) {
	conn := writer.Conn()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			s.log.WithError(err).Debug("malformed inbound frame")
			s.m.droppedFrames.Inc()
			continue
		}

		switch env.Message {
		case "exec":
			go s.handleExec(context.Background(), payload)
		case "ping":
			go s.handlePing(context.Background(), payload, writer)
		case "terminal":
			if s.cfg.TerminalEnabled {
				go s.handleTerminal(context.Background(), payload)
			} else {
				s.log.Debug("terminal command received but terminal is disabled")
			}
		default:
			// unknown discriminator: ignored per spec.md §3
		}
	}
}

func (s *Supervisor) handleExec(ctx context.Context, raw []byte) {
	var req taskexec.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log.WithError(err).Debug("malformed exec command")
		return
	}

	log := logging.WithTask(s.log, "exec", req.TaskID).WithField("correlation", uuid.NewString())

	if err := taskexec.Run(ctx, s.http, s.urls.ExecCallback, req); err != nil {
		log.WithError(err).Warn("exec task failed")
	}
}

func (s *Supervisor) handlePing(ctx context.Context, raw []byte, writer *wsconn.Writer) {
	var req probe.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log.WithError(err).Debug("malformed ping command")
		return
	}

	id := strconv.FormatUint(req.TaskID, 10)
	log := logging.WithTask(s.log, "ping", id).WithField("correlation", uuid.NewString())

	result, err := probe.Run(ctx, req)
	if err != nil {
		log.WithError(err).Warn("probe could not be run")
		return
	}

	payload, err := probe.MarshalResult(result)
	if err != nil {
		log.WithError(err).Error("marshal probe result")
		return
	}

	if err := writer.WriteText(payload); err != nil {
		log.WithError(err).Warn("failed to deliver probe result; dropping")
	}
}

func (s *Supervisor) handleTerminal(ctx context.Context, raw []byte) {
	var req struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log.WithError(err).Debug("malformed terminal command")
		return
	}

	log := logging.WithTask(s.log, "terminal", req.RequestID).WithField("correlation", uuid.NewString())

	url := endpoint.TerminalURL(s.urls.TerminalBase, req.RequestID)
	conn, err := wsdial.Dial(ctx, url, s.tlsCfg)
	if err != nil {
		log.WithError(err).Warn("terminal dial failed")
		return
	}

	bridge, err := pty.Open(conn, s.cfg.TerminalEntry, nil, []string{
		"TERM=xterm-256color",
		"LANG=C.UTF-8",
		"LC_ALL=C.UTF-8",
	})
	if err != nil {
		log.WithError(err).Warn("pty open failed")
		conn.Close()
		return
	}

	bridge.Run()
}
