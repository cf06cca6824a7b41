// Command komari-agent is the host-monitoring agent entry point: parses
// CLI flags/environment, builds the supervisor, and runs it until the
// process is signalled to stop.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/komari-monitor/komari-agent-go/duration"
	"github.com/komari-monitor/komari-agent-go/internal/buildinfo"
	"github.com/komari-monitor/komari-agent-go/internal/config"
	"github.com/komari-monitor/komari-agent-go/internal/endpoint"
	"github.com/komari-monitor/komari-agent-go/internal/logging"
	"github.com/komari-monitor/komari-agent-go/internal/supervisor"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "komari-agent",
		Short:   "Host-monitoring agent for the komari control plane",
		Version: buildinfo.String(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("http-server", "", "HTTP base of control plane (required)")
	flags.String("ws-server", "", "WS base override (derived from http-server if unset)")
	flags.String("token", "", "bearer token, placed in query string (required)")
	flags.String("ip-provider", "ipinfo", "source of public IP: ipinfo|cloudflare")
	flags.Bool("terminal", false, "enable PTY dispatcher")
	flags.String("terminal-entry", "", "shell to spawn in PTY (platform default if unset)")
	flags.Float64("fake", 1.0, "multiplier on numeric metrics")
	flags.Uint64("realtime-info-interval", 1000, "tick target, in ms")
	flags.Bool("tls", false, "use WSS")
	flags.Bool("ignore-unsafe-cert", false, "skip TLS verification")
	flags.String("log-level", "info", "verbosity: error|warn|info|debug|trace")
	flags.Uint16("metrics-port", 0, "local :port to serve Prometheus /metrics on (0 disables)")

	bindFlags(v, flags)

	return cmd
}

// bindFlags wires every flag to viper and to its upper-snake-cased
// environment variable, giving flag > env > default precedence (viper's
// own resolution order once both are bound).
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	_ = v.BindPFlags(flags)
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindEnv(f.Name, envName(f.Name))
	})
}

func envName(flagName string) string {
	return strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	intervalMs := v.GetUint64("realtime-info-interval")
	cfg := &config.Config{
		HTTPBase:           v.GetString("http-server"),
		WSBase:             v.GetString("ws-server"),
		Token:              v.GetString("token"),
		TLS:                v.GetBool("tls"),
		SkipVerify:         v.GetBool("ignore-unsafe-cert"),
		Fake:               v.GetFloat64("fake"),
		RealtimeIntervalMs: intervalMs,
		RealtimeInterval:   duration.ParseDuration(time.Duration(intervalMs) * time.Millisecond),
		TerminalEnabled:    v.GetBool("terminal"),
		TerminalEntry:      v.GetString("terminal-entry"),
		IPProvider:         config.IPProvider(v.GetString("ip-provider")),
		LogLevel:           v.GetString("log-level"),
	}

	if cfg.TerminalEntry == "" {
		cfg.TerminalEntry = config.DefaultTerminalEntry(bashExists())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bashExists() bool {
	_, err := os.Stat("/bin/bash")
	return err == nil
}

func run(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logging.New(logging.ParseLevel(cfg.LogLevel), os.Stdout)
	log.WithField("interval", cfg.RealtimeInterval.String()).Info("starting komari-agent")

	urls, err := endpoint.Derive(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if port := v.GetUint16("metrics-port"); port != 0 {
		go serveMetrics(port, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := supervisor.New(cfg, urls, log, buildinfo.Version)
	sup.Run(ctx)
	return nil
}

func serveMetrics(port uint16, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Warn("metrics server stopped")
	}
}
