// Package config holds the agent's startup configuration: one Config struct
// built once from CLI flags and environment variables (cobra + viper,
// flag-over-env-over-default precedence) and treated as read-only for the
// rest of the process's life.
package config

import (
	"runtime"

	"github.com/komari-monitor/komari-agent-go/duration"
	"github.com/komari-monitor/komari-agent-go/internal/agierr"
)

// IPProvider selects the service used to discover the host's public IP.
type IPProvider string

const (
	IPProviderIPInfo     IPProvider = "ipinfo"
	IPProviderCloudflare IPProvider = "cloudflare"
)

// Config is the full set of values the rest of the agent depends on. It is
// built once in cmd/komari-agent and passed down; no package reaches back
// into viper or cobra after startup.
type Config struct {
	HTTPBase string
	WSBase   string // empty means endpoint.Derive derives it from HTTPBase; this field is never filled in
	Token    string

	TLS        bool
	SkipVerify bool

	Fake               float64
	RealtimeIntervalMs uint64
	RealtimeInterval   duration.Duration // derived convenience form of RealtimeIntervalMs

	TerminalEnabled bool
	TerminalEntry   string

	IPProvider IPProvider
	LogLevel   string
}

// DefaultTerminalEntry returns the platform shell used when --terminal-entry
// is not set: cmd.exe on Windows, /bin/bash if present else sh on POSIX.
// Existence probing of /bin/bash is left to the caller (cmd/komari-agent),
// since config itself should not touch the filesystem at construction time.
func DefaultTerminalEntry(bashExists bool) string {
	if runtime.GOOS == "windows" {
		return "cmd.exe"
	}
	if bashExists {
		return "/bin/bash"
	}
	return "sh"
}

// Validate checks the minimal set of invariants that must hold before the
// supervisor starts: HTTPBase and Token are required, and RealtimeIntervalMs
// must be nonzero (a zero tick target would busy-loop the ticker).
func (c *Config) Validate() error {
	if c.HTTPBase == "" {
		return agierr.CodeConfigInvalid.WithCause(errRequired("http-server"))
	}
	if c.Token == "" {
		return agierr.CodeConfigInvalid.WithCause(errRequired("token"))
	}
	if c.RealtimeIntervalMs == 0 {
		return agierr.CodeConfigInvalid.WithCause(errRequired("realtime-info-interval (must be > 0)"))
	}
	return nil
}

type missingFlagError string

func (e missingFlagError) Error() string { return "missing required flag: " + string(e) }

func errRequired(flag string) error { return missingFlagError(flag) }
