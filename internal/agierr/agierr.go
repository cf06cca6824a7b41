// Package agierr classifies the error kinds the agent's supervisor and task
// workers distinguish between, in the spirit of the teacher's CodeError
// pattern: a small integer code plus a registered message, instead of ad hoc
// string matching or sentinel errors scattered across packages.
package agierr

import "fmt"

// Code identifies one row of the error-kind table: a category of failure the
// supervisor or a task worker handles differently (log-and-continue,
// terminate-and-reconnect, fatal-at-startup, ...).
type Code uint16

const (
	// CodeUnknown is the zero value; never returned by this package.
	CodeUnknown Code = iota
	// CodeTransportDead marks a WS handshake/send/read failure that must
	// terminate the inner loop and trigger a reconnect.
	CodeTransportDead
	// CodeParse marks malformed inbound JSON; the one message is dropped.
	CodeParse
	// CodeProbeUnrunnable marks a probe that could not be run at all
	// (privilege denied, unknown ping_type) as opposed to one that ran and
	// came back negative.
	CodeProbeUnrunnable
	// CodeExecLaunch marks a subprocess spawn failure.
	CodeExecLaunch
	// CodeExecWait marks a subprocess wait failure.
	CodeExecWait
	// CodePTYSetup marks an openpty/spawn failure in the PTY bridge.
	CodePTYSetup
	// CodeConfigInvalid marks an unparseable or incomplete startup config.
	CodeConfigInvalid
)

var names = map[Code]string{
	CodeUnknown:         "unknown",
	CodeTransportDead:   "transport-dead",
	CodeParse:           "parse",
	CodeProbeUnrunnable: "probe-unrunnable",
	CodeExecLaunch:      "exec-launch",
	CodeExecWait:        "exec-wait",
	CodePTYSetup:        "pty-setup",
	CodeConfigInvalid:   "config-invalid",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unknown"
}

// Error wraps an underlying cause with a Code, so call sites can branch on
// the Kind field without parsing strings, and log sites can print a stable,
// greppable category.
type Error struct {
	Kind  Code
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns a new *Error with the given kind wrapping cause. cause may be
// nil for kinds that carry no underlying error (e.g. unknown ping_type).
func New(kind Code, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// WithCause is a fluent helper for attaching a cause to a predeclared kind,
// e.g. agierr.CodeProbeUnrunnable.WithCause(err).
func (c Code) WithCause(cause error) *Error {
	return New(c, cause)
}
