// Package taskexec runs inbound shell-command tasks and posts their result
// to the exec callback URL, per spec.md §4.5.
package taskexec

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"time"

	"github.com/komari-monitor/komari-agent-go/internal/agierr"
	"github.com/komari-monitor/komari-agent-go/internal/transport/httpclient"
)

// Request is the inbound "exec" command envelope.
type Request struct {
	TaskID  string `json:"task_id"`
	Command string `json:"command"`
}

// Result is the body posted to the exec callback URL.
type Result struct {
	TaskID     string `json:"task_id"`
	Result     string `json:"result"`
	ExitCode   int    `json:"exit_code"`
	FinishedAt string `json:"finished_at"`
}

// Run launches req.Command via the platform shell, waits for it to finish,
// and POSTs the Result to callbackURL. No timeout is imposed on the child,
// per spec.md §4.5 — a long-running command simply keeps the task worker
// alive; it does not block the ticker or the demux, which run on their own
// goroutines.
//
// Note: per spec.md §9's open question, invoking "bash -c" unconditionally
// is likely wrong on Windows (no bash there by default); this runner
// dispatches through the platform shell instead, which is the behavior
// change spec.md leaves to the implementer's judgment.
func Run(ctx context.Context, client *httpclient.Client, callbackURL string, req Request) error {
	cmd := shellCommand(req.Command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return agierr.CodeExecLaunch.WithCause(err)
	}

	waitErr := cmd.Wait()
	exitCode := 1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if waitErr != nil && cmd.ProcessState == nil {
		return agierr.CodeExecWait.WithCause(waitErr)
	}

	result := Result{
		TaskID:     req.TaskID,
		Result:     stdout.String() + stderr.String(),
		ExitCode:   exitCode,
		FinishedAt: finishedAt(),
	}

	return client.PostJSON(ctx, callbackURL, result)
}

func shellCommand(command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("cmd.exe", "/C", command)
	}
	return exec.Command("bash", "-c", command)
}

// finishedAt formats the completion time as RFC3339 in the local zone.
func finishedAt() string {
	return time.Now().Format(time.RFC3339)
}
