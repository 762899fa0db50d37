// Package backend invokes the AutoGen Python backend, one process per
// tool call. The backend receives the tool name and JSON-encoded
// arguments as process arguments and prints a JSON result to stdout;
// failures exit non-zero with diagnostics on stderr.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	logger "autogenmcp/logger/v2"
)

// maxDiagnosticBytes caps stderr text carried inside error values (8KB).
const maxDiagnosticBytes = 8 * 1024

// Invoker is the narrow call adapter the orchestrator depends on.
// Tests substitute a stub; production uses *Bridge.
type Invoker interface {
	Invoke(ctx context.Context, tool string, args map[string]interface{}) (json.RawMessage, error)
}

// LaunchError means the backend process could not be started at all
// (interpreter missing, permission denied).
type LaunchError struct {
	Tool string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch backend for %s: %v", e.Tool, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ProcessError means the backend exited non-zero. Stderr carries the
// backend's diagnostic text.
type ProcessError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("backend exited with code %d during %s", e.ExitCode, e.Tool)
	}
	return e.Stderr
}

// ProtocolError means the backend exited successfully but its stdout was
// not parseable as JSON.
type ProtocolError struct {
	Tool   string
	Output string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("backend returned non-JSON output for %s: %q", e.Tool, e.Output)
}

// Bridge spawns the backend interpreter per invocation. It is stateless
// and safe for concurrent use.
type Bridge struct {
	interpreter string
	script      string
	log         logger.Logger
}

// NewBridge creates a bridge that runs `interpreter script <tool> <json>`.
func NewBridge(interpreter, script string, log logger.Logger) *Bridge {
	return &Bridge{
		interpreter: interpreter,
		script:      script,
		log:         log,
	}
}

// Invoke runs one backend process and returns its parsed JSON result.
// stdout and stderr are captured fully before interpretation; partial
// output is never streamed. There is no retry: a failed invocation is
// surfaced immediately.
func (b *Bridge) Invoke(ctx context.Context, tool string, args map[string]interface{}) (json.RawMessage, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments for %s: %w", tool, err)
	}

	cmd := exec.CommandContext(ctx, b.interpreter, b.script, tool, string(payload))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.log.Debug("invoking backend",
		logger.String("tool", tool),
		logger.String("interpreter", b.interpreter),
		logger.String("script", b.script))

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			perr := &ProcessError{
				Tool:     tool,
				ExitCode: exitErr.ExitCode(),
				Stderr:   truncate(strings.TrimSpace(stderr.String())),
			}
			b.log.Warn("backend process failed",
				logger.String("tool", tool),
				logger.Int("exit_code", perr.ExitCode),
				logger.String("stderr", perr.Stderr))
			return nil, perr
		}
		return nil, &LaunchError{Tool: tool, Err: runErr}
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 || !json.Valid(out) {
		return nil, &ProtocolError{Tool: tool, Output: truncate(string(out))}
	}
	return json.RawMessage(out), nil
}

func truncate(s string) string {
	if len(s) <= maxDiagnosticBytes {
		return s
	}
	return s[:maxDiagnosticBytes] + "... [truncated]"
}
