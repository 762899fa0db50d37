package backend

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	logger "autogenmcp/logger/v2"
)

// writeScript writes a shell script the bridge can use as its backend.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script backend stubs require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "backend.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestInvokeParsesBackendJSON(t *testing.T) {
	script := writeScript(t, `printf '{"tool":"%s","args":%s}' "$1" "$2"`)
	b := NewBridge("/bin/sh", script, logger.NewNoop())

	result, err := b.Invoke(context.Background(), "create_agent",
		map[string]interface{}{"name": "researcher"})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}

	var payload struct {
		Tool string                 `json:"tool"`
		Args map[string]interface{} `json:"args"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if payload.Tool != "create_agent" {
		t.Fatalf("tool name not forwarded: %+v", payload)
	}
	if payload.Args["name"] != "researcher" {
		t.Fatalf("arguments not forwarded: %+v", payload)
	}
}

func TestInvokeNilArgsEncodeAsEmptyObject(t *testing.T) {
	script := writeScript(t, `printf '{"received":%s}' "$2"`)
	b := NewBridge("/bin/sh", script, logger.NewNoop())

	result, err := b.Invoke(context.Background(), "get_agent_status", nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if string(result) != `{"received":{}}` {
		t.Fatalf("unexpected result: %s", result)
	}
}

func TestInvokeSurfacesProcessError(t *testing.T) {
	script := writeScript(t, `echo "agent not found" >&2; exit 2`)
	b := NewBridge("/bin/sh", script, logger.NewNoop())

	_, err := b.Invoke(context.Background(), "execute_workflow", nil)
	var perr *ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProcessError, got %v", err)
	}
	if perr.ExitCode != 2 {
		t.Fatalf("expected exit code 2, got %d", perr.ExitCode)
	}
	if perr.Stderr != "agent not found" {
		t.Fatalf("stderr not captured: %q", perr.Stderr)
	}
	if perr.Error() != "agent not found" {
		t.Fatalf("error text must be the backend diagnostic, got %q", perr.Error())
	}
}

func TestInvokeRejectsNonJSONOutput(t *testing.T) {
	script := writeScript(t, `echo "starting up..."`)
	b := NewBridge("/bin/sh", script, logger.NewNoop())

	_, err := b.Invoke(context.Background(), "get_agent_status", nil)
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestInvokeReportsLaunchFailure(t *testing.T) {
	b := NewBridge("/nonexistent/python3", "server.py", logger.NewNoop())

	_, err := b.Invoke(context.Background(), "create_agent", nil)
	var lerr *LaunchError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected LaunchError, got %v", err)
	}
}
