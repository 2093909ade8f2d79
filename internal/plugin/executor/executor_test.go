package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

// TestNew tests creating a new executor.
func TestNew(t *testing.T) {
	executor, err := New("/opt/plexus/plugins/plexus-hosting/bin/hosting", plugin.ProtocolJSON)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}
	defer executor.Close()

	if executor.path != "/opt/plexus/plugins/plexus-hosting/bin/hosting" {
		t.Errorf("Unexpected path '%s'", executor.path)
	}
	if executor.protocolType != plugin.ProtocolJSON {
		t.Errorf("Expected protocol type JSON, got %s", executor.protocolType)
	}
	if _, ok := executor.runner.(*RealProcessRunner); !ok {
		t.Errorf("Expected real process runner by default, got %T", executor.runner)
	}
}

// TestNewUnsupportedProtocol tests rejecting unknown protocols.
func TestNewUnsupportedProtocol(t *testing.T) {
	if _, err := New("/bin/true", plugin.Protocol("grpc")); err == nil {
		t.Error("Expected error for unsupported protocol")
	}
}

// TestExecuteCommandJSON tests the json-stdio command entry point.
func TestExecuteCommandJSON(t *testing.T) {
	runner := NewMockProcessRunner()
	runner.RunFunc = func(_ context.Context, _ string, _ []string, _ io.Reader, stdout, _ io.Writer) error {
		_, _ = io.WriteString(stdout, "hosting configured\n")
		return nil
	}

	var stdout, stderr bytes.Buffer
	executor, err := New("/plugins/hosting", plugin.ProtocolJSON, WithRunner(runner), WithOutput(&stdout, &stderr))
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}
	defer executor.Close()

	req := plugin.CommandRequest{
		Input:       plugin.Input{Plugin: "hosting", Command: "add", Options: map[string]string{"yes": "true"}},
		ProjectPath: "/work/app",
	}
	if err := executor.ExecuteCommand(context.Background(), req); err != nil {
		t.Fatalf("ExecuteCommand failed: %v", err)
	}

	if runner.CallCount != 1 {
		t.Errorf("Expected 1 call, got %d", runner.CallCount)
	}
	if runner.LastPath != "/plugins/hosting" {
		t.Errorf("Unexpected path %q", runner.LastPath)
	}
	if len(runner.LastArgs) != 1 || runner.LastArgs[0] != plugin.FlagExecuteCommand {
		t.Errorf("Unexpected args %v", runner.LastArgs)
	}

	var decoded plugin.CommandRequest
	if err := json.Unmarshal(runner.LastStdin, &decoded); err != nil {
		t.Fatalf("Failed to decode stdin: %v", err)
	}
	if decoded.Input.Command != "add" || decoded.ProjectPath != "/work/app" || !decoded.Input.Flag("yes") {
		t.Errorf("Request not preserved: %+v", decoded)
	}
	if stdout.String() != "hosting configured\n" {
		t.Errorf("Plugin stdout not streamed, got %q", stdout.String())
	}
}

// TestHandleEventJSON tests the json-stdio event entry point.
func TestHandleEventJSON(t *testing.T) {
	runner := NewMockProcessRunner()
	executor, err := New("/plugins/notify", plugin.ProtocolJSON, WithRunner(runner), WithOutput(io.Discard, io.Discard))
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	args, err := plugin.NewEventArgs(plugin.EventPrePush, plugin.PrePushEventData{})
	if err != nil {
		t.Fatal(err)
	}
	req, err := plugin.NewEventRequest(args, plugin.Input{Plugin: plugin.CoreName, Command: "push"}, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := executor.HandleEvent(context.Background(), req); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if runner.LastArgs[0] != plugin.FlagHandleEvent {
		t.Errorf("Expected %s, got %v", plugin.FlagHandleEvent, runner.LastArgs)
	}
	if !strings.Contains(string(runner.LastStdin), `"event":"PrePush"`) {
		t.Errorf("Event missing from stdin: %s", runner.LastStdin)
	}
}

// TestExecuteCommandJSONError tests that stderr is quoted in the returned error.
func TestExecuteCommandJSONError(t *testing.T) {
	var stderr bytes.Buffer
	executor, err := New("/plugins/broken", plugin.ProtocolJSON,
		WithRunner(NewErrorMockProcessRunner("missing credentials")), WithOutput(io.Discard, &stderr))
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	err = executor.ExecuteCommand(context.Background(), plugin.CommandRequest{})
	if err == nil {
		t.Fatal("Expected error from plugin")
	}
	if !strings.Contains(err.Error(), "missing credentials") {
		t.Errorf("Expected stderr in error, got: %v", err)
	}
	if stderr.String() != "missing credentials" {
		t.Errorf("Expected stderr to be streamed, got %q", stderr.String())
	}
}

// TestExecuteCommandJSONCancelled tests cancellation by the caller.
func TestExecuteCommandJSONCancelled(t *testing.T) {
	executor, err := New("/plugins/slow", plugin.ProtocolJSON, WithRunner(NewTimeoutMockProcessRunner()))
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = executor.ExecuteCommand(ctx, plugin.CommandRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded error, got: %v", err)
	}
}

// TestTailBuffer tests that only the end of a long stderr stream is kept.
func TestTailBuffer(t *testing.T) {
	var b tailBuffer
	_, _ = b.Write([]byte(strings.Repeat("a", maxStderrTail)))
	_, _ = b.Write([]byte("tail"))

	if len(b.String()) != maxStderrTail {
		t.Errorf("Expected %d bytes, got %d", maxStderrTail, len(b.String()))
	}
	if !strings.HasSuffix(b.String(), "tail") {
		t.Error("Expected buffer to end with the latest write")
	}
}
