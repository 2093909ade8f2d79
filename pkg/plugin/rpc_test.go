package plugin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-plugin"
)

// Mock implementation for testing.
type mockCommandPlugin struct {
	commands   []CommandRequest
	events     []EventRequest
	commandErr error
	eventErr   error
}

func (m *mockCommandPlugin) ExecuteCommand(_ context.Context, req CommandRequest) error {
	m.commands = append(m.commands, req)
	return m.commandErr
}

func (m *mockCommandPlugin) HandleEvent(_ context.Context, req EventRequest) error {
	m.events = append(m.events, req)
	return m.eventErr
}

// TestCommandPluginRPC tests the command plugin RPC wrapper.
func TestCommandPluginRPC(t *testing.T) {
	mock := &mockCommandPlugin{}
	rpc := &CommandPluginRPC{Impl: mock}

	t.Run("Server", func(t *testing.T) {
		server, err := rpc.Server(nil)
		if err != nil {
			t.Fatalf("Server() error = %v", err)
		}
		rpcServer, ok := server.(*CommandPluginRPCServer)
		if !ok {
			t.Fatal("Server() returned wrong type")
		}
		if rpcServer.Impl != mock {
			t.Fatal("Server() impl not set correctly")
		}
	})

	t.Run("Client", func(t *testing.T) {
		client, err := rpc.Client(nil, nil)
		if err != nil {
			t.Fatalf("Client() error = %v", err)
		}
		if _, ok := client.(*CommandPluginRPCClient); !ok {
			t.Fatal("Client() returned wrong type")
		}
	})
}

// TestCommandPluginRPCServer tests the RPC server methods.
func TestCommandPluginRPCServer(t *testing.T) {
	t.Run("ExecuteCommandSuccess", func(t *testing.T) {
		mock := &mockCommandPlugin{}
		server := &CommandPluginRPCServer{Impl: mock}

		var resp string
		req := CommandRequest{Input: Input{Plugin: "hosting", Command: "add"}}
		if err := server.ExecuteCommand(req, &resp); err != nil {
			t.Fatalf("ExecuteCommand() error = %v", err)
		}
		if resp != "" {
			t.Errorf("ExecuteCommand() resp = %q, want empty", resp)
		}
		if len(mock.commands) != 1 || mock.commands[0].Input.Command != "add" {
			t.Errorf("ExecuteCommand() did not reach impl: %+v", mock.commands)
		}
	})

	t.Run("ExecuteCommandFailure", func(t *testing.T) {
		server := &CommandPluginRPCServer{Impl: &mockCommandPlugin{commandErr: errors.New("boom")}}

		var resp string
		if err := server.ExecuteCommand(CommandRequest{}, &resp); err != nil {
			t.Fatalf("ExecuteCommand() error = %v", err)
		}
		if resp != "boom" {
			t.Errorf("ExecuteCommand() resp = %q, want %q", resp, "boom")
		}
	})

	t.Run("HandleEventFailure", func(t *testing.T) {
		server := &CommandPluginRPCServer{Impl: &mockCommandPlugin{eventErr: errors.New("handler")}}

		var resp string
		if err := server.HandleEvent(EventRequest{Event: EventPreInit}, &resp); err != nil {
			t.Fatalf("HandleEvent() error = %v", err)
		}
		if resp != "handler" {
			t.Errorf("HandleEvent() resp = %q, want %q", resp, "handler")
		}
	})
}

// TestCommandPluginRPCRoundTrip runs the client against an in-process server.
func TestCommandPluginRPCRoundTrip(t *testing.T) {
	mock := &mockCommandPlugin{eventErr: errors.New("not ready")}
	client, _ := plugin.TestPluginRPCConn(t, map[string]plugin.Plugin{
		DispenseKey: &CommandPluginRPC{Impl: mock},
	}, nil)
	defer client.Close()

	raw, err := client.Dispense(DispenseKey)
	if err != nil {
		t.Fatalf("Dispense() error = %v", err)
	}
	rpcClient, ok := raw.(*CommandPluginRPCClient)
	if !ok {
		t.Fatalf("Dispense() returned %T", raw)
	}

	req := CommandRequest{Input: Input{
		Plugin:      "api",
		Command:     "list",
		SubCommands: []string{"all"},
		Options:     map[string]string{"json": "true"},
	}}
	if err := rpcClient.ExecuteCommand(context.Background(), req); err != nil {
		t.Fatalf("ExecuteCommand() error = %v", err)
	}
	if len(mock.commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(mock.commands))
	}
	got := mock.commands[0].Input
	if got.Command != "list" || !got.Flag("json") || got.SubCommands[0] != "all" {
		t.Errorf("command input not transferred: %+v", got)
	}

	evArgs, err := NewEventArgs(EventPostPush, PostPushEventData{})
	if err != nil {
		t.Fatalf("NewEventArgs() error = %v", err)
	}
	evReq, err := NewEventRequest(evArgs, Input{Plugin: CoreName, Command: "push"}, "/tmp/project")
	if err != nil {
		t.Fatalf("NewEventRequest() error = %v", err)
	}

	err = rpcClient.HandleEvent(context.Background(), evReq)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("HandleEvent() error = %v, want *RPCError", err)
	}
	if rpcErr.Message != "not ready" {
		t.Errorf("RPCError message = %q", rpcErr.Message)
	}
	if mock.events[0].Event != EventPostPush {
		t.Errorf("event = %s, want %s", mock.events[0].Event, EventPostPush)
	}
}

// TestServeJSON tests the JSON-stdio entry point dispatch.
func TestServeJSON(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		stdin       string
		wantErr     bool
		wantCommand string
		wantEvent   Event
	}{
		{
			name:        "execute command",
			args:        []string{FlagExecuteCommand},
			stdin:       `{"input":{"plugin":"hosting","command":"publish"}}`,
			wantCommand: "publish",
		},
		{
			name:      "handle event",
			args:      []string{FlagHandleEvent},
			stdin:     `{"event":"PreInit","data":{}}`,
			wantEvent: EventPreInit,
		},
		{
			name:    "no entry point",
			args:    nil,
			wantErr: true,
		},
		{
			name:    "unknown entry point",
			args:    []string{"--plugin-info"},
			wantErr: true,
		},
		{
			name:    "malformed request",
			args:    []string{FlagExecuteCommand},
			stdin:   `{"input":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCommandPlugin{}
			err := ServeJSON(context.Background(), mock, tt.args, strings.NewReader(tt.stdin))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ServeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantCommand != "" && (len(mock.commands) != 1 || mock.commands[0].Input.Command != tt.wantCommand) {
				t.Errorf("command not dispatched: %+v", mock.commands)
			}
			if tt.wantEvent != "" && (len(mock.events) != 1 || mock.events[0].Event != tt.wantEvent) {
				t.Errorf("event not dispatched: %+v", mock.events)
			}
		})
	}
}
