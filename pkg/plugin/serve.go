package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-plugin"
)

// Serve runs impl as a go-plugin RPC server. It blocks until the host disconnects.
// Plugins declaring "pluginProtocol": "go-plugin" call this from main.
func Serve(impl CommandPlugin) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			DispenseKey: &CommandPluginRPC{Impl: impl},
		},
	})
}

// ServeJSON runs one JSON-stdio request against impl.
// args are the process arguments without the program name; stdin carries the request.
func ServeJSON(ctx context.Context, impl CommandPlugin, args []string, stdin io.Reader) error {
	if len(args) == 0 {
		return fmt.Errorf("expected %s or %s", FlagExecuteCommand, FlagHandleEvent)
	}

	dec := json.NewDecoder(stdin)
	switch args[0] {
	case FlagExecuteCommand:
		var req CommandRequest
		if err := dec.Decode(&req); err != nil {
			return fmt.Errorf("failed to parse command request: %w", err)
		}
		return impl.ExecuteCommand(ctx, req)
	case FlagHandleEvent:
		var req EventRequest
		if err := dec.Decode(&req); err != nil {
			return fmt.Errorf("failed to parse event request: %w", err)
		}
		return impl.HandleEvent(ctx, req)
	default:
		return fmt.Errorf("unknown entry point: %s", args[0])
	}
}
