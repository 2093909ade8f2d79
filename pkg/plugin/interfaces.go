// Package plugin provides the public API for plexus plugins.
package plugin

import (
	"context"
)

// CommandPlugin is the interface that external plugins implement.
// The same interface backs both the go-plugin RPC and the JSON-stdio protocols.
type CommandPlugin interface {
	// ExecuteCommand runs req.Input.Command. It must return once the command is complete.
	ExecuteCommand(ctx context.Context, req CommandRequest) error

	// HandleEvent reacts to a lifecycle event the plugin subscribed to.
	HandleEvent(ctx context.Context, req EventRequest) error
}
