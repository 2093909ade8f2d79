// Package plugin provides the public API for plexus plugins.
package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// CommandPluginRPC implements the go-plugin Plugin interface for command plugins.
type CommandPluginRPC struct {
	plugin.Plugin
	Impl CommandPlugin
}

// Server returns an RPC server for this plugin.
func (p *CommandPluginRPC) Server(*plugin.MuxBroker) (any, error) {
	return &CommandPluginRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *CommandPluginRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &CommandPluginRPCClient{client: c}, nil
}

// CommandPluginRPCServer is the RPC server implementation for command plugins.
// Plugin failures travel back as a string so the host can tell them apart
// from transport errors.
type CommandPluginRPCServer struct {
	Impl CommandPlugin
}

// ExecuteCommand implements the RPC method for command execution.
func (s *CommandPluginRPCServer) ExecuteCommand(req CommandRequest, resp *string) error {
	if err := s.Impl.ExecuteCommand(context.Background(), req); err != nil {
		*resp = err.Error()
	}
	return nil
}

// HandleEvent implements the RPC method for event handling.
func (s *CommandPluginRPCServer) HandleEvent(req EventRequest, resp *string) error {
	if err := s.Impl.HandleEvent(context.Background(), req); err != nil {
		*resp = err.Error()
	}
	return nil
}

// CommandPluginRPCClient is the RPC client implementation for command plugins.
type CommandPluginRPCClient struct {
	client *rpc.Client
}

// ExecuteCommand calls the remote ExecuteCommand method.
func (c *CommandPluginRPCClient) ExecuteCommand(_ context.Context, req CommandRequest) error {
	var errMsg string
	if err := c.client.Call("Plugin.ExecuteCommand", req, &errMsg); err != nil {
		return err
	}
	if errMsg != "" {
		return &RPCError{Message: errMsg}
	}
	return nil
}

// HandleEvent calls the remote HandleEvent method.
func (c *CommandPluginRPCClient) HandleEvent(_ context.Context, req EventRequest) error {
	var errMsg string
	if err := c.client.Call("Plugin.HandleEvent", req, &errMsg); err != nil {
		return err
	}
	if errMsg != "" {
		return &RPCError{Message: errMsg}
	}
	return nil
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
