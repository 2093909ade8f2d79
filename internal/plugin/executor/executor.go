// Package executor provides a unified interface for executing external plugins
// regardless of their underlying protocol (go-plugin RPC or JSON-stdio).
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

// maxStderrTail bounds how much plugin stderr is quoted in an error.
const maxStderrTail = 4096

// PluginExecutor runs one external plugin executable.
type PluginExecutor struct {
	path         string
	protocolType plugin.Protocol
	client       *goplugin.Client
	rpcClient    *plugin.CommandPluginRPCClient
	runner       ProcessRunner
	logger       hclog.Logger
	stdout       io.Writer
	stderr       io.Writer
}

// Option configures a PluginExecutor.
type Option func(*PluginExecutor)

// WithRunner replaces the process runner used for json-stdio plugins.
func WithRunner(runner ProcessRunner) Option {
	return func(e *PluginExecutor) {
		e.runner = runner
	}
}

// WithLogger sets the logger handed to the go-plugin client.
func WithLogger(logger hclog.Logger) Option {
	return func(e *PluginExecutor) {
		e.logger = logger
	}
}

// WithOutput sets where plugin stdout and stderr are streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *PluginExecutor) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// New creates a PluginExecutor for the executable at pluginPath speaking protocolType.
// No process is started until the first call.
func New(pluginPath string, protocolType plugin.Protocol, opts ...Option) (*PluginExecutor, error) {
	switch protocolType {
	case plugin.ProtocolGoPlugin, plugin.ProtocolJSON:
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", protocolType)
	}

	e := &PluginExecutor{
		path:         pluginPath,
		protocolType: protocolType,
		runner:       NewRealProcessRunner(),
		logger:       hclog.NewNullLogger(),
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ExecuteCommand runs the plugin's command entry point and waits for it to finish.
func (e *PluginExecutor) ExecuteCommand(ctx context.Context, req plugin.CommandRequest) error {
	if e.protocolType == plugin.ProtocolGoPlugin {
		client, err := e.getRPCClient()
		if err != nil {
			return err
		}
		return client.ExecuteCommand(ctx, req)
	}
	return e.runJSON(ctx, plugin.FlagExecuteCommand, req)
}

// HandleEvent runs the plugin's event entry point and waits for it to finish.
func (e *PluginExecutor) HandleEvent(ctx context.Context, req plugin.EventRequest) error {
	if e.protocolType == plugin.ProtocolGoPlugin {
		client, err := e.getRPCClient()
		if err != nil {
			return err
		}
		return client.HandleEvent(ctx, req)
	}
	return e.runJSON(ctx, plugin.FlagHandleEvent, req)
}

// Close cleans up any resources held by the executor.
func (e *PluginExecutor) Close() {
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

// --- Go-Plugin RPC implementation ---

func (e *PluginExecutor) getRPCClient() (*plugin.CommandPluginRPCClient, error) {
	if e.rpcClient != nil {
		return e.rpcClient, nil
	}

	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: plugin.Handshake,
		Plugins: map[string]goplugin.Plugin{
			plugin.DispenseKey: &plugin.CommandPluginRPC{},
		},
		// #nosec G204 -- path comes from a scanned plugin manifest
		Cmd:              exec.Command(e.path),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           e.logger,
		SyncStdout:       e.stdout,
		SyncStderr:       e.stderr,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.DispenseKey)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*plugin.CommandPluginRPCClient)
	if !ok {
		e.Close()
		return nil, fmt.Errorf("unexpected plugin client type %T", raw)
	}
	e.rpcClient = client
	return client, nil
}

// --- JSON-stdio implementation ---

func (e *PluginExecutor) runJSON(ctx context.Context, entryPoint string, req any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var stderrTail tailBuffer
	err = e.runner.Run(ctx, e.path, []string{entryPoint}, bytes.NewReader(payload),
		e.stdout, io.MultiWriter(e.stderr, &stderrTail))
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("plugin execution interrupted: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderrTail.String()); msg != "" {
			return fmt.Errorf("plugin execution failed: %w: %s", err, msg)
		}
		return fmt.Errorf("plugin execution failed: %w", err)
	}
	return nil
}

// tailBuffer keeps the last maxStderrTail bytes written to it.
type tailBuffer struct {
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - maxStderrTail; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
