// Package core is the built-in plugin. It owns the project lifecycle commands
// (init, push), environment management, and plugin platform inspection.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jmylchreest/plexus/internal/execution"
	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/internal/version"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

// Registry changes the set of user-added plugin locations.
type Registry interface {
	AddLocation(ctx context.Context, p *platform.Platform, dir string) error
	RemoveLocation(ctx context.Context, p *platform.Platform, dir string) error
}

// Options holds the collaborators of the core plugin.
type Options struct {
	Rescanner execution.Rescanner
	Registry  Registry
	Now       func() time.Time
}

type handler func(ctx context.Context, ec *execution.Context) error

// Plugin implements the core commands.
type Plugin struct {
	opts     Options
	handlers map[string]handler
}

// New creates the core plugin.
func New(opts Options) *Plugin {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Plugin{opts: opts}
	c.handlers = map[string]handler{
		"init":    c.runInit,
		"push":    c.runPush,
		"status":  c.runStatus,
		"env":     c.runEnv,
		"plugin":  c.runPlugin,
		"help":    c.runHelp,
		"version": c.runVersion,
	}
	return c
}

// Manifest describes the core commands.
func Manifest() plugin.Manifest {
	return plugin.Manifest{
		Name:        plugin.CoreName,
		Version:     version.Short(),
		Type:        plugin.TypeCore,
		Description: "Project lifecycle, environments and plugin management",
		Commands:    []string{"init", "push", "status", "env", "plugin", "help", "version"},
		CommandAliases: map[string]string{
			"h":         "help",
			"-h":        "help",
			"--help":    "help",
			"-v":        "version",
			"--version": "version",
			"st":        "status",
		},
		ProtocolVersion: plugin.ProtocolVersion,
	}
}

// Info returns the registry entry of the core plugin installed at location.
func Info(location string) platform.PluginInfo {
	m := Manifest()
	return platform.PluginInfo{
		PackageName:     m.Name,
		PackageVersion:  m.Version,
		PackageLocation: location,
		Manifest:        m,
	}
}

// ExecuteCommand implements execution.Module.
func (c *Plugin) ExecuteCommand(ctx context.Context, ec *execution.Context) error {
	command := ec.Input().Command
	h, ok := c.handlers[command]
	if !ok {
		return fmt.Errorf("unknown core command %q", command)
	}
	return h(ctx, ec)
}

// HandleEvent implements execution.Module. The core plugin subscribes to no events.
func (c *Plugin) HandleEvent(context.Context, *execution.Context, plugin.EventArgs) error {
	return nil
}

// subCommand returns the i-th subcommand, or "".
func subCommand(in plugin.Input, i int) string {
	if i < len(in.SubCommands) {
		return in.SubCommands[i]
	}
	return ""
}
