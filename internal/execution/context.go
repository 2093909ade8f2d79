// Package execution resolves which plugin handles a command, runs it, and
// broadcasts the init and push lifecycle events to subscribed plugins.
package execution

import (
	"maps"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/plexus/internal/console"
	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/internal/prompt"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

// Context is the state of one command execution. It is shared by every step
// of that execution and must not be reused for another command.
type Context struct {
	Platform    *platform.Platform
	Print       *console.Printer
	Prompt      prompt.Prompter
	Logger      hclog.Logger
	ProjectPath string
	Verbose     bool

	input plugin.Input
}

// NewContext creates the context for executing in against p.
func NewContext(p *platform.Platform, in plugin.Input) *Context {
	return &Context{
		Platform: p,
		Print:    console.Default(),
		Prompt:   prompt.Defaults{},
		Logger:   hclog.NewNullLogger(),
		input:    in,
	}
}

// Input returns a copy of the current command input.
func (c *Context) Input() plugin.Input {
	in := c.input
	in.SubCommands = slices.Clone(c.input.SubCommands)
	in.Options = maps.Clone(c.input.Options)
	in.Argv = slices.Clone(c.input.Argv)
	return in
}

// SetCommand replaces the command name, typically with the canonical form of an alias.
// Every later step of the execution sees the new value.
func (c *Context) SetCommand(command string) {
	if c.input.Command != command {
		c.Logger.Debug("command rewritten", "from", c.input.Command, "to", command)
	}
	c.input.Command = command
}
