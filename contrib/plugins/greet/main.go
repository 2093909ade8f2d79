// greet - Example plexus plugin using the JSON-stdio protocol
//
// This example demonstrates:
// - A YAML manifest (plexus-plugin.yaml) with a command alias
// - Reading the request for --execute-command and --handle-event from stdin
// - Writing output to stdout, which plexus streams to the terminal
// - Failing with a message on stderr and a non-zero exit status
//
// Build:
//   go build -o greet .
//
// Usage:
//   plexus plugin add ./contrib/plugins/greet
//   plexus greet hello --name world
//   plexus greet hi
//
//   # Without plexus
//   echo '{"input":{"plugin":"greet","command":"hello"}}' | ./greet --execute-command
//
// Author: plexus Contributors
// License: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

// GreetPlugin implements plugin.CommandPlugin.
type GreetPlugin struct{}

// ExecuteCommand greets --name, or the project directory when no name is given.
func (p *GreetPlugin) ExecuteCommand(_ context.Context, req plugin.CommandRequest) error {
	if req.Input.Command != "hello" {
		return fmt.Errorf("unknown command %q", req.Input.Command)
	}
	name, ok := req.Input.Option("name")
	if !ok {
		name = req.ProjectPath
	}
	fmt.Printf("Hello, %s!\n", name)
	if req.Verbose {
		fmt.Printf("subcommands: %v, options: %v\n", req.Input.SubCommands, req.Input.Options)
	}
	return nil
}

// HandleEvent prints a line before plexus init runs.
func (p *GreetPlugin) HandleEvent(_ context.Context, req plugin.EventRequest) error {
	if req.Event == plugin.EventPreInit {
		fmt.Println("greet: initialising a new plexus project")
	}
	return nil
}

func main() {
	if err := plugin.ServeJSON(context.Background(), &GreetPlugin{}, os.Args[1:], os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "greet: %v\n", err)
		os.Exit(1)
	}
}
