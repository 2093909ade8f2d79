// notify - plexus plugin for desktop notifications
//
// DEMONSTRATION GO-PLUGIN: This plugin uses the go-plugin RPC protocol.
// It subscribes to the PostInit and PostPush events and tells the user, through
// dunstify or notify-send, that a project was initialised or pushed.
//
// Build:
//   go build -o notify .
//
// Usage:
//   plexus plugin add ./contrib/plugins/notify
//   plexus notify test
//   plexus push
//
// Author: plexus Contributors
// License: MIT

package main

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

// NotifyPlugin sends desktop notifications for lifecycle events.
type NotifyPlugin struct{}

// ExecuteCommand implements plugin.CommandPlugin. The only command, test,
// sends a sample notification.
func (p *NotifyPlugin) ExecuteCommand(ctx context.Context, req plugin.CommandRequest) error {
	switch req.Input.Command {
	case "test":
		return notify(ctx, "plexus", "Notifications are working")
	default:
		return fmt.Errorf("unknown command %q", req.Input.Command)
	}
}

// HandleEvent implements plugin.CommandPlugin.
func (p *NotifyPlugin) HandleEvent(ctx context.Context, req plugin.EventRequest) error {
	project := filepath.Base(req.ProjectPath)
	switch req.Event {
	case plugin.EventPostInit:
		return notify(ctx, "Project initialised", fmt.Sprintf("%s is ready", project))
	case plugin.EventPostPush:
		return notify(ctx, "Project pushed", fmt.Sprintf("%s was pushed", project))
	default:
		return nil
	}
}

// notify prefers dunstify and falls back to notify-send.
func notify(ctx context.Context, summary, body string) error {
	for _, binary := range []string{"dunstify", "notify-send"} {
		path, err := exec.LookPath(binary)
		if err != nil {
			continue
		}
		// #nosec G204 -- path is resolved via exec.LookPath
		cmd := exec.CommandContext(ctx, path,
			"-a", "plexus",
			"-u", "low",
			"-t", "5000",
			summary,
			body,
		)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed: %w", binary, err)
		}
		return nil
	}
	return fmt.Errorf("neither dunstify nor notify-send found on $PATH")
}

func main() {
	// The process stays alive for every request of one plexus invocation.
	plugin.Serve(&NotifyPlugin{})
}
