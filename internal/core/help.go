package core

import (
	"context"
	"strings"

	"github.com/jmylchreest/plexus/internal/console"
	"github.com/jmylchreest/plexus/internal/execution"
	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/internal/version"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

type helpEntry struct {
	name        string
	description string
}

var coreHelp = []helpEntry{
	{"init", "Initialises a new project, sets up providers and the first environment"},
	{"push", "Pushes the current environment with the initialised providers"},
	{"status", "Shows the project state and the installed plugins"},
	{"env <subcommand>", "Adds, lists, checks out and removes environments"},
	{"plugin <subcommand>", "Lists, scans, adds, removes and creates plugins"},
	{"help", "Displays this help"},
	{"version", "Prints the plexus version"},
}

// showHelp prints a command table under header.
func showHelp(p *console.Printer, header string, entries []helpEntry) {
	p.Line("")
	p.Line("%s", p.Green(header))
	p.Line("")
	table := console.NewTable("Command", "Description")
	table.WrapColumn(1, 80)
	for _, e := range entries {
		table.AddRow(e.name, e.description)
	}
	p.Table(table)
	p.Line("")
}

func (c *Plugin) runHelp(_ context.Context, ec *execution.Context) error {
	showHelp(ec.Print, "plexus <command> [subcommands] [options]", coreHelp)

	var others []platform.PluginInfo
	for _, info := range ec.Platform.Plugins {
		if info.PackageName != plugin.CoreName && len(info.Manifest.Commands) > 0 {
			others = append(others, info)
		}
	}
	if len(others) == 0 {
		return nil
	}

	ec.Print.Line("%s", ec.Print.Green("plexus <plugin> <command> [subcommands] [options]"))
	ec.Print.Line("")
	table := console.NewTable("Plugin", "Type", "Commands")
	table.WrapColumn(2, 60)
	for _, info := range others {
		table.AddRow(info.Label(), string(info.Manifest.Type), strings.Join(info.Manifest.Commands, ", "))
	}
	ec.Print.Table(table)
	ec.Print.Line("")
	return nil
}

func (c *Plugin) runVersion(_ context.Context, ec *execution.Context) error {
	ec.Print.Line("%s", version.String())
	return nil
}
