package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jmylchreest/plexus/internal/console"
	"github.com/jmylchreest/plexus/internal/execution"
	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

// Sections of plexus plugin list.
const (
	sectionPlugins       = "plugins"
	sectionExcluded      = "excluded"
	sectionGeneralInfo   = "general information"
	sectionConfiguration = "configuration"
	sectionAll           = "all"

	learnMoreTypes  = "Learn more about plexus plugin types"
	learnMoreEvents = "Learn more about plexus events"
)

var pluginHelp = []helpEntry{
	{"list [--section <section>] [--name <plugin>]", "Lists the plugin platform: plugins, excluded, general information, configuration or all"},
	{"scan", "Rescans the plugin directories and user-added locations"},
	{"add <dir>", "Adds a plugin directory outside the plugin directories"},
	{"remove <dir>", "Removes a previously added plugin directory"},
	{"new <name> [--type <type>] [--dir <dir>]", "Creates a plugin directory with a manifest"},
}

var typeDescriptions = map[plugin.Type]string{
	plugin.TypeCategory: "category plugins allow the user to add, remove and configure a set of backend resources. " +
		"They use provider plugins to set up and update the actual resources. " +
		"The core has no special handling for category plugins.",
	plugin.TypeProvider: "provider plugins set up and update resources with a cloud provider and maintain the " +
		"communication with its services. plexus init records the provider plugins of a project " +
		"and plexus push pushes the current environment with them.",
	plugin.TypeFrontend: "frontend plugins detect the frontend framework of a project, elect to handle it, " +
		"and generate the configuration files of the frontend libraries whenever backend resources change.",
	plugin.TypeUtil: "util plugins are general purpose plugins that provide helper functions for other plugins. " +
		"The core has no special handling for util plugins.",
}

var eventDescriptions = map[plugin.Event]string{
	plugin.EventPreInit:  "raised before the plexus init command runs",
	plugin.EventPostInit: "raised when the plexus init command completes",
	plugin.EventPrePush:  "raised before the plexus push command runs",
	plugin.EventPostPush: "raised when the plexus push command completes",
}

func (c *Plugin) runPlugin(ctx context.Context, ec *execution.Context) error {
	in := ec.Input()
	switch sub := subCommand(in, 0); sub {
	case "list", "ls":
		return listPlatform(ec)
	case "scan":
		return c.scan(ctx, ec)
	case "add":
		return c.changeLocation(ctx, ec, c.opts.Registry.AddLocation, "added")
	case "remove":
		return c.changeLocation(ctx, ec, c.opts.Registry.RemoveLocation, "removed")
	case "new":
		return newPlugin(ec)
	default:
		showHelp(ec.Print, "plexus plugin <subcommands>", pluginHelp)
		return nil
	}
}

func (c *Plugin) scan(ctx context.Context, ec *execution.Context) error {
	if err := c.opts.Rescanner.Rescan(ctx, ec.Platform); err != nil {
		return err
	}
	ec.Print.Success("Scan complete: %d plugins registered, %d excluded.",
		len(ec.Platform.Plugins), len(ec.Platform.Excluded))
	return nil
}

type locationChange func(ctx context.Context, p *platform.Platform, dir string) error

func (c *Plugin) changeLocation(ctx context.Context, ec *execution.Context, change locationChange, verb string) error {
	dir := subCommand(ec.Input(), 1)
	if dir == "" {
		return fmt.Errorf("a plugin directory is required")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(ec.ProjectPath, dir)
	}
	if err := change(ctx, ec.Platform, dir); err != nil {
		return err
	}
	ec.Print.Success("Plugin location %s %s.", dir, verb)
	return nil
}

// listPlatform implements plexus plugin list.
func listPlatform(ec *execution.Context) error {
	section, ok := ec.Input().Option("section")
	if !ok {
		sections := []string{sectionPlugins, sectionExcluded, sectionGeneralInfo, sectionConfiguration, sectionAll}
		i, err := ec.Prompt.Select("Select the section to list", sections)
		if err != nil {
			return err
		}
		section = sections[i]
	}

	p := ec.Platform
	switch section {
	case sectionPlugins:
		return listPlugins(ec)
	case sectionExcluded:
		displayExcluded(ec.Print, p.Excluded)
	case sectionGeneralInfo:
		displayGeneralInfo(ec.Print, p)
	case sectionConfiguration:
		displayConfiguration(ec.Print, p)
	case sectionAll:
		displayGeneralInfo(ec.Print, p)
		displayConfiguration(ec.Print, p)
		ec.Print.Line("%s", ec.Print.Blue("Plugins"))
		ec.Print.Table(pluginTable(p.Plugins))
		displayExcluded(ec.Print, p.Excluded)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
	return nil
}

func listPlugins(ec *execution.Context) error {
	names := ec.Platform.Names()
	if len(names) == 0 {
		ec.Print.Info("The collection is empty")
		return nil
	}

	selected := names[0]
	if name, ok := ec.Input().Option("name"); ok {
		selected = name
	} else if len(names) > 1 {
		options := append(slices.Clone(names), sectionAll)
		i, err := ec.Prompt.Select("Select the name of the plugin to list", options)
		if err != nil {
			return err
		}
		selected = options[i]
	}

	infos := ec.Platform.Plugins
	if selected != sectionAll {
		infos = platform.PluginsWithName(ec.Platform, selected)
		if len(infos) == 0 {
			return fmt.Errorf("no plugin named %q", selected)
		}
	}
	ec.Print.Table(pluginTable(infos))
	return nil
}

func displayExcluded(p *console.Printer, excluded []platform.ExcludedPlugin) {
	p.Line("%s", p.Blue("Excluded"))
	if len(excluded) == 0 {
		p.Info("The collection is empty")
		return
	}
	table := console.NewTable("Name", "Location", "Reason")
	table.WrapColumn(2, 60)
	for _, e := range excluded {
		table.AddRow(e.PackageName, e.PackageLocation, e.Reason)
	}
	p.Table(table)
}

func displayGeneralInfo(p *console.Printer, pl *platform.Platform) {
	p.Line("%s", p.Blue("General information"))
	p.Line("Last scan time: %s", pl.LastScanTime.Format(time.RFC3339))
	p.Line("Max scan interval: %ds", pl.MaxScanIntervalInSeconds)
	p.Line("Registered plugins: %d", len(pl.Plugins))
	p.Line("Excluded plugins: %d", len(pl.Excluded))
}

func displayConfiguration(p *console.Printer, pl *platform.Platform) {
	p.Line("%s", p.Blue("Configuration"))
	p.Line("Plugin directories: %s", strings.Join(pl.PluginDirectories, ", "))
	p.Line("Plugin prefixes: %s", strings.Join(pl.PluginPrefixes, ", "))
	p.Line("User added locations: %s", strings.Join(pl.UserAddedLocations, ", "))
}

// newPlugin implements plexus plugin new. It writes the manifest of a plugin
// whose executable the author builds afterwards.
func newPlugin(ec *execution.Context) error {
	in := ec.Input()
	name := subCommand(in, 1)
	if name == "" {
		var err error
		if name, err = ec.Prompt.Input("What should be the name of the plugin?", ""); err != nil {
			return err
		}
	}
	if !projectNamePattern.MatchString(name) || name == plugin.CoreName {
		return fmt.Errorf("invalid plugin name %q: use 3 to 20 alphanumeric characters", name)
	}

	parent := ec.ProjectPath
	if dir, ok := in.Option("dir"); ok {
		parent = dir
	}
	dir := filepath.Join(parent, "plexus-"+name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%s already exists", dir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	typ, err := promptPluginType(ec)
	if err != nil {
		return err
	}
	events, err := promptEventSubscription(ec)
	if err != nil {
		return err
	}

	manifest := plugin.Manifest{
		Name:            name,
		Version:         "0.1.0",
		Type:            typ,
		Commands:        []string{"help", "version"},
		CommandAliases:  map[string]string{"-h": "help", "-v": "version"},
		EventHandlers:   events,
		Executable:      filepath.Join("bin", name),
		PluginProtocol:  plugin.ProtocolJSON,
		ProtocolVersion: plugin.ProtocolVersion,
	}
	if err := writeJSON(filepath.Join(dir, plugin.ManifestFileName), manifest); err != nil {
		return err
	}

	ec.Print.Success("The plugin manifest was written to %s.", dir)
	ec.Print.Info("Build the plugin executable at %s, then run:", filepath.Join(dir, manifest.Executable))
	ec.Print.Line("  plexus plugin add %s", dir)
	return nil
}

// promptPluginType asks for the plugin type until a type is chosen.
func promptPluginType(ec *execution.Context) (plugin.Type, error) {
	in := ec.Input()
	if t, ok := in.Option("type"); ok {
		typ := plugin.Type(t)
		if !slices.Contains(plugin.Types(), typ) {
			return "", fmt.Errorf("unknown plugin type %q", t)
		}
		return typ, nil
	}
	if in.Flag("yes") {
		return plugin.TypeUtil, nil
	}

	types := plugin.Types()
	choices := make([]string, 0, len(types)+1)
	for _, t := range types {
		choices = append(choices, string(t))
	}
	choices = append(choices, learnMoreTypes)

	for {
		i, err := ec.Prompt.Select("Specify the plugin type", choices)
		if err != nil {
			return "", err
		}
		if i < len(types) {
			return types[i], nil
		}
		displayPluginTypes(ec.Print)
	}
}

func displayPluginTypes(p *console.Printer) {
	p.Line("%s", p.Green("plexus supports these plugin types:"))
	for _, t := range plugin.Types() {
		p.Line("%s", p.Blue(string(t)))
		p.Line("%s", p.Green(typeDescriptions[t]))
	}
}

// promptEventSubscription asks which events the plugin handles until the
// answer does not include the learn more entry.
func promptEventSubscription(ec *execution.Context) ([]plugin.Event, error) {
	events := plugin.Events()
	if ec.Input().Flag("yes") {
		return events, nil
	}

	choices := make([]string, 0, len(events)+1)
	all := make([]int, 0, len(events))
	for i, e := range events {
		choices = append(choices, string(e))
		all = append(all, i)
	}
	choices = append(choices, learnMoreEvents)

	for {
		chosen, err := ec.Prompt.MultiSelect("Which plexus events does the plugin subscribe to?", choices, all)
		if err != nil {
			return nil, err
		}
		if slices.Contains(chosen, len(events)) {
			displayEvents(ec.Print)
			continue
		}
		selected := make([]plugin.Event, 0, len(chosen))
		for _, i := range chosen {
			selected = append(selected, events[i])
		}
		return selected, nil
	}
}

func displayEvents(p *console.Printer) {
	p.Line("%s", p.Green("plexus broadcasts events so plugins can react to core commands without the core depending on them."))
	p.Line("%s", p.Green("If a plugin subscribes to an event, its event handler is invoked when the event is raised."))
	p.Line("")
	for _, e := range plugin.Events() {
		p.Line("%s", p.Blue(string(e)))
		p.Line("    %s", p.Green(string(e)+" is "+eventDescriptions[e]+"."))
	}
	p.Warning("Events might be added or removed in future releases.")
}
