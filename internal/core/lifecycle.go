package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jmylchreest/plexus/internal/console"
	"github.com/jmylchreest/plexus/internal/execution"
	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

const (
	projectConfigVersion = "1.0"
	defaultEnvName       = "dev"
)

func (c *Plugin) runInit(_ context.Context, ec *execution.Context) error {
	in := ec.Input()
	project := OpenProject(ec.ProjectPath)
	if project.Initialised() {
		return fmt.Errorf("%w in %s", ErrAlreadyInitialised, ec.ProjectPath)
	}

	name, ok := in.Option("name")
	if !ok {
		var err error
		name, err = ec.Prompt.Input("Enter a name for the project", defaultProjectName(ec.ProjectPath))
		if err != nil {
			return err
		}
	}
	if err := validateProjectName(name); err != nil {
		return err
	}

	envName, ok := in.Option("env")
	if !ok {
		var err error
		envName, err = ec.Prompt.Input("Enter a name for the environment", defaultEnvName)
		if err != nil {
			return err
		}
	}
	if err := validateEnvName(envName); err != nil {
		return err
	}

	providers, err := chooseProviders(ec)
	if err != nil {
		return err
	}

	now := c.opts.Now()
	cfg := &ProjectConfig{
		ProjectName: name,
		Version:     projectConfigVersion,
		Providers:   providers,
		CreatedAt:   now,
	}
	if err := project.SaveConfig(cfg); err != nil {
		return err
	}
	envs := map[string]Environment{envName: {Providers: providers, CreatedAt: now}}
	if err := project.SaveEnvironments(envs); err != nil {
		return err
	}
	if err := project.SetCurrentEnv(envName); err != nil {
		return err
	}

	ec.Print.Success("Your project %s has been successfully initialised.", name)
	ec.Print.Info("Current environment: %s", envName)
	return nil
}

// chooseProviders picks the provider plugins recorded for the project.
func chooseProviders(ec *execution.Context) ([]string, error) {
	in := ec.Input()
	var available []string
	for _, info := range platform.PluginsWithType(ec.Platform, plugin.TypeProvider) {
		if !slices.Contains(available, info.PackageName) {
			available = append(available, info.PackageName)
		}
	}

	if requested, ok := in.Option("providers"); ok {
		var providers []string
		for _, name := range strings.Split(requested, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if !slices.Contains(available, name) {
				return nil, fmt.Errorf("provider plugin %q is not installed", name)
			}
			providers = append(providers, name)
		}
		return providers, nil
	}

	switch len(available) {
	case 0:
		ec.Print.Warning("No provider plugins are installed.")
		return []string{}, nil
	case 1:
		return available, nil
	}

	all := make([]int, len(available))
	for i := range all {
		all[i] = i
	}
	chosen, err := ec.Prompt.MultiSelect("Select the providers to initialise", available, all)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return nil, fmt.Errorf("at least one provider must be selected")
	}
	providers := make([]string, 0, len(chosen))
	for _, i := range chosen {
		providers = append(providers, available[i])
	}
	return providers, nil
}

func (c *Plugin) runPush(_ context.Context, ec *execution.Context) error {
	in := ec.Input()
	project := OpenProject(ec.ProjectPath)
	cfg, err := project.Config()
	if err != nil {
		return err
	}
	envName, err := project.CurrentEnv()
	if err != nil {
		return err
	}
	envs, err := project.Environments()
	if err != nil {
		return err
	}
	env, ok := envs[envName]
	if !ok {
		return fmt.Errorf("current environment %q does not exist, run plexus env checkout", envName)
	}

	if !in.Flag("yes") {
		proceed, err := ec.Prompt.Confirm("Are you sure you want to continue?", true)
		if err != nil {
			return err
		}
		if !proceed {
			ec.Print.Info("Push cancelled.")
			return nil
		}
	}

	now := c.opts.Now()
	cfg.LastPushTime = &now
	env.LastPushTime = &now
	envs[envName] = env
	if err := project.SaveConfig(cfg); err != nil {
		return err
	}
	if err := project.SaveEnvironments(envs); err != nil {
		return err
	}

	ec.Print.Success("Environment %s pushed.", envName)
	if len(env.Providers) > 0 {
		ec.Print.Info("Providers: %s", strings.Join(env.Providers, ", "))
	}
	return nil
}

func (c *Plugin) runStatus(_ context.Context, ec *execution.Context) error {
	project := OpenProject(ec.ProjectPath)
	cfg, err := project.Config()
	switch {
	case err == nil:
		envName, err := project.CurrentEnv()
		if err != nil {
			return err
		}
		ec.Print.Line("%s %s", ec.Print.Blue("Project:"), cfg.ProjectName)
		ec.Print.Line("%s %s", ec.Print.Blue("Current environment:"), envName)
		ec.Print.Line("%s %s", ec.Print.Blue("Providers:"), strings.Join(cfg.Providers, ", "))
		if cfg.LastPushTime != nil {
			ec.Print.Line("%s %s", ec.Print.Blue("Last push:"), cfg.LastPushTime.Format("2006-01-02 15:04:05"))
		}
	case errors.Is(err, ErrNotInitialised):
		ec.Print.Info("No plexus project in %s", ec.ProjectPath)
	default:
		return err
	}

	ec.Print.Line("")
	ec.Print.Table(pluginTable(ec.Platform.Plugins))
	return nil
}

func pluginTable(infos []platform.PluginInfo) *console.Table {
	table := console.NewTable("Name", "Version", "Type", "Commands", "Events", "Location")
	table.WrapColumn(3, 40)
	for _, info := range infos {
		events := make([]string, len(info.Manifest.EventHandlers))
		for i, e := range info.Manifest.EventHandlers {
			events[i] = string(e)
		}
		table.AddRow(
			info.PackageName,
			info.PackageVersion,
			string(info.Manifest.Type),
			strings.Join(info.Manifest.Commands, " "),
			strings.Join(events, " "),
			info.PackageLocation,
		)
	}
	return table
}
