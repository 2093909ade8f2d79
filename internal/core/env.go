package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmylchreest/plexus/internal/console"
	"github.com/jmylchreest/plexus/internal/execution"
)

var envHelp = []helpEntry{
	{"add <env-name>", "Adds a new environment to your project and checks it out"},
	{"list [--details] [--json]", "Displays a list of all the environments in your project"},
	{"get --name <env-name> [--json]", "Displays the details of the environment specified in the command"},
	{"checkout <env-name>", "Moves your project to the environment specified in the command"},
	{"remove <env-name>", "Removes an environment from the project"},
}

func (c *Plugin) runEnv(_ context.Context, ec *execution.Context) error {
	in := ec.Input()
	sub := subCommand(in, 0)
	if sub == "" || sub == "help" || in.Flag("help") {
		showHelp(ec.Print, "plexus env <subcommands>", envHelp)
		return nil
	}

	project := OpenProject(ec.ProjectPath)
	if !project.Initialised() {
		return ErrNotInitialised
	}

	switch sub {
	case "add":
		return c.envAdd(ec, project)
	case "list":
		return envList(ec, project)
	case "get":
		return envGet(ec, project)
	case "checkout":
		return envCheckout(ec, project)
	case "remove":
		return envRemove(ec, project)
	default:
		showHelp(ec.Print, "plexus env <subcommands>", envHelp)
		return nil
	}
}

// envName takes the name from the second subcommand, then --name, then a prompt.
func envName(ec *execution.Context, question string) (string, error) {
	in := ec.Input()
	if name := subCommand(in, 1); name != "" {
		return name, nil
	}
	if name, ok := in.Option("name"); ok {
		return name, nil
	}
	name, err := ec.Prompt.Input(question, "")
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("an environment name is required")
	}
	return name, nil
}

func (c *Plugin) envAdd(ec *execution.Context, project *Project) error {
	name, err := envName(ec, "Enter a name for the environment")
	if err != nil {
		return err
	}
	if err := validateEnvName(name); err != nil {
		return err
	}

	cfg, err := project.Config()
	if err != nil {
		return err
	}
	envs, err := project.Environments()
	if err != nil {
		return err
	}
	if _, exists := envs[name]; exists {
		return fmt.Errorf("environment %q already exists", name)
	}

	envs[name] = Environment{Providers: cfg.Providers, CreatedAt: c.opts.Now()}
	if err := project.SaveEnvironments(envs); err != nil {
		return err
	}
	if err := project.SetCurrentEnv(name); err != nil {
		return err
	}
	ec.Print.Success("Environment %s added and checked out.", name)
	return nil
}

type envSummary struct {
	Name         string     `json:"name"`
	Current      bool       `json:"current"`
	Providers    []string   `json:"providers"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastPushTime *time.Time `json:"lastPushTime,omitempty"`
}

func summarise(name, current string, env Environment) envSummary {
	return envSummary{
		Name:         name,
		Current:      name == current,
		Providers:    env.Providers,
		CreatedAt:    env.CreatedAt,
		LastPushTime: env.LastPushTime,
	}
}

func envList(ec *execution.Context, project *Project) error {
	in := ec.Input()
	envs, err := project.Environments()
	if err != nil {
		return err
	}
	current, err := project.CurrentEnv()
	if err != nil {
		return err
	}

	summaries := make([]envSummary, 0, len(envs))
	for _, name := range EnvNames(envs) {
		summaries = append(summaries, summarise(name, current, envs[name]))
	}

	if in.Flag("json") {
		return writeIndented(ec, summaries)
	}

	table := console.NewTable("Environments")
	if in.Flag("details") {
		table = console.NewTable("Environment", "Providers", "Created", "Last push")
	}
	for _, s := range summaries {
		label := s.Name
		if s.Current {
			label = "*" + label
		}
		if in.Flag("details") {
			table.AddRow(label, fmt.Sprint(s.Providers), s.CreatedAt.Format(time.RFC3339), formatPush(s.LastPushTime))
		} else {
			table.AddRow(label)
		}
	}
	ec.Print.Table(table)
	return nil
}

func envGet(ec *execution.Context, project *Project) error {
	in := ec.Input()
	name, ok := in.Option("name")
	if !ok || name == "" {
		return fmt.Errorf("plexus env get requires --name <env-name>")
	}
	envs, err := project.Environments()
	if err != nil {
		return err
	}
	env, exists := envs[name]
	if !exists {
		return fmt.Errorf("environment %q does not exist", name)
	}
	current, err := project.CurrentEnv()
	if err != nil {
		return err
	}

	s := summarise(name, current, env)
	if in.Flag("json") {
		return writeIndented(ec, s)
	}

	table := console.NewTable("Property", "Value")
	table.AddRow("Name", s.Name)
	table.AddRow("Current", fmt.Sprint(s.Current))
	table.AddRow("Providers", fmt.Sprint(s.Providers))
	table.AddRow("Created", s.CreatedAt.Format(time.RFC3339))
	table.AddRow("Last push", formatPush(s.LastPushTime))
	ec.Print.Table(table)
	return nil
}

func envCheckout(ec *execution.Context, project *Project) error {
	name, err := envName(ec, "Enter the environment to check out")
	if err != nil {
		return err
	}
	envs, err := project.Environments()
	if err != nil {
		return err
	}
	if _, exists := envs[name]; !exists {
		return fmt.Errorf("environment %q does not exist", name)
	}
	if err := project.SetCurrentEnv(name); err != nil {
		return err
	}
	ec.Print.Success("Switched to environment %s.", name)
	return nil
}

func envRemove(ec *execution.Context, project *Project) error {
	in := ec.Input()
	name, err := envName(ec, "Enter the environment to remove")
	if err != nil {
		return err
	}
	envs, err := project.Environments()
	if err != nil {
		return err
	}
	if _, exists := envs[name]; !exists {
		return fmt.Errorf("environment %q does not exist", name)
	}
	current, err := project.CurrentEnv()
	if err != nil {
		return err
	}
	if name == current {
		return fmt.Errorf("cannot remove the current environment %q, check out another one first", name)
	}

	if !in.Flag("yes") {
		sure, err := ec.Prompt.Confirm(fmt.Sprintf("Are you sure you want to remove the environment %s?", name), false)
		if err != nil {
			return err
		}
		if !sure {
			ec.Print.Info("Environment %s was not removed.", name)
			return nil
		}
	}

	delete(envs, name)
	if err := project.SaveEnvironments(envs); err != nil {
		return err
	}
	ec.Print.Success("Environment %s removed.", name)
	return nil
}

func formatPush(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.RFC3339)
}

func writeIndented(ec *execution.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ec.Print.Line("%s", data)
	return nil
}
