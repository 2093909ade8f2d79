package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/plexus/internal/console"
	"github.com/jmylchreest/plexus/internal/core"
	"github.com/jmylchreest/plexus/internal/execution"
	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/internal/plugin/modules"
	"github.com/jmylchreest/plexus/internal/prompt"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

// App runs a single plexus invocation.
type App struct {
	Config      platform.Config
	Stdout      io.Writer
	Stderr      io.Writer
	ProjectPath string

	// CoreLocation is recorded as the install location of the core plugin.
	CoreLocation string

	// Prompter overrides the prompter chosen from --yes and the terminal.
	Prompter prompt.Prompter

	// ModuleOptions are applied to the module table, mainly for tests.
	ModuleOptions []modules.Option

	// SkipInstanceCheck disables the concurrent process warning.
	SkipInstanceCheck bool
}

// NewApp creates an App from the environment of the current process.
func NewApp(stdout, stderr io.Writer) (*App, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	location := cwd
	if exe, err := os.Executable(); err == nil {
		location = filepath.Dir(exe)
	}
	return &App{
		Config:       platform.NewBuilder().WithEnvConfig().Build(),
		Stdout:       stdout,
		Stderr:       stderr,
		ProjectPath:  cwd,
		CoreLocation: location,
	}, nil
}

// Run parses args and executes the resolved plugin command.
func (a *App) Run(ctx context.Context, args []string) error {
	globals, rest, err := splitGlobals(args)
	if err != nil {
		return err
	}

	logger := newLogger(a.Stderr, globals)
	printer := console.New(a.Stdout, a.Stderr)
	printer.SetQuiet(globals.Quiet)

	if !a.SkipInstanceCheck {
		a.warnOtherInstances(printer, logger)
	}

	scanner := platform.NewScanner(a.Config,
		platform.WithBuiltins(core.Info(a.CoreLocation)),
		platform.WithScanLogger(logger.Named("scan")),
	)
	store := platform.NewStore(a.Config, scanner, logger.Named("store"))
	p, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load plugin platform: %w", err)
	}

	opts := append([]modules.Option{
		modules.WithLogger(logger),
		modules.WithOutput(a.Stdout, a.Stderr),
	}, a.ModuleOptions...)
	table := modules.NewTable(opts...)
	defer table.Close()

	rescanner := table.Rebinding(store)
	table.Register(plugin.CoreName, func() execution.Module {
		return core.New(core.Options{Rescanner: rescanner, Registry: store})
	})
	table.Bind(p)

	in := parseInput(rest, func(name string) bool {
		return len(platform.PluginsWithName(p, name)) > 0
	})
	globals.apply(&in)

	ec := execution.NewContext(p, in)
	ec.Print = printer
	ec.Prompt = a.prompter(globals)
	ec.Logger = logger.With("run", uuid.NewString())
	ec.ProjectPath = a.ProjectPath
	ec.Verbose = globals.Verbose
	ec.Logger.Debug("executing", "plugin", in.Plugin, "command", in.Command, "subcommands", in.SubCommands)

	exec := execution.New(table, rescanner,
		execution.WithHandlerErrorHook(func(info platform.PluginInfo, event plugin.Event, err error) {
			ec.Logger.Debug("event handler failed", "plugin", info.Label(), "event", event, "error", err)
		}),
	)
	return exec.ExecuteCommand(ctx, ec)
}

func (a *App) prompter(g Globals) prompt.Prompter {
	if a.Prompter != nil {
		return a.Prompter
	}
	return prompt.New(g.Yes)
}

func (a *App) warnOtherInstances(printer *console.Printer, logger hclog.Logger) {
	pids, err := otherInstances()
	if err != nil {
		logger.Debug("instance check failed", "error", err)
		return
	}
	if len(pids) > 0 {
		printer.Warning("Another plexus process is running (pid %v). The plugin registry may be updated concurrently.", pids)
	}
}

func newLogger(out io.Writer, g Globals) hclog.Logger {
	level := hclog.Warn
	switch {
	case g.Quiet:
		level = hclog.Off
	case g.Verbose:
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "plexus",
		Level:  level,
		Output: out,
	})
}
