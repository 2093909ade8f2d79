package execution

import (
	"context"
	"fmt"
	"os"

	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

// Stale registry recovery messages.
const (
	msgStaleDetected = "The plexus plugin platform detected an error."
	msgStaleRescan   = "It has performed a fresh scan."
	msgStaleRetry    = "Please execute your command again."
)

// HandlerErrorHook observes an event handler failure. It cannot stop the broadcast.
type HandlerErrorHook func(info platform.PluginInfo, event plugin.Event, err error)

// Executor runs commands and broadcasts lifecycle events.
type Executor struct {
	modules   ModuleSource
	rescanner Rescanner
	selector  Selector
	onError   HandlerErrorHook
}

// Option configures an Executor.
type Option func(*Executor)

// WithSelector replaces the interactive candidate selection.
func WithSelector(s Selector) Option {
	return func(e *Executor) {
		e.selector = s
	}
}

// WithHandlerErrorHook reports event handler failures, which are otherwise discarded.
func WithHandlerErrorHook(hook HandlerErrorHook) Option {
	return func(e *Executor) {
		e.onError = hook
	}
}

// New creates an Executor.
func New(modules ModuleSource, rescanner Rescanner, opts ...Option) *Executor {
	e := &Executor{
		modules:   modules,
		rescanner: rescanner,
		selector:  PromptSelector{},
		onError:   func(platform.PluginInfo, plugin.Event, error) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteCommand resolves the plugin for the context's input and runs its command.
//
// When more than one plugin matches, the selector decides. An alias is rewritten to
// its canonical command on the context. If the chosen plugin is no longer installed
// the registry is rescanned, the user is asked to retry, and nothing runs.
// Core init and push are wrapped in Pre and Post events; the Post event is only
// raised when the command succeeds. Command errors are returned to the caller.
func (e *Executor) ExecuteCommand(ctx context.Context, ec *Context) error {
	in := ec.Input()

	selected, err := e.resolve(ctx, ec, in)
	if err != nil {
		return err
	}

	if !selected.Manifest.SupportsCommand(in.Command) {
		ec.SetCommand(selected.Manifest.CanonicalCommand(in.Command))
	}

	if !exists(selected.PackageLocation) {
		ec.Logger.Debug("resolved plugin is missing", "plugin", selected.Label(), "location", selected.PackageLocation)
		err := e.rescanner.Rescan(ctx, ec.Platform)
		ec.Print.Error(msgStaleDetected)
		if err != nil {
			return fmt.Errorf("plugin rescan failed: %w", err)
		}
		ec.Print.Info(msgStaleRescan)
		ec.Print.Info(msgStaleRetry)
		return nil
	}

	module, err := e.modules.Module(selected)
	if err != nil {
		return fmt.Errorf("failed to load plugin %s: %w", selected.Label(), err)
	}

	command := ec.Input().Command
	pre, post, instrumented := lifecycle(in.Plugin, command)

	if instrumented {
		e.RaiseEvent(ctx, ec, pre)
	}

	ec.Logger.Debug("executing command", "plugin", selected.Label(), "command", command)
	if err := module.ExecuteCommand(ctx, ec); err != nil {
		return fmt.Errorf("%s %s: %w", selected.PackageName, command, err)
	}

	if instrumented {
		e.RaiseEvent(ctx, ec, post)
	}
	return nil
}

func (e *Executor) resolve(ctx context.Context, ec *Context, in plugin.Input) (platform.PluginInfo, error) {
	candidates := platform.PluginsWithNameAndCommand(ec.Platform, in.Plugin, in.Command)

	switch len(candidates) {
	case 0:
		return platform.PluginInfo{}, &ResolutionError{Plugin: in.Plugin, Command: in.Command}
	case 1:
		return candidates[0], nil
	}

	selected, err := e.selector.Select(ctx, ec, candidates)
	if err != nil {
		return platform.PluginInfo{}, fmt.Errorf("plugin selection failed: %w", err)
	}
	return selected, nil
}

// RaiseEvent calls the handler of every live plugin subscribed to args' event,
// one after another in registry order. Handler errors and panics are passed to the
// error hook and never stop the broadcast.
func (e *Executor) RaiseEvent(ctx context.Context, ec *Context, args plugin.EventArgs) {
	for _, info := range platform.PluginsWithEventHandler(ec.Platform, args.Event()) {
		if !exists(info.PackageLocation) {
			continue
		}
		if err := e.handle(ctx, ec, info, args); err != nil {
			e.onError(info, args.Event(), err)
		}
	}
}

func (e *Executor) handle(ctx context.Context, ec *Context, info platform.PluginInfo, args plugin.EventArgs) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()

	module, err := e.modules.Module(info)
	if err != nil {
		return err
	}
	return module.HandleEvent(ctx, ec, args)
}

// lifecycleEvents maps the instrumented core commands to their Pre and Post events.
var lifecycleEvents = map[string][2]plugin.Event{
	"init": {plugin.EventPreInit, plugin.EventPostInit},
	"push": {plugin.EventPrePush, plugin.EventPostPush},
}

// lifecycle returns the events surrounding a core command, if it has any.
func lifecycle(pluginName, command string) (pre, post plugin.EventArgs, ok bool) {
	events, ok := lifecycleEvents[command]
	if pluginName != plugin.CoreName || !ok {
		return pre, post, false
	}
	return eventArgs(events[0]), eventArgs(events[1]), true
}

func eventArgs(event plugin.Event) plugin.EventArgs {
	data, err := plugin.DataFor(event)
	if err != nil {
		panic(err)
	}
	args, err := plugin.NewEventArgs(event, data)
	if err != nil {
		panic(err)
	}
	return args
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
