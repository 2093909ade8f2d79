package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

// ErrNoCandidates is wrapped by ResolutionError.
var ErrNoCandidates = errors.New("no plugin can handle this command")

// ResolutionError reports a (plugin, command) pair that nothing in the registry handles.
type ResolutionError struct {
	Plugin  string
	Command string
}

func (e *ResolutionError) Error() string {
	if e.Plugin == plugin.CoreName {
		return fmt.Sprintf("unknown command %q", e.Command)
	}
	return fmt.Sprintf("plugin %q has no command %q", e.Plugin, e.Command)
}

func (e *ResolutionError) Unwrap() error {
	return ErrNoCandidates
}

// Module is the executable side of a registered plugin.
type Module interface {
	ExecuteCommand(ctx context.Context, ec *Context) error
	HandleEvent(ctx context.Context, ec *Context, args plugin.EventArgs) error
}

// ModuleSource returns the module bound to a registry entry.
type ModuleSource interface {
	Module(info platform.PluginInfo) (Module, error)
}

// Rescanner rebuilds the registry in place.
type Rescanner interface {
	Rescan(ctx context.Context, p *platform.Platform) error
}

// Selector picks one plugin among several candidates.
type Selector interface {
	Select(ctx context.Context, ec *Context, candidates []platform.PluginInfo) (platform.PluginInfo, error)
}

// SelectMessage is the question asked when several plugins can run a command.
const SelectMessage = "Select the module to execute"

// PromptSelector asks the user through the context's prompter.
type PromptSelector struct{}

// Select implements Selector.
func (PromptSelector) Select(_ context.Context, ec *Context, candidates []platform.PluginInfo) (platform.PluginInfo, error) {
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Label()
	}

	i, err := ec.Prompt.Select(SelectMessage, labels)
	if err != nil {
		return platform.PluginInfo{}, err
	}
	if i < 0 || i >= len(candidates) {
		return platform.PluginInfo{}, fmt.Errorf("selection %d out of range", i)
	}
	return candidates[i], nil
}
