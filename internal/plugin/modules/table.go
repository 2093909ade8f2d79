// Package modules binds registry entries to executable plugin modules.
// Built-in plugins come from registered factories; external plugins are reached
// through an executor speaking the protocol named in their manifest.
package modules

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/plexus/internal/execution"
	"github.com/jmylchreest/plexus/internal/platform"
	"github.com/jmylchreest/plexus/internal/plugin/executor"
	"github.com/jmylchreest/plexus/internal/plugin/protocol"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

// Factory creates the module of a built-in plugin.
type Factory func() execution.Module

type binding struct {
	module execution.Module
	err    error
}

// Table maps each plugin installation to its module. Entries are bound once and
// reused until the table is reset.
type Table struct {
	mu        sync.Mutex
	factories map[string]Factory
	bound     map[string]binding
	executors []*executor.PluginExecutor

	logger       hclog.Logger
	stdout       io.Writer
	stderr       io.Writer
	executorOpts []executor.Option
	binds        int
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger external plugin clients log through.
func WithLogger(logger hclog.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithOutput sets where external plugin output is streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(t *Table) {
		t.stdout = stdout
		t.stderr = stderr
	}
}

// WithExecutorOptions appends options for every external plugin executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(t *Table) {
		t.executorOpts = append(t.executorOpts, opts...)
	}
}

// NewTable creates an empty table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		factories: map[string]Factory{},
		bound:     map[string]binding{},
		logger:    hclog.NewNullLogger(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register adds the factory for the built-in plugin name.
func (t *Table) Register(name string, factory Factory) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.factories[name] = factory
}

// Bind binds every plugin in p. Failures are kept and reported when the module is requested.
func (t *Table) Bind(p *platform.Platform) {
	for _, info := range p.Plugins {
		_, _ = t.Module(info)
	}
}

// Module implements execution.ModuleSource.
func (t *Table) Module(info platform.PluginInfo) (execution.Module, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := bindingKey(info)
	b, ok := t.bound[key]
	if !ok {
		b = t.bind(info)
		t.bound[key] = b
	}
	return b.module, b.err
}

func (t *Table) bind(info platform.PluginInfo) binding {
	t.binds++

	if info.Manifest.Type == plugin.TypeCore {
		factory, ok := t.factories[info.PackageName]
		if !ok {
			return binding{err: fmt.Errorf("no built-in module registered for %s", info.PackageName)}
		}
		return binding{module: factory()}
	}

	proto, err := protocol.Detect(info.Manifest)
	if err != nil {
		return binding{err: err}
	}

	opts := append([]executor.Option{
		executor.WithLogger(t.logger.Named("plugin." + info.PackageName)),
		executor.WithOutput(t.stdout, t.stderr),
	}, t.executorOpts...)

	exec, err := executor.New(platform.ExecutablePath(info.PackageLocation, info.Manifest), proto, opts...)
	if err != nil {
		return binding{err: err}
	}
	t.executors = append(t.executors, exec)
	return binding{module: &External{executor: exec}}
}

// Reset drops every binding and stops running plugin processes.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
	t.bound = map[string]binding{}
}

// Close stops every plugin process started through the table.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
}

func (t *Table) closeLocked() {
	for _, exec := range t.executors {
		exec.Close()
	}
	t.executors = nil
}

// Rebinding wraps r so the table is reset and rebound after every rescan.
func (t *Table) Rebinding(r execution.Rescanner) execution.Rescanner {
	return rebinder{table: t, next: r}
}

type rebinder struct {
	table *Table
	next  execution.Rescanner
}

func (r rebinder) Rescan(ctx context.Context, p *platform.Platform) error {
	err := r.next.Rescan(ctx, p)
	r.table.Reset()
	if err != nil {
		return err
	}
	r.table.Bind(p)
	return nil
}

func bindingKey(info platform.PluginInfo) string {
	if info.Manifest.Type == plugin.TypeCore {
		return "builtin:" + info.PackageName
	}
	return info.PackageLocation
}

// External runs an out-of-process plugin.
type External struct {
	executor *executor.PluginExecutor
}

// ExecuteCommand implements execution.Module.
func (m *External) ExecuteCommand(ctx context.Context, ec *execution.Context) error {
	return m.executor.ExecuteCommand(ctx, plugin.CommandRequest{
		Input:       ec.Input(),
		ProjectPath: ec.ProjectPath,
		Verbose:     ec.Verbose,
	})
}

// HandleEvent implements execution.Module.
func (m *External) HandleEvent(ctx context.Context, ec *execution.Context, args plugin.EventArgs) error {
	req, err := plugin.NewEventRequest(args, ec.Input(), ec.ProjectPath)
	if err != nil {
		return err
	}
	return m.executor.HandleEvent(ctx, req)
}
