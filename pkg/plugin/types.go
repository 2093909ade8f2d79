// Package plugin provides the public API for plexus plugins.
// External plugins should import this package instead of internal packages.
package plugin

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Type is the category a plugin declares in its manifest.
type Type string

const (
	// TypeCategory plugins add, remove and configure a set of backend resources.
	TypeCategory Type = "category"

	// TypeProvider plugins set up and update resources with a cloud provider.
	TypeProvider Type = "provider"

	// TypeFrontend plugins handle a frontend project and generate its configuration.
	TypeFrontend Type = "frontend"

	// TypeUtil plugins are general purpose helpers for other plugins.
	TypeUtil Type = "util"

	// TypeCore is reserved for the built-in plugin.
	TypeCore Type = "core"
)

// Types lists the plugin types a third-party manifest may declare.
func Types() []Type {
	return []Type{TypeCategory, TypeProvider, TypeFrontend, TypeUtil}
}

// Valid reports whether t is a known plugin type.
func (t Type) Valid() bool {
	return t == TypeCore || slices.Contains(Types(), t)
}

// Event identifies a lifecycle broadcast.
type Event string

const (
	EventPreInit  Event = "PreInit"
	EventPostInit Event = "PostInit"
	EventPrePush  Event = "PrePush"
	EventPostPush Event = "PostPush"
)

// Events lists every lifecycle event in broadcast order of a command.
func Events() []Event {
	return []Event{EventPreInit, EventPostInit, EventPrePush, EventPostPush}
}

// Valid reports whether e is a known event.
func (e Event) Valid() bool {
	return slices.Contains(Events(), e)
}

// Manifest is the declarative metadata shipped with a plugin.
type Manifest struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Type        Type   `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Commands lists the canonical command names the plugin implements.
	Commands []string `json:"commands" yaml:"commands"`

	// CommandAliases maps alias -> canonical command.
	CommandAliases map[string]string `json:"commandAliases,omitempty" yaml:"commandAliases,omitempty"`

	// EventHandlers lists the lifecycle events the plugin subscribes to.
	EventHandlers []Event `json:"eventHandlers,omitempty" yaml:"eventHandlers,omitempty"`

	// Executable is the plugin binary, relative to the plugin directory.
	Executable string `json:"executable,omitempty" yaml:"executable,omitempty"`

	// PluginProtocol is "go-plugin" or "json-stdio" (default).
	PluginProtocol Protocol `json:"pluginProtocol,omitempty" yaml:"pluginProtocol,omitempty"`

	// ProtocolVersion is the plexus plugin API version the plugin was built against.
	ProtocolVersion string `json:"protocolVersion,omitempty" yaml:"protocolVersion,omitempty"`
}

// SupportsCommand reports whether command is listed literally in Commands.
func (m Manifest) SupportsCommand(command string) bool {
	return slices.Contains(m.Commands, command)
}

// Handles reports whether command is either a canonical command or an alias key.
func (m Manifest) Handles(command string) bool {
	if m.SupportsCommand(command) {
		return true
	}
	_, ok := m.CommandAliases[command]
	return ok
}

// CanonicalCommand returns the canonical name for command.
// Commands listed literally are returned unchanged.
func (m Manifest) CanonicalCommand(command string) string {
	if m.SupportsCommand(command) {
		return command
	}
	return m.CommandAliases[command]
}

// SubscribesTo reports whether the plugin handles event.
func (m Manifest) SubscribesTo(event Event) bool {
	return slices.Contains(m.EventHandlers, event)
}

// EventData is the payload of a lifecycle event.
type EventData interface {
	event() Event
}

// PreInitEventData is raised before the init command runs.
type PreInitEventData struct{}

// PostInitEventData is raised after the init command completes.
type PostInitEventData struct{}

// PrePushEventData is raised before the push command runs.
type PrePushEventData struct{}

// PostPushEventData is raised after the push command completes.
type PostPushEventData struct{}

func (PreInitEventData) event() Event  { return EventPreInit }
func (PostInitEventData) event() Event { return EventPostInit }
func (PrePushEventData) event() Event  { return EventPrePush }
func (PostPushEventData) event() Event { return EventPostPush }

// DataFor returns the payload type that belongs to event.
func DataFor(event Event) (EventData, error) {
	switch event {
	case EventPreInit:
		return PreInitEventData{}, nil
	case EventPostInit:
		return PostInitEventData{}, nil
	case EventPrePush:
		return PrePushEventData{}, nil
	case EventPostPush:
		return PostPushEventData{}, nil
	default:
		return nil, fmt.Errorf("unknown event: %s", event)
	}
}

// EventArgs is an immutable (event, payload) pair.
type EventArgs struct {
	event Event
	data  EventData
}

// NewEventArgs pairs event with its payload.
// It fails when the payload belongs to a different event.
func NewEventArgs(event Event, data EventData) (EventArgs, error) {
	if data == nil {
		return EventArgs{}, fmt.Errorf("event %s: nil payload", event)
	}
	if data.event() != event {
		return EventArgs{}, fmt.Errorf("event %s: payload belongs to %s", event, data.event())
	}
	return EventArgs{event: event, data: data}, nil
}

// Event returns the event identifier.
func (a EventArgs) Event() Event {
	return a.event
}

// Data returns the event payload.
func (a EventArgs) Data() EventData {
	return a.data
}

// Input is the parsed command line handed to a plugin.
type Input struct {
	Plugin      string            `json:"plugin"`
	Command     string            `json:"command"`
	SubCommands []string          `json:"sub_commands,omitempty"`
	Options     map[string]string `json:"options,omitempty"`
	Argv        []string          `json:"argv,omitempty"`
}

// Option returns the value of a --name option.
func (in Input) Option(name string) (string, bool) {
	v, ok := in.Options[name]
	return v, ok
}

// Flag reports whether a boolean --name option is set.
func (in Input) Flag(name string) bool {
	v, ok := in.Options[name]
	return ok && v != "false"
}

// CommandRequest is sent to an external plugin to run a command.
type CommandRequest struct {
	Input       Input  `json:"input"`
	ProjectPath string `json:"project_path,omitempty"`
	Verbose     bool   `json:"verbose"`
}

// EventRequest is sent to an external plugin to handle a lifecycle event.
type EventRequest struct {
	Event       Event           `json:"event"`
	Data        json.RawMessage `json:"data,omitempty"`
	Input       Input           `json:"input"`
	ProjectPath string          `json:"project_path,omitempty"`
}

// NewEventRequest builds the wire form of args.
func NewEventRequest(args EventArgs, input Input, projectPath string) (EventRequest, error) {
	data, err := json.Marshal(args.Data())
	if err != nil {
		return EventRequest{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return EventRequest{
		Event:       args.Event(),
		Data:        data,
		Input:       input,
		ProjectPath: projectPath,
	}, nil
}
