// Package plugin provides the public API for plexus plugins.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current plugin API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "1.0.0"

	// MinCompatibleVersion is the oldest protocol version this plexus version can work with.
	MinCompatibleVersion = "1.0.0"

	// CoreName is the reserved name of the built-in plugin.
	CoreName = "core"

	// ManifestFileName is the manifest every plugin directory must contain.
	ManifestFileName = "plexus-plugin.json"

	// ManifestFileNameYAML is accepted when no JSON manifest is present.
	ManifestFileNameYAML = "plexus-plugin.yaml"

	// DispenseKey is the name the command plugin is registered under in go-plugin.
	DispenseKey = "command"
)

// JSON-stdio entry point flags.
const (
	FlagExecuteCommand = "--execute-command"
	FlagHandleEvent    = "--handle-event"
)

// Handshake is the handshake configuration for go-plugin protocol.
// This ensures that plugins using go-plugin can only connect to compatible hosts.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1, // Major version from ProtocolVersion
	MagicCookieKey:   "PLEXUS_PLUGIN",
	MagicCookieValue: "plexus_command_plugin",
}

// Protocol defines how plexus talks to an external plugin executable.
type Protocol string

const (
	// ProtocolGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	ProtocolGoPlugin Protocol = "go-plugin"

	// ProtocolJSON indicates the plugin uses simple JSON over stdin/stdout.
	ProtocolJSON Protocol = "json-stdio"
)
