package protocol

import (
	"fmt"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

// Detect returns the protocol an external plugin speaks, from its manifest.
// An empty pluginProtocol defaults to json-stdio.
func Detect(m plugin.Manifest) (plugin.Protocol, error) {
	switch m.PluginProtocol {
	case plugin.ProtocolGoPlugin:
		return plugin.ProtocolGoPlugin, nil
	case plugin.ProtocolJSON, "":
		return plugin.ProtocolJSON, nil
	default:
		return "", fmt.Errorf("unknown pluginProtocol: %s", m.PluginProtocol)
	}
}
