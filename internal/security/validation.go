// Package security provides path validation for plugin manifests.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePluginPath validates a plugin path to prevent directory traversal.
// Ensures the path stays within the plugin directory baseDir.
func ValidatePluginPath(pluginPath, baseDir string) error {
	if pluginPath == "" {
		return fmt.Errorf("empty plugin path")
	}

	absPluginPath, err := filepath.Abs(filepath.Clean(pluginPath))
	if err != nil {
		return fmt.Errorf("invalid plugin path: %w", err)
	}
	absBaseDir, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("invalid base directory: %w", err)
	}

	if !strings.HasPrefix(absPluginPath, absBaseDir+string(filepath.Separator)) &&
		absPluginPath != absBaseDir {
		return fmt.Errorf("plugin path must be within plugin directory (attempted path traversal)")
	}
	return nil
}
