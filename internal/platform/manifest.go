package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/plexus/internal/plugin/protocol"
	"github.com/jmylchreest/plexus/internal/security"
	"github.com/jmylchreest/plexus/pkg/plugin"
)

// ErrNoManifest is returned when a plugin directory has no manifest file.
var ErrNoManifest = errors.New("no plugin manifest found")

// ManifestError explains why a plugin directory was excluded from the registry.
type ManifestError struct {
	Location string
	Reason   string
	Err      error
}

func (e *ManifestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Location, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Reason)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ReadManifest loads the manifest in dir. The JSON manifest wins when both exist.
func ReadManifest(dir string) (plugin.Manifest, error) {
	var manifest plugin.Manifest

	jsonPath := filepath.Join(dir, plugin.ManifestFileName)
	data, err := os.ReadFile(jsonPath) // #nosec G304 -- scanning configured plugin directories
	if err == nil {
		if err := json.Unmarshal(data, &manifest); err != nil {
			return manifest, &ManifestError{Location: dir, Reason: "invalid " + plugin.ManifestFileName, Err: err}
		}
		return manifest, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return manifest, &ManifestError{Location: dir, Reason: "unreadable manifest", Err: err}
	}

	yamlPath := filepath.Join(dir, plugin.ManifestFileNameYAML)
	data, err = os.ReadFile(yamlPath) // #nosec G304 -- scanning configured plugin directories
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return manifest, &ManifestError{Location: dir, Reason: "missing manifest", Err: ErrNoManifest}
		}
		return manifest, &ManifestError{Location: dir, Reason: "unreadable manifest", Err: err}
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return manifest, &ManifestError{Location: dir, Reason: "invalid " + plugin.ManifestFileNameYAML, Err: err}
	}
	return manifest, nil
}

// ValidateManifest checks a third-party manifest found in dir.
func ValidateManifest(dir string, m plugin.Manifest) error {
	fail := func(format string, args ...any) error {
		return &ManifestError{Location: dir, Reason: fmt.Sprintf(format, args...)}
	}

	if m.Name == "" {
		return fail("manifest has no name")
	}
	if m.Name == plugin.CoreName || m.Type == plugin.TypeCore {
		return fail("the %q plugin is reserved", plugin.CoreName)
	}
	if !m.Type.Valid() {
		return fail("unknown plugin type %q", m.Type)
	}
	if len(m.Commands) == 0 && len(m.EventHandlers) == 0 {
		return fail("plugin declares no commands and no event handlers")
	}
	for _, event := range m.EventHandlers {
		if !event.Valid() {
			return fail("unknown event %q", event)
		}
	}

	if _, err := protocol.Detect(m); err != nil {
		return &ManifestError{Location: dir, Reason: "unsupported protocol", Err: err}
	}
	if m.ProtocolVersion != "" {
		if _, err := protocol.IsCompatible(m.ProtocolVersion); err != nil {
			return &ManifestError{Location: dir, Reason: "incompatible protocol version", Err: err}
		}
	}

	if m.Executable == "" {
		return fail("manifest has no executable")
	}
	if !filepath.IsAbs(m.Executable) {
		if err := security.ValidatePluginPath(ExecutablePath(dir, m), dir); err != nil {
			return &ManifestError{Location: dir, Reason: "executable outside the plugin directory", Err: err}
		}
	}
	info, err := os.Stat(ExecutablePath(dir, m))
	if err != nil {
		return &ManifestError{Location: dir, Reason: "executable not found", Err: err}
	}
	if info.IsDir() {
		return fail("executable %s is a directory", m.Executable)
	}
	return nil
}

// ExecutablePath resolves the manifest executable against the plugin directory.
func ExecutablePath(dir string, m plugin.Manifest) string {
	if filepath.IsAbs(m.Executable) {
		return m.Executable
	}
	return filepath.Join(dir, m.Executable)
}

// DanglingAliases returns the aliases whose target is not a listed command, sorted.
// They do not exclude a plugin.
func DanglingAliases(m plugin.Manifest) []string {
	var dangling []string
	for alias, canonical := range m.CommandAliases {
		if !m.SupportsCommand(canonical) {
			dangling = append(dangling, alias)
		}
	}
	slices.Sort(dangling)
	return dangling
}
