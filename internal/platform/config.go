package platform

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// CacheFileName is the registry cache inside the plexus home directory.
	CacheFileName = "plugins.json"

	defaultPrefix       = "plexus-"
	defaultScanInterval = 24 * 60 * 60
)

// Config holds the scan settings and where the registry is cached.
type Config struct {
	// Home is the plexus state directory (default ~/.plexus).
	Home string

	// PluginDirectories are searched for plugin packages.
	PluginDirectories []string

	// PluginPrefixes restrict which entries of a plugin directory are considered.
	PluginPrefixes []string

	// MaxScanIntervalInSeconds is how long a cached scan stays valid.
	MaxScanIntervalInSeconds int
}

// CachePath returns the registry cache file path.
func (c Config) CachePath() string {
	return filepath.Join(c.Home, CacheFileName)
}

// Builder provides a fluent interface for constructing a Config.
type Builder struct {
	config Config
	useEnv bool
}

// NewBuilder creates a new Config builder with default settings.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithHome sets the plexus home directory.
func (b *Builder) WithHome(home string) *Builder {
	b.config.Home = home
	return b
}

// WithPluginDirectories replaces the searched plugin directories.
func (b *Builder) WithPluginDirectories(dirs ...string) *Builder {
	b.config.PluginDirectories = dirs
	return b
}

// WithPluginPrefixes replaces the plugin name prefixes.
func (b *Builder) WithPluginPrefixes(prefixes ...string) *Builder {
	b.config.PluginPrefixes = prefixes
	return b
}

// WithScanInterval sets how long a cached scan stays valid, in seconds.
func (b *Builder) WithScanInterval(seconds int) *Builder {
	b.config.MaxScanIntervalInSeconds = seconds
	return b
}

// WithEnvConfig loads configuration from environment variables.
// Reads PLEXUS_HOME, PLEXUS_PLUGIN_DIRS, PLEXUS_PLUGIN_PREFIXES and PLEXUS_SCAN_INTERVAL.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// Build constructs the Config. Environment values override explicit settings,
// and defaults fill whatever is still unset.
func (b *Builder) Build() Config {
	config := b.config

	if b.useEnv {
		if home := os.Getenv("PLEXUS_HOME"); home != "" {
			config.Home = home
		}
		if dirs := os.Getenv("PLEXUS_PLUGIN_DIRS"); dirs != "" {
			config.PluginDirectories = splitList(dirs, string(os.PathListSeparator))
		}
		if prefixes := os.Getenv("PLEXUS_PLUGIN_PREFIXES"); prefixes != "" {
			config.PluginPrefixes = splitList(prefixes, ",")
		}
		if interval := os.Getenv("PLEXUS_SCAN_INTERVAL"); interval != "" {
			if seconds, err := strconv.Atoi(interval); err == nil && seconds >= 0 {
				config.MaxScanIntervalInSeconds = seconds
			}
		}
	}

	if config.Home == "" {
		config.Home = defaultHome()
	}
	if len(config.PluginDirectories) == 0 {
		config.PluginDirectories = []string{filepath.Join(config.Home, "plugins")}
	}
	if len(config.PluginPrefixes) == 0 {
		config.PluginPrefixes = []string{defaultPrefix}
	}
	if config.MaxScanIntervalInSeconds == 0 {
		config.MaxScanIntervalInSeconds = defaultScanInterval
	}

	return config
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plexus"
	}
	return filepath.Join(home, ".plexus")
}

// splitList parses a separated list, dropping blanks.
func splitList(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
