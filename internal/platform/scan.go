package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const versionUnknown = "0.0.0"

// Scanner rebuilds the registry from the filesystem.
type Scanner struct {
	config   Config
	builtins []PluginInfo
	logger   hclog.Logger
	now      func() time.Time
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithBuiltins registers plugins compiled into the binary.
// They are listed before anything found on disk, in the order given.
func WithBuiltins(builtins ...PluginInfo) ScannerOption {
	return func(s *Scanner) {
		s.builtins = append(s.builtins, builtins...)
	}
}

// WithScanLogger sets the logger used to report excluded plugins.
func WithScanLogger(logger hclog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithClock overrides the scan timestamp source.
func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) {
		s.now = now
	}
}

// NewScanner creates a scanner for config.
func NewScanner(config Config, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		config: config,
		logger: hclog.NewNullLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks every plugin directory and user-added location and returns a fresh platform.
// Directories whose manifest fails validation are listed in Excluded, never in Plugins.
func (s *Scanner) Scan(ctx context.Context, userAdded []string) (*Platform, error) {
	p := &Platform{
		PluginDirectories:        slices.Clone(s.config.PluginDirectories),
		PluginPrefixes:           slices.Clone(s.config.PluginPrefixes),
		UserAddedLocations:       slices.Clone(userAdded),
		MaxScanIntervalInSeconds: s.config.MaxScanIntervalInSeconds,
		Plugins:                  slices.Clone(s.builtins),
	}

	locations, err := s.locations(userAdded)
	if err != nil {
		return nil, err
	}

	for _, location := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		manifest, err := ReadManifest(location)
		if err == nil {
			err = ValidateManifest(location, manifest)
		}
		if err != nil {
			s.logger.Debug("plugin excluded", "location", location, "error", err)
			p.Excluded = append(p.Excluded, ExcludedPlugin{
				PackageName:     manifest.Name,
				PackageLocation: location,
				Reason:          reason(err),
			})
			continue
		}

		for _, alias := range DanglingAliases(manifest) {
			s.logger.Warn("alias maps to an unknown command", "plugin", manifest.Name,
				"alias", alias, "command", manifest.CommandAliases[alias])
		}

		version := manifest.Version
		if version == "" {
			version = versionUnknown
		}
		p.Plugins = append(p.Plugins, PluginInfo{
			PackageName:     manifest.Name,
			PackageVersion:  version,
			PackageLocation: location,
			Manifest:        manifest,
		})
	}

	p.LastScanTime = s.now()
	return p, nil
}

// locations lists candidate plugin directories in scan order without duplicates.
func (s *Scanner) locations(userAdded []string) ([]string, error) {
	var out []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !slices.Contains(out, path) {
			out = append(out, path)
		}
	}

	for _, dir := range s.config.PluginDirectories {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, &ManifestError{Location: dir, Reason: "cannot read plugin directory", Err: err}
		}
		// ReadDir returns entries sorted by name.
		for _, entry := range entries {
			if !s.hasPrefix(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				continue
			}
			add(path)
		}
	}

	for _, location := range userAdded {
		add(location)
	}
	return out, nil
}

func (s *Scanner) hasPrefix(name string) bool {
	for _, prefix := range s.config.PluginPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func reason(err error) string {
	var merr *ManifestError
	if errors.As(err, &merr) {
		if merr.Err != nil {
			return merr.Reason + ": " + merr.Err.Error()
		}
		return merr.Reason
	}
	return err.Error()
}
