package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

// Store keeps the platform cached on disk between runs.
type Store struct {
	config  Config
	scanner *Scanner
	logger  hclog.Logger
}

// NewStore creates a store that rescans with scanner when the cache is unusable.
func NewStore(config Config, scanner *Scanner, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{config: config, scanner: scanner, logger: logger}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.config.CachePath()
}

// Load reads the cached platform, rescanning when the cache is missing, unreadable,
// expired, or was written for different plugin directories.
func (s *Store) Load(ctx context.Context) (*Platform, error) {
	cached, err := s.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("discarding plugin cache", "path", s.Path(), "error", err)
		}
		return s.scanAndSave(ctx, nil)
	}

	if cached.Expired(s.scanner.now()) || !s.matchesConfig(cached) {
		s.logger.Debug("plugin cache is stale, rescanning", "lastScan", cached.LastScanTime)
		return s.scanAndSave(ctx, cached.UserAddedLocations)
	}

	s.refreshBuiltins(cached)
	return cached, nil
}

// Rescan rebuilds p in place from the filesystem and saves it.
// Callers holding p observe the new contents.
func (s *Store) Rescan(ctx context.Context, p *Platform) error {
	fresh, err := s.scanAndSave(ctx, p.UserAddedLocations)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

// AddLocation records a plugin directory outside the configured plugin directories
// and rescans p.
func (s *Store) AddLocation(ctx context.Context, p *Platform, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if _, err := ReadManifest(abs); err != nil {
		return err
	}
	if !slices.Contains(p.UserAddedLocations, abs) {
		p.UserAddedLocations = append(p.UserAddedLocations, abs)
	}
	return s.Rescan(ctx, p)
}

// RemoveLocation forgets a user-added plugin directory and rescans p.
func (s *Store) RemoveLocation(ctx context.Context, p *Platform, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	i := slices.Index(p.UserAddedLocations, abs)
	if i < 0 {
		return fmt.Errorf("%s is not a user-added plugin location", dir)
	}
	p.UserAddedLocations = slices.Delete(p.UserAddedLocations, i, i+1)
	return s.Rescan(ctx, p)
}

// Save writes p to the cache file.
func (s *Store) Save(p *Platform) error {
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		return fmt.Errorf("failed to create plexus home: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plugin cache: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write plugin cache: %w", err)
	}
	return nil
}

func (s *Store) read() (*Platform, error) {
	data, err := os.ReadFile(s.Path()) // #nosec G304 -- cache path controlled by application
	if err != nil {
		return nil, err
	}

	var p Platform
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plugin cache: %w", err)
	}
	return &p, nil
}

func (s *Store) scanAndSave(ctx context.Context, userAdded []string) (*Platform, error) {
	p, err := s.scanner.Scan(ctx, userAdded)
	if err != nil {
		return nil, fmt.Errorf("plugin scan failed: %w", err)
	}
	if err := s.Save(p); err != nil {
		// The scan is still usable for this run.
		s.logger.Warn("failed to save plugin cache", "error", err)
	}
	return p, nil
}

func (s *Store) matchesConfig(p *Platform) bool {
	return slices.Equal(p.PluginDirectories, s.config.PluginDirectories) &&
		slices.Equal(p.PluginPrefixes, s.config.PluginPrefixes) &&
		p.MaxScanIntervalInSeconds == s.config.MaxScanIntervalInSeconds
}

// refreshBuiltins replaces cached built-in entries with the ones of this binary.
func (s *Store) refreshBuiltins(p *Platform) {
	external := slices.DeleteFunc(p.Plugins, func(info PluginInfo) bool {
		return info.Manifest.Type == plugin.TypeCore
	})
	p.Plugins = append(slices.Clone(s.scanner.builtins), external...)
}
