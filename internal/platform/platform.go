// Package platform holds the plugin registry: every discovered plugin with its
// manifest, the plugins excluded during the last scan, and the scan settings.
package platform

import (
	"slices"
	"time"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

// PluginInfo describes one discovered plugin installation.
type PluginInfo struct {
	PackageName     string          `json:"packageName"`
	PackageVersion  string          `json:"packageVersion"`
	PackageLocation string          `json:"packageLocation"`
	Manifest        plugin.Manifest `json:"manifest"`
}

// Label is the display form used in prompts and tables.
func (p PluginInfo) Label() string {
	return p.PackageName + "@" + p.PackageVersion
}

// ExcludedPlugin is a plugin directory that failed validation during a scan.
type ExcludedPlugin struct {
	PackageName     string `json:"packageName,omitempty"`
	PackageLocation string `json:"packageLocation"`
	Reason          string `json:"reason"`
}

// Platform is the in-memory plugin registry.
// Plugins keeps scan order, which is the order every query returns.
type Platform struct {
	PluginDirectories        []string         `json:"pluginDirectories"`
	PluginPrefixes           []string         `json:"pluginPrefixes"`
	UserAddedLocations       []string         `json:"userAddedLocations"`
	LastScanTime             time.Time        `json:"lastScanTime"`
	MaxScanIntervalInSeconds int              `json:"maxScanIntervalInSeconds"`
	Plugins                  []PluginInfo     `json:"plugins"`
	Excluded                 []ExcludedPlugin `json:"excluded"`
}

// Expired reports whether the last scan is older than the configured interval.
func (p *Platform) Expired(now time.Time) bool {
	if p.LastScanTime.IsZero() {
		return true
	}
	interval := time.Duration(p.MaxScanIntervalInSeconds) * time.Second
	return now.Sub(p.LastScanTime) > interval
}

// Names returns the distinct plugin names in first-seen order.
func (p *Platform) Names() []string {
	var names []string
	for _, info := range p.Plugins {
		if !slices.Contains(names, info.PackageName) {
			names = append(names, info.PackageName)
		}
	}
	return names
}

// PluginsWithName returns every installation of name.
func PluginsWithName(p *Platform, name string) []PluginInfo {
	return filter(p, func(info PluginInfo) bool {
		return info.PackageName == name
	})
}

// PluginsWithNameAndCommand returns the candidates able to run command for pluginName.
// A plugin matches when its name is equal and its manifest lists command either as a
// command or as an alias.
func PluginsWithNameAndCommand(p *Platform, pluginName, command string) []PluginInfo {
	return filter(p, func(info PluginInfo) bool {
		return info.PackageName == pluginName && info.Manifest.Handles(command)
	})
}

// PluginsWithEventHandler returns the plugins subscribed to event.
func PluginsWithEventHandler(p *Platform, event plugin.Event) []PluginInfo {
	return filter(p, func(info PluginInfo) bool {
		return info.Manifest.SubscribesTo(event)
	})
}

// PluginsWithType returns the plugins that declare typ.
func PluginsWithType(p *Platform, typ plugin.Type) []PluginInfo {
	return filter(p, func(info PluginInfo) bool {
		return info.Manifest.Type == typ
	})
}

func filter(p *Platform, keep func(PluginInfo) bool) []PluginInfo {
	if p == nil {
		return nil
	}
	var out []PluginInfo
	for _, info := range p.Plugins {
		if keep(info) {
			out = append(out, info)
		}
	}
	return out
}
