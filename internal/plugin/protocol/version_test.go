package protocol

import (
	"strings"
	"testing"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

func TestParse(t *testing.T) {
	tests := []struct {
		version     string
		expectError bool
		want        Version
	}{
		{"0.0.1", false, Version{0, 0, 1}},
		{"1.0.0", false, Version{1, 0, 0}},
		{"10.99.42", false, Version{10, 99, 42}},
		{"invalid", true, Version{}},
		{"1", true, Version{}},
		{"1.2", true, Version{}},
		{"1.-2.0", true, Version{}},
	}

	for _, tt := range tests {
		v, err := Parse(tt.version)
		if tt.expectError {
			if err == nil {
				t.Errorf("Parse(%q) expected error but got none", tt.version)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.version, err)
		}
		if v != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.version, v, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	a := Version{1, 2, 3}
	if a.Compare(Version{1, 2, 3}) != 0 {
		t.Error("equal versions should compare 0")
	}
	if a.Compare(Version{1, 3, 0}) >= 0 {
		t.Error("1.2.3 should sort before 1.3.0")
	}
	if a.Compare(Version{0, 9, 9}) <= 0 {
		t.Error("1.2.3 should sort after 0.9.9")
	}
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		pluginVersion string
		compatible    bool
		errorContains string
	}{
		{plugin.ProtocolVersion, true, ""},
		{"1.4.0", true, ""},
		{"1.0.7", true, ""},
		{"0.9.0", false, "incompatible major version"},
		{"2.0.0", false, "incompatible major version"},
		{"garbage", false, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.pluginVersion, func(t *testing.T) {
			ok, err := IsCompatible(tt.pluginVersion)
			if ok != tt.compatible {
				t.Errorf("IsCompatible(%q) = %v, want %v (err: %v)", tt.pluginVersion, ok, tt.compatible, err)
			}
			if tt.errorContains != "" && (err == nil || !strings.Contains(err.Error(), tt.errorContains)) {
				t.Errorf("IsCompatible(%q) error = %v, want containing %q", tt.pluginVersion, err, tt.errorContains)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		protocol plugin.Protocol
		want     plugin.Protocol
		wantErr  bool
	}{
		{"", plugin.ProtocolJSON, false},
		{plugin.ProtocolJSON, plugin.ProtocolJSON, false},
		{plugin.ProtocolGoPlugin, plugin.ProtocolGoPlugin, false},
		{"grpc", "", true},
	}

	for _, tt := range tests {
		got, err := Detect(plugin.Manifest{PluginProtocol: tt.protocol})
		if (err != nil) != tt.wantErr {
			t.Errorf("Detect(%q) error = %v, wantErr %v", tt.protocol, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.protocol, got, tt.want)
		}
	}
}
