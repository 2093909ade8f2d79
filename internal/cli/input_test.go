package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

func installed(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want plugin.Input
	}{
		{
			name: "no arguments",
			args: nil,
			want: plugin.Input{Plugin: "core", Command: "help", Options: map[string]string{}},
		},
		{
			name: "core command with options",
			args: []string{"init", "--name", "myapp", "--env=dev"},
			want: plugin.Input{Plugin: "core", Command: "init", Options: map[string]string{"name": "myapp", "env": "dev"}},
		},
		{
			name: "core subcommands and a flag",
			args: []string{"env", "list", "--json"},
			want: plugin.Input{Plugin: "core", Command: "env", SubCommands: []string{"list"}, Options: map[string]string{"json": "true"}},
		},
		{
			name: "alias in command position",
			args: []string{"-v"},
			want: plugin.Input{Plugin: "core", Command: "-v", Options: map[string]string{}},
		},
		{
			name: "plugin command",
			args: []string{"awscloud", "configure", "project", "-f"},
			want: plugin.Input{Plugin: "awscloud", Command: "configure", SubCommands: []string{"project"}, Options: map[string]string{"f": "true"}},
		},
		{
			name: "plugin alias in command position",
			args: []string{"awscloud", "--help"},
			want: plugin.Input{Plugin: "awscloud", Command: "--help", Options: map[string]string{}},
		},
		{
			name: "plugin without command",
			args: []string{"awscloud"},
			want: plugin.Input{Plugin: "awscloud", Command: "help", Options: map[string]string{}},
		},
		{
			name: "unknown first word is a core command",
			args: []string{"gcloud", "configure"},
			want: plugin.Input{Plugin: "core", Command: "gcloud", SubCommands: []string{"configure"}, Options: map[string]string{}},
		},
		{
			name: "core name routes to core",
			args: []string{"core", "status"},
			want: plugin.Input{Plugin: "core", Command: "status", Options: map[string]string{}},
		},
		{
			name: "double dash ends options",
			args: []string{"awscloud", "run", "--", "--not-an-option"},
			want: plugin.Input{Plugin: "awscloud", Command: "run", SubCommands: []string{"--not-an-option"}, Options: map[string]string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseInput(tt.args, installed("awscloud"))
			tt.want.Argv = tt.args
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseInput() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitGlobals(t *testing.T) {
	g, rest, err := splitGlobals([]string{"--verbose", "push", "-y", "--env", "dev", "-q", "--", "--yes"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Globals{Verbose: true, Quiet: true, Yes: true}, g); diff != "" {
		t.Errorf("globals mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"push", "--env", "dev", "--", "--yes"}, rest); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitGlobalsKeepsVersionAlias(t *testing.T) {
	g, rest, err := splitGlobals([]string{"-v"})
	if err != nil {
		t.Fatal(err)
	}
	if g.Verbose {
		t.Error("-v must not enable verbose output")
	}
	if diff := cmp.Diff([]string{"-v"}, rest); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitGlobalsInvalidValue(t *testing.T) {
	if _, _, err := splitGlobals([]string{"--yes=maybe"}); err == nil {
		t.Error("expected error for a non-boolean value")
	}
}

func TestGlobalsApply(t *testing.T) {
	in := plugin.Input{Options: map[string]string{"name": "x"}}
	Globals{Yes: true}.apply(&in)
	if diff := cmp.Diff(map[string]string{"name": "x", "yes": "true"}, in.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}
