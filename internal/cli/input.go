package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

// Globals are the options plexus itself understands. Everything else on the
// command line is passed through to the plugin untouched.
type Globals struct {
	Verbose bool
	Quiet   bool
	Yes     bool
}

func globalFlagSet(g *Globals) *pflag.FlagSet {
	fs := pflag.NewFlagSet("plexus", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	// -v is the version alias of the core plugin, so verbose has no shorthand.
	fs.BoolVar(&g.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVarP(&g.Quiet, "quiet", "q", false, "suppress non-error output")
	fs.BoolVarP(&g.Yes, "yes", "y", false, "accept defaults and never prompt")
	return fs
}

// splitGlobals parses the global flags out of args and returns the remaining
// arguments in order. Tokens after "--" are never treated as global flags.
func splitGlobals(args []string) (Globals, []string, error) {
	var g Globals
	fs := globalFlagSet(&g)

	var globals, rest []string
	for i, arg := range args {
		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}
		if isGlobalFlag(fs, arg) {
			globals = append(globals, arg)
			continue
		}
		rest = append(rest, arg)
	}

	if err := fs.Parse(globals); err != nil {
		return g, nil, fmt.Errorf("invalid global flag: %w", err)
	}
	return g, rest, nil
}

func isGlobalFlag(fs *pflag.FlagSet, arg string) bool {
	switch {
	case strings.HasPrefix(arg, "--"):
		name, _, _ := strings.Cut(arg[2:], "=")
		return fs.Lookup(name) != nil
	case strings.HasPrefix(arg, "-") && len(arg) == 2:
		return fs.ShorthandLookup(arg[1:]) != nil
	}
	return false
}

// parseInput turns the non-global arguments into a plugin input.
//
// The first positional argument selects a plugin when it is "core" or isPlugin
// reports it as installed; otherwise the core plugin handles the command.
// In command position a dash token such as -h or --version is the command
// itself. "--key=value" and "--key value" become options, a bare "--flag" or
// "-f" becomes a "true" option.
func parseInput(args []string, isPlugin func(name string) bool) plugin.Input {
	in := plugin.Input{
		Plugin:  plugin.CoreName,
		Options: map[string]string{},
		Argv:    append([]string(nil), args...),
	}

	var positionals []string
	named := false
	commandIndex := func() int {
		if named {
			return 1
		}
		return 0
	}
	addPositional := func(arg string) {
		if len(positionals) == 0 && (arg == plugin.CoreName || isPlugin(arg)) {
			in.Plugin = arg
			named = true
		}
		positionals = append(positionals, arg)
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			for _, a := range args[i+1:] {
				addPositional(a)
			}
			i = len(args)
		case len(positionals) == commandIndex() && strings.HasPrefix(arg, "-") && arg != "-":
			positionals = append(positionals, arg)
		case strings.HasPrefix(arg, "--") && len(arg) > 2:
			key, value, found := strings.Cut(arg[2:], "=")
			if !found {
				value = "true"
				if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
					value = args[i+1]
					i++
				}
			}
			in.Options[key] = value
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			in.Options[arg[1:]] = "true"
		default:
			addPositional(arg)
		}
	}

	if named {
		positionals = positionals[1:]
	}
	if len(positionals) == 0 {
		in.Command = "help"
		return in
	}
	in.Command = positionals[0]
	if len(positionals) > 1 {
		in.SubCommands = positionals[1:]
	}
	return in
}

// apply copies the global flags into the input so plugins see them as options.
func (g Globals) apply(in *plugin.Input) {
	for name, set := range map[string]bool{"verbose": g.Verbose, "quiet": g.Quiet, "yes": g.Yes} {
		if set {
			in.Options[name] = "true"
		}
	}
}
