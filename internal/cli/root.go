// Package cli provides the command-line interface for plexus.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the plexus command. Flag parsing is left to the App
// because plugin options are passed through unparsed.
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plexus <command> [subcommands] [options]",
		Short: "A pluggable command-line orchestrator",
		Long: `plexus discovers installed plugins, dispatches commands to the plugin that
handles them and broadcasts lifecycle events to subscribed plugins.

Run "plexus help" for the available commands, or "plexus <plugin> <command>"
to run a command of an installed plugin.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), args)
		},
	}
}

// Execute runs the root command and exits with status 1 on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
