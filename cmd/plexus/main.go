// plexus - A pluggable command-line orchestrator
//
// plexus discovers installed plugins, routes each command to the plugin that
// handles it and broadcasts project lifecycle events to subscribed plugins.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/jmylchreest/plexus/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
