package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/feednav/feednav-cli/cmd"
	"github.com/feednav/feednav-cli/internal/observability"
)

// main is the entry point for feednav.
func main() {
	// SIGINT and SIGTERM cancel the command context; the session uses
	// that to wind down and restore the page before the process exits.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)

	observability.Sync()

	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
