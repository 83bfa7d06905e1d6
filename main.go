package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"redditlogs/internal/cli"
	"redditlogs/internal/logs"
)

func main() {

	// Initialise logging.
	logs.InitLogrus()

	// Cancel in-flight requests on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Export the requested mod logs.
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
