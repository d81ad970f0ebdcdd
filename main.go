package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/katalvlaran/nettopo/cmd"
)

var version = "dev"

func main() {
	// trap Ctrl+C and SIGTERM and cancel the context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// run the command
	cmd.Execute(ctx, version)
}
