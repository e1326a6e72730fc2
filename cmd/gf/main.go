package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grant-fetcher/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cli.NewDefaultBackend(), os.Stdin, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
