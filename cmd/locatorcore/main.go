// Command locatorcore is the CLI surface for the locator-replay core:
// running the stdio Host RPC server, inspecting the bbolt recording
// store, serving the loopback analytics HTTP endpoint, and validating
// configuration (SPEC_FULL.md DOMAIN STACK "CLI surface").
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
