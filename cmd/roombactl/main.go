// Package main is the roombactl command itself.
package main

import (
	"context"
	"os"
	"os/signal"

	"go.viam.com/roombactl/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		cli.Errorf(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
