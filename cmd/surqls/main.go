// Package main is the entry point for the surqls command.
package main

import (
	"context"
	"os"

	"github.com/leapstack-labs/surqls/internal/cli"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

// run executes the CLI and maps its outcome to an exit status.
func run(ctx context.Context, args []string) int {
	if err := cli.Execute(ctx, args); err != nil {
		return 1
	}
	return 0
}
