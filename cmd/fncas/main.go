// Package main provides the fncas CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/born-ml/fncas/internal/cli"
)

const version = "v0.0.1-dev"

func main() {
	cli.Version = version
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
