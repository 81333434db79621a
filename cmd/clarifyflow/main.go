// Package main provides the entry point for the clarifyflow CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/clarifyflow/internal/cli"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"     //nolint:gochecknoglobals // build info
	commit  = "none"    //nolint:gochecknoglobals // build info
	date    = "unknown" //nolint:gochecknoglobals // build info
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	cli.CloseLogFile()
	if err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
