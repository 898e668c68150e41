// Package main provides the entry point for the remedy CLI.
package main

import (
	"context"
	"os"

	"github.com/remedyhq/remedy/internal/cli"
	"github.com/remedyhq/remedy/internal/signal"
)

// Exit code when a run is aborted by SIGINT/SIGTERM, following the shell
// convention of 128+signal.
const exitInterrupted = 130

// Version information set at build time via ldflags.
var (
	version = "dev"     //nolint:gochecknoglobals // Set via ldflags
	commit  = "none"    //nolint:gochecknoglobals // Set via ldflags
	date    = "unknown" //nolint:gochecknoglobals // Set via ldflags
)

func main() {
	handler := signal.NewHandler(context.Background())
	defer handler.Stop()

	err := cli.Execute(handler.Context(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	cli.CloseLogFile()

	switch {
	case handler.Interrupted():
		os.Exit(exitInterrupted)
	case err != nil:
		os.Exit(cli.ExitCodeForError(err))
	}
}
