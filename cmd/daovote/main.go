package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/trebuchet-org/daovote/internal/cli"
	"github.com/trebuchet-org/daovote/internal/config"
	"go.uber.org/automaxprocs/maxprocs"
)

// Set via -ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func slogPrintf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	config.SetBuildFlags(version, commit, date)

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		cli.RenderError(os.Stderr, err)
		os.Exit(1)
	}
}
