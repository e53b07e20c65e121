package main

import (
	"fmt"
	"os"

	"github.com/biodexapp/biodex/cmd"
	"github.com/biodexapp/biodex/internal/conf"
	"github.com/biodexapp/biodex/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCommand(settings, version)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
