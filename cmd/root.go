// Package cmd wires up the command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/biodexapp/biodex/cmd/serve"
	"github.com/biodexapp/biodex/cmd/user"
	"github.com/biodexapp/biodex/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "biodex",
		Short:   "Biodex species catalog server",
		Version: version,
	}

	rootCmd.PersistentFlags().BoolVar(&settings.Debug, "debug", settings.Debug, "Enable debug output")

	rootCmd.AddCommand(
		serve.Command(settings, version),
		user.Command(settings),
	)

	return rootCmd
}
