// Package serve implements the HTTP server command.
package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/biodexapp/biodex/internal/conf"
	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/httpcontroller"
	"github.com/biodexapp/biodex/internal/logging"
	"github.com/biodexapp/biodex/internal/notification"
	"github.com/biodexapp/biodex/internal/wikipedia"
)

// Command returns the serve subcommand
func Command(settings *conf.Settings, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, version)
		},
	}
}

func run(settings *conf.Settings, version string) error {
	logger := logging.Logger()

	ds, err := newDataStore(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Error("failed to close datastore", "error", err)
		}
	}()

	notifier := notification.NewService(&notification.ServiceConfig{
		Debug:              settings.Debug,
		MaxNotifications:   settings.Notification.MaxNotifications,
		CleanupInterval:    settings.Notification.CleanupInterval,
		RateLimitWindow:    settings.Notification.RateLimitWindow,
		RateLimitMaxEvents: settings.Notification.RateLimitMaxEvents,
	})
	defer notifier.Stop()

	lookup := wikipedia.New(wikipedia.Config{
		Endpoint:   settings.Wikipedia.Endpoint,
		Timeout:    settings.Wikipedia.Timeout,
		MaxRetries: settings.Wikipedia.MaxRetries,
		CacheTTL:   settings.Wikipedia.CacheTTL,
		Version:    version,
		Debug:      settings.Debug,
	})
	defer func() {
		if err := lookup.Close(); err != nil {
			logger.Error("failed to close lookup client", "error", err)
		}
	}()

	server := httpcontroller.New(settings, ds, lookup, notifier)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

// newDataStore opens the configured database backend
func newDataStore(settings *conf.Settings) (datastore.Interface, error) {
	var dsSettings datastore.Settings
	dsSettings.Debug = settings.Debug
	dsSettings.SQLite.Enabled = settings.Output.SQLite.Enabled
	dsSettings.SQLite.Path = settings.Output.SQLite.Path
	dsSettings.MySQL.Enabled = settings.Output.MySQL.Enabled
	dsSettings.MySQL.Username = settings.Output.MySQL.Username
	dsSettings.MySQL.Password = settings.Output.MySQL.Password
	dsSettings.MySQL.Host = settings.Output.MySQL.Host
	dsSettings.MySQL.Port = settings.Output.MySQL.Port
	dsSettings.MySQL.Database = settings.Output.MySQL.Database

	ds, err := datastore.New(dsSettings, logging.Logger().With("service", "datastore"))
	if err != nil {
		return nil, err
	}
	if err := ds.Open(); err != nil {
		return nil, fmt.Errorf("failed to open datastore: %w", err)
	}
	return ds, nil
}
