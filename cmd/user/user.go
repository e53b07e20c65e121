// Package user implements profile management commands.
package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/biodexapp/biodex/internal/conf"
	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/logging"
	"github.com/biodexapp/biodex/internal/security"
)

// Command returns the user subcommand with its create and list actions
func Command(settings *conf.Settings) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user profiles",
	}
	userCmd.AddCommand(createCommand(settings), listCommand(settings))
	return userCmd
}

func createCommand(settings *conf.Settings) *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "create <email> <password>",
		Short: "Create a user profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = ds.Close() }()

			email := strings.TrimSpace(strings.ToLower(args[0]))
			if email == "" {
				return fmt.Errorf("email is required")
			}
			if displayName == "" {
				displayName = strings.SplitN(email, "@", 2)[0]
			}

			hash, err := security.HashPassword(args[1])
			if err != nil {
				return err
			}

			profile := &datastore.Profile{
				ID:           uuid.NewString(),
				Email:        email,
				DisplayName:  displayName,
				PasswordHash: hash,
			}
			if err := ds.CreateProfile(context.Background(), profile); err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}

			cmd.Printf("Created profile %s (%s)\n", profile.ID, profile.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "name", "", "Display name, defaults to the email local part")
	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = ds.Close() }()

			profiles, err := ds.ListProfiles(context.Background())
			if err != nil {
				return err
			}
			for i := range profiles {
				cmd.Printf("%s\t%s\t%s\n", profiles[i].ID, profiles[i].Email, profiles[i].DisplayName)
			}
			return nil
		},
	}
}

// openStore opens the configured database backend
func openStore(settings *conf.Settings) (datastore.Interface, error) {
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
