package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saltyorg/schedulr/internal/config"
	"github.com/saltyorg/schedulr/internal/database"
	"github.com/saltyorg/schedulr/internal/logging"
)

func settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or change runtime settings stored in a service database",
		Long: `Runtime settings (log rotation, maintenance schedule) live in the settings table of each
service database and are read at startup. Restart the service after changing them.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <service>",
			Short: "Show every known setting and its stored value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSettingsStore(cmd, args[0], func(db *database.DB) error {
					stored, err := db.ListSettings(cmd.Context())
					if err != nil {
						return err
					}
					for _, key := range config.SettingKeys() {
						value, ok := stored[key]
						if !ok {
							value = "(default)"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get <service> <key>",
			Short: "Print a stored setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSettingsStore(cmd, args[0], func(db *database.DB) error {
					value, err := db.GetSettingContext(cmd.Context(), args[1])
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), value)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <service> <key> <value>",
			Short: "Store a setting",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.ValidateSetting(args[1], args[2]); err != nil {
					return err
				}
				return withSettingsStore(cmd, args[0], func(db *database.DB) error {
					return db.SetSetting(cmd.Context(), args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "unset <service> <key>",
			Short: "Remove a stored setting so its default applies",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSettingsStore(cmd, args[0], func(db *database.DB) error {
					return db.DeleteSetting(cmd.Context(), args[1])
				})
			},
		},
	)

	return cmd
}

// withSettingsStore opens and migrates the database of the named service and runs fn against it
func withSettingsStore(cmd *cobra.Command, name string, fn func(db *database.DB) error) error {
	service, err := config.ParseService(name)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, service)
	if err != nil {
		return err
	}
	logging.Console(logging.LevelFromVerbosity(verbosity, cfg.LogLevel))

	db, err := database.New(cfg.DBPath, schemaFor(service))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return fn(db)
}
